package vm

import (
	"io"

	"github.com/rs/zerolog"
)

// Option is a configuration function for a Machine.
type Option func(*Machine)

// WithHotspotThreshold sets the execution count at which an address is
// considered hot and specialization is attempted. Values below 1 are
// ignored. The default is DefaultHotspotThreshold.
func WithHotspotThreshold(threshold int) Option {
	return func(m *Machine) {
		if threshold >= 1 {
			m.threshold = threshold
		}
	}
}

// WithMaxScan sets how many instructions the region selector scans forward
// from a hot address. The default is DefaultMaxScan.
func WithMaxScan(maxScan int) Option {
	return func(m *Machine) {
		if maxScan >= 1 {
			m.maxScan = maxScan
		}
	}
}

// WithMinRegionLen sets the minimum admissible region length. Shorter runs
// are interpreted forever rather than specialized. The default is
// DefaultMinRegionLen.
func WithMinRegionLen(minLen int) Option {
	return func(m *Machine) {
		if minLen >= 1 {
			m.minRegionLen = minLen
		}
	}
}

// WithOutput sets the sink that PRINT and PRINT_CHAR write to. The default
// is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(m *Machine) {
		m.output = w
	}
}

// WithInput sets the source that INPUT reads from. The default reads lines
// from os.Stdin.
func WithInput(input InputFunc) Option {
	return func(m *Machine) {
		m.input = input
	}
}

// WithLogger sets the logger for engine events. Region compilation is
// logged at debug level; per-step activity at trace level. The default
// logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithMaxInstructions bounds the total number of instructions one Run may
// execute, as a guard against runaway programs. Zero, the default, disables
// the budget.
func WithMaxInstructions(max int64) Option {
	return func(m *Machine) {
		if max >= 0 {
			m.maxInstructions = max
		}
	}
}

// WithContextCheckInterval sets how often the machine checks ctx.Done()
// during execution, in instructions. A value of 0 disables deterministic
// checking, relying only on the background goroutine. The default is
// DefaultContextCheckInterval.
func WithContextCheckInterval(interval int) Option {
	return func(m *Machine) {
		if interval >= 0 {
			m.contextCheckInterval = interval
		}
	}
}
