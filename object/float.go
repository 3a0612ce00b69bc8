package object

import (
	"math"
	"strconv"
	"strings"
)

// Float wraps float64 and implements the Object interface.
type Float struct {
	value float64
}

// NewFloat creates a new Float value.
func NewFloat(value float64) *Float {
	return &Float{value: value}
}

func (f *Float) Type() Type {
	return FLOAT
}

func (f *Float) Value() float64 {
	return f.value
}

func (f *Float) Inspect() string {
	s := strconv.FormatFloat(f.value, 'f', -1, 64)
	// Integral floats keep a trailing ".0" so they remain distinguishable
	// from ints in printed output.
	if !strings.Contains(s, ".") && !math.IsInf(f.value, 0) && !math.IsNaN(f.value) {
		s += ".0"
	}
	return s
}

func (f *Float) String() string {
	return f.Inspect()
}

func (f *Float) Equals(other Object) bool {
	switch other := other.(type) {
	case *Float:
		return f.value == other.value
	case *Int:
		return f.value == float64(other.value)
	}
	return false
}
