package vm

import (
	"github.com/tiervm/tiervm/bytecode"
	"github.com/tiervm/tiervm/op"
)

// region is a contiguous run of instructions [entry, exit) containing no
// control-flow or blocking-I/O opcode, making it eligible for
// specialization.
type region struct {
	entry int
	exit  int
}

func (r region) length() int {
	return r.exit - r.entry
}

// selectRegion scans forward from entry for the longest admissible
// straight-line run, bounded by maxScan instructions and the program end.
// The first non-compilable opcode ends the scan and is excluded from the
// region. Runs shorter than minLen are rejected: the synthesis overhead is
// not worth a tiny block.
func selectRegion(program []bytecode.Instruction, entry, maxScan, minLen int) (region, bool) {
	limit := entry + maxScan
	if limit > len(program) {
		limit = len(program)
	}
	exit := entry
	for i := entry; i < limit; i++ {
		if !op.GetInfo(program[i].Opcode).Compilable {
			break
		}
		exit = i + 1
	}
	r := region{entry: entry, exit: exit}
	if r.length() < minLen {
		return region{}, false
	}
	return r, true
}
