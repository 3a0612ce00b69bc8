// Package dis disassembles tiervm programs into a readable listing.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/tiervm/tiervm/bytecode"
)

// Disassemble returns an address-prefixed listing for a program, one
// instruction per line.
func Disassemble(program []bytecode.Instruction) string {
	lines := make([]string, len(program))
	for i, instr := range program {
		lines[i] = fmt.Sprintf("%3d: %s", i, instr)
	}
	return strings.Join(lines, "\n")
}

// Print writes the disassembly of a program to w.
func Print(program []bytecode.Instruction, w io.Writer) {
	fmt.Fprintln(w, Disassemble(program))
}
