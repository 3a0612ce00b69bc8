// Package bytecode defines the decoded instruction form consumed by the
// tiervm engine, along with load-time validation.
package bytecode

import (
	"strings"

	"github.com/tiervm/tiervm/object"
	"github.com/tiervm/tiervm/op"
)

// Instruction is one decoded instruction. Address is the instruction's
// absolute index in its program, assigned when the program is loaded.
// Instructions are immutable once loaded.
type Instruction struct {
	Opcode   op.Code
	Operands []object.Object
	Address  int
}

// New creates an instruction with the given opcode and operands.
func New(opcode op.Code, operands ...object.Object) Instruction {
	return Instruction{Opcode: opcode, Operands: operands}
}

// String returns the instruction in assembly form, e.g. "PUSH 8".
func (i Instruction) String() string {
	if len(i.Operands) == 0 {
		return i.Opcode.String()
	}
	parts := make([]string, len(i.Operands))
	for n, operand := range i.Operands {
		parts[n] = operand.Inspect()
	}
	return i.Opcode.String() + " " + strings.Join(parts, ", ")
}
