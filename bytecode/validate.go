package bytecode

import (
	"github.com/hashicorp/go-multierror"

	"github.com/tiervm/tiervm/errz"
	"github.com/tiervm/tiervm/op"
)

// Validate checks every instruction in a program against the opcode catalog:
// the opcode must be known and the operand count must match its arity. All
// violations are collected and reported together rather than stopping at the
// first one.
func Validate(program []Instruction) error {
	var result *multierror.Error
	for i, instr := range program {
		info := op.GetInfo(instr.Opcode)
		if info.Name == "" {
			result = multierror.Append(result, errz.Newf(errz.ErrInvalidInstruction,
				"unknown opcode %d at address %d", uint16(instr.Opcode), i))
			continue
		}
		if len(instr.Operands) != info.OperandCount {
			result = multierror.Append(result, errz.Newf(errz.ErrInvalidInstruction,
				"%s expects %d operands, got %d (address %d)",
				info.Name, info.OperandCount, len(instr.Operands), i))
		}
	}
	return result.ErrorOrNil()
}
