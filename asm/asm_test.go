package asm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiervm/tiervm/errz"
	"github.com/tiervm/tiervm/object"
	"github.com/tiervm/tiervm/op"
)

func TestAssembleSimple(t *testing.T) {
	program, err := Assemble(`
		PUSH 8
		PUSH 5
		ADD
		PRINT
		HALT
	`)
	require.NoError(t, err)
	require.Len(t, program, 5)
	require.Equal(t, op.Push, program[0].Opcode)
	require.Equal(t, []object.Object{object.NewInt(8)}, program[0].Operands)
	require.Equal(t, op.Halt, program[4].Opcode)
}

func TestAssembleComments(t *testing.T) {
	program, err := Assemble(`
		# a whole-line comment
		PUSH 1   # trailing comment

		HALT
	`)
	require.NoError(t, err)
	require.Len(t, program, 2)
}

func TestAssembleLabels(t *testing.T) {
	program, err := Assemble(`
		PUSH 3
		STORE_LOCAL 0
	loop:
		LOAD_LOCAL 0
		PUSH 1
		SUB
		STORE_LOCAL 0
		LOAD_LOCAL 0
		JUMP_IF_NOT_ZERO loop
		HALT
	`)
	require.NoError(t, err)
	require.Len(t, program, 9)
	// The label resolves to the address of the following instruction.
	jump := program[7]
	require.Equal(t, op.JumpIfNotZero, jump.Opcode)
	require.Equal(t, []object.Object{object.NewInt(2)}, jump.Operands)
}

func TestAssembleForwardLabel(t *testing.T) {
	program, err := Assemble(`
		JUMP end
		PUSH 99
	end:
		HALT
	`)
	require.NoError(t, err)
	require.Equal(t, []object.Object{object.NewInt(2)}, program[0].Operands)
}

func TestAssembleOperandTypes(t *testing.T) {
	program, err := Assemble(`
		PUSH 42
		PUSH -7
		PUSH 2.5
		PUSH "hello world"  # note: no spaces inside quoted operands
		HALT
	`)
	require.NoError(t, err)
	require.Equal(t, object.NewInt(42), program[0].Operands[0])
	require.Equal(t, object.NewInt(-7), program[1].Operands[0])
	require.Equal(t, object.NewFloat(2.5), program[2].Operands[0])
	// Fields split on whitespace, so the quoted operand is two tokens.
	require.Len(t, program[3].Operands, 2)
}

func TestAssembleQuotedString(t *testing.T) {
	program, err := Assemble(`PUSH "hi"`)
	require.NoError(t, err)
	require.Equal(t, object.NewString("hi"), program[0].Operands[0])
}

func TestAssembleLowercase(t *testing.T) {
	program, err := Assemble("push 1\nhalt")
	require.NoError(t, err)
	require.Equal(t, op.Push, program[0].Opcode)
	require.Equal(t, op.Halt, program[1].Opcode)
}

func TestAssembleUnknownOpcode(t *testing.T) {
	_, err := Assemble("FROB 1")
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrInvalidInstruction))
	require.Contains(t, err.Error(), `unknown opcode "FROB"`)
}

func TestAssembleDuplicateLabel(t *testing.T) {
	_, err := Assemble("x:\nNOP\nx:\nHALT")
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrInvalidInstruction))
	require.Contains(t, err.Error(), `duplicate label "x"`)
}
