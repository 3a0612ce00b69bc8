package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(Push)
	require.Equal(t, "PUSH", info.Name)
	require.Equal(t, 1, info.OperandCount)
	require.Equal(t, Push, info.Code)
	require.Equal(t, FamilyStack, info.Family)
	require.True(t, info.Compilable)
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code     Code
		name     string
		operands int
		family   Family
	}{
		{Push, "PUSH", 1, FamilyStack},
		{Pop, "POP", 0, FamilyStack},
		{Dup, "DUP", 0, FamilyStack},
		{Swap, "SWAP", 0, FamilyStack},
		{Rot, "ROT", 0, FamilyStack},
		{Add, "ADD", 0, FamilyArithmetic},
		{Sub, "SUB", 0, FamilyArithmetic},
		{Mul, "MUL", 0, FamilyArithmetic},
		{Div, "DIV", 0, FamilyArithmetic},
		{Mod, "MOD", 0, FamilyArithmetic},
		{Neg, "NEG", 0, FamilyArithmetic},
		{Eq, "EQ", 0, FamilyComparison},
		{Ne, "NE", 0, FamilyComparison},
		{Lt, "LT", 0, FamilyComparison},
		{Le, "LE", 0, FamilyComparison},
		{Gt, "GT", 0, FamilyComparison},
		{Ge, "GE", 0, FamilyComparison},
		{Jump, "JUMP", 1, FamilyControl},
		{JumpIfZero, "JUMP_IF_ZERO", 1, FamilyControl},
		{JumpIfNotZero, "JUMP_IF_NOT_ZERO", 1, FamilyControl},
		{Call, "CALL", 1, FamilyControl},
		{Ret, "RET", 0, FamilyControl},
		{Load, "LOAD", 1, FamilyMemory},
		{Store, "STORE", 1, FamilyMemory},
		{LoadLocal, "LOAD_LOCAL", 1, FamilyMemory},
		{StoreLocal, "STORE_LOCAL", 1, FamilyMemory},
		{Print, "PRINT", 0, FamilyIO},
		{PrintChar, "PRINT_CHAR", 0, FamilyIO},
		{Input, "INPUT", 0, FamilyIO},
		{Halt, "HALT", 0, FamilySystem},
		{Nop, "NOP", 0, FamilySystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.operands, info.OperandCount)
			require.Equal(t, tt.code, info.Code)
			require.Equal(t, tt.family, info.Family)
		})
	}
}

func TestNotCompilable(t *testing.T) {
	// Opcodes that transfer control non-locally or perform unrepeatable
	// I/O can never appear inside a fast-path region.
	excluded := []Code{Jump, JumpIfZero, JumpIfNotZero, Call, Ret, Halt, Input}
	for _, code := range excluded {
		require.False(t, GetInfo(code).Compilable, code.String())
	}
	included := []Code{Push, Pop, Dup, Swap, Rot, Add, Sub, Mul, Div, Mod,
		Neg, Eq, Ne, Lt, Le, Gt, Ge, Load, Store, LoadLocal, StoreLocal,
		Print, PrintChar, Nop}
	for _, code := range included {
		require.True(t, GetInfo(code).Compilable, code.String())
	}
}

func TestLookup(t *testing.T) {
	code, ok := Lookup("ADD")
	require.True(t, ok)
	require.Equal(t, Add, code)

	_, ok = Lookup("FROBNICATE")
	require.False(t, ok)
}

func TestCodeString(t *testing.T) {
	require.Equal(t, "PUSH", Push.String())
	require.Equal(t, "JUMP_IF_NOT_ZERO", JumpIfNotZero.String())
	require.Equal(t, "OPCODE(255)", Code(255).String())
}

func TestGetInfoUnknown(t *testing.T) {
	require.Equal(t, "", GetInfo(Code(0x99)).Name)
	require.Equal(t, "", GetInfo(Code(5000)).Name)
}
