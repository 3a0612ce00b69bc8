// Package op defines opcodes used by the tiervm assembler and execution engine.
package op

import "fmt"

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = 0x00

	// Stack
	Push Code = 0x01
	Pop  Code = 0x02
	Dup  Code = 0x03
	Swap Code = 0x04
	Rot  Code = 0x05 // Rotate top 3 stack items

	// Arithmetic
	Add Code = 0x10
	Sub Code = 0x11
	Mul Code = 0x12
	Div Code = 0x13
	Mod Code = 0x14
	Neg Code = 0x15 // Negate top of stack

	// Comparison
	Eq Code = 0x30
	Ne Code = 0x31
	Lt Code = 0x32
	Le Code = 0x33
	Gt Code = 0x34
	Ge Code = 0x35

	// Control flow
	Jump          Code = 0x40
	JumpIfZero    Code = 0x41
	JumpIfNotZero Code = 0x42
	Call          Code = 0x43
	Ret           Code = 0x44

	// Memory
	Load       Code = 0x50
	Store      Code = 0x51
	LoadLocal  Code = 0x52
	StoreLocal Code = 0x53

	// I/O
	Print     Code = 0x60
	PrintChar Code = 0x61
	Input     Code = 0x62

	// System
	Halt Code = 0x70
	Nop  Code = 0x71
)

// Family categorizes opcodes by the handler responsible for them.
type Family uint8

const (
	FamilyInvalid Family = iota
	FamilyStack
	FamilyArithmetic
	FamilyComparison
	FamilyControl
	FamilyMemory
	FamilyIO
	FamilySystem
)

// String returns a string representation of the family.
func (f Family) String() string {
	switch f {
	case FamilyStack:
		return "stack"
	case FamilyArithmetic:
		return "arithmetic"
	case FamilyComparison:
		return "comparison"
	case FamilyControl:
		return "control"
	case FamilyMemory:
		return "memory"
	case FamilyIO:
		return "io"
	case FamilySystem:
		return "system"
	default:
		return "invalid"
	}
}

// Info contains information about an opcode. Compilable indicates whether
// the opcode may appear inside a specialized fast-path region: opcodes that
// transfer control non-locally or perform unrepeatable I/O are excluded.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
	Family       Family
	Compilable   bool
}

var (
	infos  = make([]Info, 256)
	byName = make(map[string]Code)
)

func init() {
	type opInfo struct {
		op         Code
		name       string
		count      int
		family     Family
		compilable bool
	}
	ops := []opInfo{
		{Push, "PUSH", 1, FamilyStack, true},
		{Pop, "POP", 0, FamilyStack, true},
		{Dup, "DUP", 0, FamilyStack, true},
		{Swap, "SWAP", 0, FamilyStack, true},
		{Rot, "ROT", 0, FamilyStack, true},
		{Add, "ADD", 0, FamilyArithmetic, true},
		{Sub, "SUB", 0, FamilyArithmetic, true},
		{Mul, "MUL", 0, FamilyArithmetic, true},
		{Div, "DIV", 0, FamilyArithmetic, true},
		{Mod, "MOD", 0, FamilyArithmetic, true},
		{Neg, "NEG", 0, FamilyArithmetic, true},
		{Eq, "EQ", 0, FamilyComparison, true},
		{Ne, "NE", 0, FamilyComparison, true},
		{Lt, "LT", 0, FamilyComparison, true},
		{Le, "LE", 0, FamilyComparison, true},
		{Gt, "GT", 0, FamilyComparison, true},
		{Ge, "GE", 0, FamilyComparison, true},
		{Jump, "JUMP", 1, FamilyControl, false},
		{JumpIfZero, "JUMP_IF_ZERO", 1, FamilyControl, false},
		{JumpIfNotZero, "JUMP_IF_NOT_ZERO", 1, FamilyControl, false},
		{Call, "CALL", 1, FamilyControl, false},
		{Ret, "RET", 0, FamilyControl, false},
		{Load, "LOAD", 1, FamilyMemory, true},
		{Store, "STORE", 1, FamilyMemory, true},
		{LoadLocal, "LOAD_LOCAL", 1, FamilyMemory, true},
		{StoreLocal, "STORE_LOCAL", 1, FamilyMemory, true},
		{Print, "PRINT", 0, FamilyIO, true},
		{PrintChar, "PRINT_CHAR", 0, FamilyIO, true},
		{Input, "INPUT", 0, FamilyIO, false},
		{Halt, "HALT", 0, FamilySystem, false},
		{Nop, "NOP", 0, FamilySystem, true},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:         o.op,
			Name:         o.name,
			OperandCount: o.count,
			Family:       o.family,
			Compilable:   o.compilable,
		}
		byName[o.name] = o.op
	}
}

// GetInfo returns information about the given opcode. The zero Info is
// returned for unknown opcodes; callers can detect this via an empty Name.
func GetInfo(op Code) Info {
	if int(op) >= len(infos) {
		return Info{}
	}
	return infos[op]
}

// Lookup resolves an opcode mnemonic like "PUSH" to its Code.
func Lookup(name string) (Code, bool) {
	code, ok := byName[name]
	return code, ok
}

// String returns the opcode's mnemonic, e.g. "PUSH".
func (c Code) String() string {
	info := GetInfo(c)
	if info.Name == "" {
		return fmt.Sprintf("OPCODE(%d)", uint16(c))
	}
	return info.Name
}
