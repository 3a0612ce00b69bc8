// Package errz defines the error taxonomy for the tiervm engine.
package errz

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrLoad indicates an invalid load request (e.g. an empty program).
	ErrLoad ErrorKind = iota
	// ErrInvalidInstruction indicates a bad opcode or operand arity at load time.
	ErrInvalidInstruction
	// ErrStackUnderflow indicates an operand stack pop without enough elements.
	ErrStackUnderflow
	// ErrCallStackUnderflow indicates a RET with no pending return address.
	ErrCallStackUnderflow
	// ErrMemoryAccess indicates a negative memory address or local index.
	ErrMemoryAccess
	// ErrDivisionByZero indicates DIV or MOD with a zero divisor.
	ErrDivisionByZero
	// ErrInvalidTarget indicates a jump or call target outside program bounds.
	ErrInvalidTarget
	// ErrSpecialize indicates that fast-path synthesis failed for a region.
	ErrSpecialize
	// ErrType indicates an operation applied to an unsupported value type.
	ErrType
	// ErrLimit indicates an execution resource limit was exceeded.
	ErrLimit
	// ErrRuntime indicates a general runtime error.
	ErrRuntime
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrLoad:
		return "load error"
	case ErrInvalidInstruction:
		return "invalid instruction"
	case ErrStackUnderflow:
		return "stack underflow"
	case ErrCallStackUnderflow:
		return "call stack underflow"
	case ErrMemoryAccess:
		return "memory access error"
	case ErrDivisionByZero:
		return "division by zero"
	case ErrInvalidTarget:
		return "invalid control target"
	case ErrSpecialize:
		return "specialize error"
	case ErrType:
		return "type error"
	case ErrLimit:
		return "limit error"
	case ErrRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

// Error is the engine's error type. PC is the address of the instruction at
// which the failure occurred, or -1 when the error is not tied to one (for
// example, a load-time validation failure).
type Error struct {
	Kind    ErrorKind
	Message string
	PC      int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.PC < 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (pc=%d)", e.Kind, e.Message, e.PC)
}

// New creates an Error of the given kind with no program location.
func New(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message, PC: -1}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), PC: -1}
}

// At returns a copy of the error pinned to the given program counter.
// Errors that already carry a location are returned unchanged.
func (e *Error) At(pc int) *Error {
	if e.PC >= 0 {
		return e
	}
	return &Error{Kind: e.Kind, Message: e.Message, PC: pc}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
