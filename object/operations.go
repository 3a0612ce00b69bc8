package object

import (
	"math"

	"github.com/tiervm/tiervm/errz"
	"github.com/tiervm/tiervm/op"
)

// BinaryOp performs an arithmetic operation on two values, given an
// arithmetic opcode. Operands must be numeric. Integer operands produce an
// integer result except for DIV, which always computes the exact quotient
// and therefore produces a float. MOD is the floored (mathematical)
// remainder, so the result takes the divisor's sign.
func BinaryOp(code op.Code, a, b Object) (Object, error) {
	if !IsNumeric(a) || !IsNumeric(b) {
		return nil, errz.Newf(errz.ErrType,
			"unsupported operand types for %s: %s and %s", code, a.Type(), b.Type())
	}
	if ai, ok := a.(*Int); ok {
		if bi, ok := b.(*Int); ok && code != op.Div {
			return intBinaryOp(code, ai.value, bi.value)
		}
	}
	return floatBinaryOp(code, asFloat(a), asFloat(b))
}

func intBinaryOp(code op.Code, a, b int64) (Object, error) {
	switch code {
	case op.Add:
		return NewInt(a + b), nil
	case op.Sub:
		return NewInt(a - b), nil
	case op.Mul:
		return NewInt(a * b), nil
	case op.Mod:
		if b == 0 {
			return nil, errz.New(errz.ErrDivisionByZero, "mod by zero")
		}
		r := a % b
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return NewInt(r), nil
	default:
		return nil, errz.Newf(errz.ErrType, "unknown arithmetic opcode: %s", code)
	}
}

func floatBinaryOp(code op.Code, a, b float64) (Object, error) {
	switch code {
	case op.Add:
		return NewFloat(a + b), nil
	case op.Sub:
		return NewFloat(a - b), nil
	case op.Mul:
		return NewFloat(a * b), nil
	case op.Div:
		if b == 0 {
			return nil, errz.New(errz.ErrDivisionByZero, "division by zero")
		}
		return NewFloat(a / b), nil
	case op.Mod:
		if b == 0 {
			return nil, errz.New(errz.ErrDivisionByZero, "mod by zero")
		}
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return NewFloat(r), nil
	default:
		return nil, errz.Newf(errz.ErrType, "unknown arithmetic opcode: %s", code)
	}
}

// Compare performs a comparison on two numeric values and returns Int(1)
// for true, Int(0) for false. There is no boolean variant. Int pairs
// compare exactly; mixed operands are promoted to float, which cannot
// represent every int64.
func Compare(code op.Code, a, b Object) (Object, error) {
	if !IsNumeric(a) || !IsNumeric(b) {
		return nil, errz.Newf(errz.ErrType,
			"unsupported operand types for %s: %s and %s", code, a.Type(), b.Type())
	}
	if ai, ok := a.(*Int); ok {
		if bi, ok := b.(*Int); ok {
			return intCompare(code, ai.value, bi.value)
		}
	}
	return floatCompare(code, asFloat(a), asFloat(b))
}

func intCompare(code op.Code, a, b int64) (Object, error) {
	switch code {
	case op.Eq:
		return boolInt(a == b), nil
	case op.Ne:
		return boolInt(a != b), nil
	case op.Lt:
		return boolInt(a < b), nil
	case op.Le:
		return boolInt(a <= b), nil
	case op.Gt:
		return boolInt(a > b), nil
	case op.Ge:
		return boolInt(a >= b), nil
	default:
		return nil, errz.Newf(errz.ErrType, "unknown comparison opcode: %s", code)
	}
}

func floatCompare(code op.Code, a, b float64) (Object, error) {
	switch code {
	case op.Eq:
		return boolInt(a == b), nil
	case op.Ne:
		return boolInt(a != b), nil
	case op.Lt:
		return boolInt(a < b), nil
	case op.Le:
		return boolInt(a <= b), nil
	case op.Gt:
		return boolInt(a > b), nil
	case op.Ge:
		return boolInt(a >= b), nil
	default:
		return nil, errz.Newf(errz.ErrType, "unknown comparison opcode: %s", code)
	}
}

func boolInt(b bool) Object {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

// Negate returns the arithmetic negation of a numeric value.
func Negate(obj Object) (Object, error) {
	switch obj := obj.(type) {
	case *Int:
		return NewInt(-obj.value), nil
	case *Float:
		return NewFloat(-obj.value), nil
	default:
		return nil, errz.Newf(errz.ErrType, "cannot negate %s", obj.Type())
	}
}

// AsInt extracts an int from an Int value.
func AsInt(obj Object) (int64, bool) {
	if i, ok := obj.(*Int); ok {
		return i.value, true
	}
	return 0, false
}

func asFloat(obj Object) float64 {
	switch obj := obj.(type) {
	case *Int:
		return float64(obj.value)
	case *Float:
		return obj.value
	}
	return 0
}
