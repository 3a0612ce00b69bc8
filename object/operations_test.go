package object

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiervm/tiervm/errz"
	"github.com/tiervm/tiervm/op"
)

func TestIntArithmetic(t *testing.T) {
	tests := []struct {
		code op.Code
		a, b int64
		want int64
	}{
		{op.Add, 8, 5, 13},
		{op.Sub, 8, 5, 3},
		{op.Mul, 8, 5, 40},
		{op.Mod, 8, 5, 3},
		{op.Add, -1, 1, 0},
	}
	for _, tt := range tests {
		result, err := BinaryOp(tt.code, NewInt(tt.a), NewInt(tt.b))
		require.NoError(t, err)
		require.Equal(t, NewInt(tt.want), result)
	}
}

func TestDivAlwaysExact(t *testing.T) {
	// DIV computes the exact quotient even for evenly divisible integers.
	result, err := BinaryOp(op.Div, NewInt(10), NewInt(2))
	require.NoError(t, err)
	require.Equal(t, NewFloat(5), result)

	result, err = BinaryOp(op.Div, NewInt(7), NewInt(2))
	require.NoError(t, err)
	require.Equal(t, NewFloat(3.5), result)
}

func TestModFloored(t *testing.T) {
	// The remainder takes the divisor's sign.
	tests := []struct {
		a, b, want int64
	}{
		{7, 3, 1},
		{-7, 3, 2},
		{7, -3, -2},
		{-7, -3, -1},
		{6, 3, 0},
		{-6, 3, 0},
	}
	for _, tt := range tests {
		result, err := BinaryOp(op.Mod, NewInt(tt.a), NewInt(tt.b))
		require.NoError(t, err)
		require.Equal(t, NewInt(tt.want), result, "%d mod %d", tt.a, tt.b)
	}
}

func TestModRemainderLaw(t *testing.T) {
	// floor(a/b)*b + (a mod b) == a
	pairs := [][2]int64{{7, 3}, {-7, 3}, {7, -3}, {-7, -3}, {100, 7}, {-100, 7}}
	for _, p := range pairs {
		a, b := p[0], p[1]
		r, err := BinaryOp(op.Mod, NewInt(a), NewInt(b))
		require.NoError(t, err)
		rv, ok := AsInt(r)
		require.True(t, ok)
		q := int64(math.Floor(float64(a) / float64(b)))
		require.Equal(t, a, q*b+rv, "%d mod %d", a, b)
	}
}

func TestNumericPromotion(t *testing.T) {
	result, err := BinaryOp(op.Add, NewInt(1), NewFloat(2.5))
	require.NoError(t, err)
	require.Equal(t, NewFloat(3.5), result)

	result, err = BinaryOp(op.Mul, NewFloat(2.5), NewInt(4))
	require.NoError(t, err)
	require.Equal(t, NewFloat(10), result)
}

func TestFloatMod(t *testing.T) {
	result, err := BinaryOp(op.Mod, NewFloat(-7.5), NewInt(3))
	require.NoError(t, err)
	require.Equal(t, NewFloat(1.5), result)
}

func TestDivisionByZero(t *testing.T) {
	_, err := BinaryOp(op.Div, NewInt(10), NewInt(0))
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrDivisionByZero))

	_, err = BinaryOp(op.Mod, NewInt(10), NewInt(0))
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrDivisionByZero))

	_, err = BinaryOp(op.Div, NewFloat(1), NewFloat(0))
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrDivisionByZero))
}

func TestArithmeticTypeErrors(t *testing.T) {
	_, err := BinaryOp(op.Add, NewString("a"), NewInt(1))
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrType))

	_, err = BinaryOp(op.Sub, NewInt(1), NewString("b"))
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrType))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		code op.Code
		a, b Object
		want int64
	}{
		{op.Eq, NewInt(3), NewInt(3), 1},
		{op.Eq, NewInt(3), NewInt(4), 0},
		{op.Eq, NewInt(3), NewFloat(3.0), 1},
		{op.Ne, NewInt(3), NewInt(4), 1},
		{op.Lt, NewInt(3), NewInt(4), 1},
		{op.Lt, NewInt(4), NewInt(3), 0},
		{op.Le, NewInt(3), NewInt(3), 1},
		{op.Gt, NewFloat(4.5), NewInt(4), 1},
		{op.Ge, NewInt(4), NewFloat(4.0), 1},
		{op.Ge, NewInt(3), NewInt(4), 0},
	}
	for _, tt := range tests {
		result, err := Compare(tt.code, tt.a, tt.b)
		require.NoError(t, err)
		require.Equal(t, NewInt(tt.want), result,
			"%s %s %s", tt.a.Inspect(), tt.code, tt.b.Inspect())
	}
}

func TestCompareLargeIntsExact(t *testing.T) {
	// Values beyond 2^53 are not representable as float64; int pairs must
	// compare exactly rather than through promotion.
	big := int64(1) << 53
	tests := []struct {
		code op.Code
		a, b int64
		want int64
	}{
		{op.Eq, big + 1, big, 0},
		{op.Ne, big + 1, big, 1},
		{op.Gt, big + 1, big, 1},
		{op.Lt, big, big + 1, 1},
		{op.Le, big + 1, big, 0},
		{op.Ge, big, big + 1, 0},
	}
	for _, tt := range tests {
		result, err := Compare(tt.code, NewInt(tt.a), NewInt(tt.b))
		require.NoError(t, err)
		require.Equal(t, NewInt(tt.want), result, "%d %s %d", tt.a, tt.code, tt.b)
	}
}

func TestCompareTypeErrors(t *testing.T) {
	_, err := Compare(op.Eq, NewString("a"), NewString("a"))
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrType))

	_, err = Compare(op.Lt, NewInt(1), NewString("a"))
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrType))
}

func TestNegate(t *testing.T) {
	result, err := Negate(NewInt(5))
	require.NoError(t, err)
	require.Equal(t, NewInt(-5), result)

	result, err = Negate(NewFloat(-2.5))
	require.NoError(t, err)
	require.Equal(t, NewFloat(2.5), result)

	_, err = Negate(NewString("x"))
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrType))
}

func TestInspect(t *testing.T) {
	require.Equal(t, "13", NewInt(13).Inspect())
	require.Equal(t, "3.5", NewFloat(3.5).Inspect())
	require.Equal(t, "5.0", NewFloat(5).Inspect())
	require.Equal(t, "-2.0", NewFloat(-2).Inspect())
	require.Equal(t, `"hi"`, NewString("hi").Inspect())
	require.Equal(t, "hi", NewString("hi").Value())
}

func TestEquals(t *testing.T) {
	require.True(t, NewInt(3).Equals(NewInt(3)))
	require.True(t, NewInt(3).Equals(NewFloat(3.0)))
	require.True(t, NewFloat(3.0).Equals(NewInt(3)))
	require.False(t, NewInt(3).Equals(NewInt(4)))
	require.True(t, NewString("a").Equals(NewString("a")))
	require.False(t, NewString("a").Equals(NewInt(1)))
}

func TestIsZero(t *testing.T) {
	require.True(t, IsZero(NewInt(0)))
	require.True(t, IsZero(NewFloat(0)))
	require.False(t, IsZero(NewInt(1)))
	require.False(t, IsZero(NewFloat(0.5)))
	require.False(t, IsZero(NewString("")))
}
