package tiervm

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiervm/tiervm/errz"
	"github.com/tiervm/tiervm/object"
	"github.com/tiervm/tiervm/vm"
)

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	m, err := Run(context.Background(), `
		PUSH 8
		PUSH 5
		ADD
		PRINT
		HALT
	`, vm.WithOutput(&buf))
	require.NoError(t, err)
	require.Equal(t, "Output: 13\n", buf.String())
	require.Empty(t, m.Stack())
}

func TestRunLoop(t *testing.T) {
	var buf bytes.Buffer
	m, err := Run(context.Background(), `
		PUSH 0
		STORE_LOCAL 0
	loop:
		LOAD_LOCAL 0
		PUSH 1
		ADD
		STORE_LOCAL 0
		LOAD_LOCAL 0
		PUSH 5
		EQ
		JUMP_IF_ZERO loop
		HALT
	`, vm.WithOutput(&buf), vm.WithHotspotThreshold(3))
	require.NoError(t, err)
	require.Equal(t, []object.Object{object.NewInt(5)}, m.Locals())
	require.Equal(t, 1, m.Stats().RegionsCompiled)
}

func TestRunAssemblyError(t *testing.T) {
	m, err := Run(context.Background(), "BOGUS")
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrInvalidInstruction))
	require.Nil(t, m)
}

func TestRunRuntimeError(t *testing.T) {
	// The machine comes back with the error so its state can be inspected.
	var buf bytes.Buffer
	m, err := Run(context.Background(), `
		PUSH 10
		PUSH 0
		DIV
		HALT
	`, vm.WithOutput(&buf))
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrDivisionByZero))
	require.NotNil(t, m)
	require.Equal(t, []object.Object{object.NewInt(10), object.NewInt(0)}, m.Stack())
	require.Equal(t, 2, m.PC())
}

func TestExecRejectsEmptyProgram(t *testing.T) {
	m, err := Exec(context.Background(), nil)
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.ErrLoad))
	require.Nil(t, m)
}
