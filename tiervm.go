// Package tiervm provides a convenience API over the assembler and the
// adaptive execution engine.
package tiervm

import (
	"context"

	"github.com/tiervm/tiervm/asm"
	"github.com/tiervm/tiervm/bytecode"
	"github.com/tiervm/tiervm/vm"
)

// Option configures the machine used by Run and Exec.
type Option = vm.Option

// Run assembles the given source text and executes it on a new machine.
// The machine is returned for state inspection, also when execution fails
// after a successful load.
func Run(ctx context.Context, source string, options ...Option) (*vm.Machine, error) {
	program, err := asm.Assemble(source)
	if err != nil {
		return nil, err
	}
	return Exec(ctx, program, options...)
}

// Exec executes an already-decoded program on a new machine.
func Exec(ctx context.Context, program []bytecode.Instruction, options ...Option) (*vm.Machine, error) {
	m := vm.New(options...)
	if err := m.Load(program); err != nil {
		return nil, err
	}
	if err := m.Run(ctx); err != nil {
		return m, err
	}
	return m, nil
}
