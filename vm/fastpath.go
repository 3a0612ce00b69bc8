package vm

import (
	"github.com/tiervm/tiervm/bytecode"
	"github.com/tiervm/tiervm/errz"
)

// compiledRegion is the synthesized fast path for one region: the
// pre-bound steps for instructions [entry, exit), executed back to back
// with no per-instruction dispatch. Invoking it performs the exact
// cumulative effect of interpreting the region and yields exit as the next
// pc. A compiled region closes over nothing itself; its steps act on
// whichever machine invokes it, and it lives for the remainder of the run.
type compiledRegion struct {
	entry int
	exit  int
	steps []fragment
}

// fragment pairs a step with the address it was synthesized from, so a
// failure inside the fast path is attributed to the exact instruction.
type fragment struct {
	addr int
	run  step
}

// invoke executes the region's steps in order and returns the next pc. On
// error the machine's pc is left at the failing instruction's address and
// state reflects every step completed before it, exactly as interpretation
// would leave it.
func (r *compiledRegion) invoke(m *Machine) (int, error) {
	for i := range r.steps {
		if err := r.steps[i].run(m); err != nil {
			m.pc = r.steps[i].addr
			return 0, err
		}
	}
	return r.exit, nil
}

// compileRegion synthesizes a fast path for instructions [entry, exit) by
// asking each instruction's handler for its specialized step and
// concatenating them. Any synthesis failure is reported as a specialize
// error; the caller degrades to interpretation.
func compileRegion(entry, exit int, program []bytecode.Instruction) (*compiledRegion, error) {
	steps := make([]fragment, 0, exit-entry)
	for addr := entry; addr < exit; addr++ {
		instr := program[addr]
		handler := handlerFor(instr.Opcode)
		if handler == nil {
			return nil, errz.Newf(errz.ErrSpecialize,
				"no handler for opcode %s at address %d", instr.Opcode, addr)
		}
		run, err := handler.Specialize(instr)
		if err != nil {
			return nil, errz.Newf(errz.ErrSpecialize,
				"cannot specialize %s at address %d: %v", instr.Opcode, addr, err)
		}
		steps = append(steps, fragment{addr: addr, run: run})
	}
	return &compiledRegion{entry: entry, exit: exit, steps: steps}, nil
}
