package vm

import (
	"fmt"
	"strconv"

	"github.com/tiervm/tiervm/bytecode"
	"github.com/tiervm/tiervm/errz"
	"github.com/tiervm/tiervm/object"
	"github.com/tiervm/tiervm/op"
)

// A handler implements one opcode family.
//
// Interpret performs the instruction's effect on the machine state. A taken
// control transfer is reported via (target, true); otherwise the caller
// advances pc by one.
//
// Specialize returns a pre-bound step with the identical effect for
// inclusion in a synthesized fast path. It is defined only for opcodes the
// catalog marks Compilable.
type handler interface {
	Interpret(m *Machine, instr bytecode.Instruction) (target int, jumped bool, err error)
	Specialize(instr bytecode.Instruction) (step, error)
}

// step is one pre-bound unit of a fast path: operands are already decoded,
// so invoking it costs no dispatch or operand lookup.
type step func(m *Machine) error

var handlers [256]handler

func init() {
	register := func(h handler, codes ...op.Code) {
		for _, code := range codes {
			handlers[code] = h
		}
	}
	register(stackHandler{}, op.Push, op.Pop, op.Dup, op.Swap, op.Rot)
	register(arithmeticHandler{}, op.Add, op.Sub, op.Mul, op.Div, op.Mod, op.Neg)
	register(comparisonHandler{}, op.Eq, op.Ne, op.Lt, op.Le, op.Gt, op.Ge)
	register(controlHandler{}, op.Jump, op.JumpIfZero, op.JumpIfNotZero, op.Call, op.Ret)
	register(memoryHandler{}, op.Load, op.Store, op.LoadLocal, op.StoreLocal)
	register(ioHandler{}, op.Print, op.PrintChar, op.Input)
	register(systemHandler{}, op.Halt, op.Nop)
}

func handlerFor(code op.Code) handler {
	if int(code) >= len(handlers) {
		return nil
	}
	return handlers[code]
}

func notSpecializable(code op.Code) (step, error) {
	return nil, errz.Newf(errz.ErrSpecialize, "%s is not specializable", code)
}

// Stack operations

type stackHandler struct{}

func (h stackHandler) Interpret(m *Machine, instr bytecode.Instruction) (int, bool, error) {
	switch instr.Opcode {
	case op.Push:
		return 0, false, m.push(instr.Operands[0])
	case op.Pop:
		if err := m.require(1, "POP"); err != nil {
			return 0, false, err
		}
		m.take()
		return 0, false, nil
	case op.Dup:
		top, err := m.peek()
		if err != nil {
			return 0, false, err
		}
		return 0, false, m.push(top)
	case op.Swap:
		if err := m.require(2, "SWAP"); err != nil {
			return 0, false, err
		}
		m.stack[m.sp], m.stack[m.sp-1] = m.stack[m.sp-1], m.stack[m.sp]
		return 0, false, nil
	case op.Rot:
		// [a b c] becomes [b c a]: the third element moves to the top.
		if err := m.require(3, "ROT"); err != nil {
			return 0, false, err
		}
		c, b, a := m.take(), m.take(), m.take()
		m.push(b)
		m.push(c)
		m.push(a)
		return 0, false, nil
	}
	return 0, false, errz.Newf(errz.ErrInvalidInstruction, "unexpected stack opcode: %s", instr.Opcode)
}

func (h stackHandler) Specialize(instr bytecode.Instruction) (step, error) {
	switch instr.Opcode {
	case op.Push:
		value := instr.Operands[0]
		return func(m *Machine) error {
			return m.push(value)
		}, nil
	case op.Pop:
		return func(m *Machine) error {
			if err := m.require(1, "POP"); err != nil {
				return err
			}
			m.take()
			return nil
		}, nil
	case op.Dup:
		return func(m *Machine) error {
			top, err := m.peek()
			if err != nil {
				return err
			}
			return m.push(top)
		}, nil
	case op.Swap:
		return func(m *Machine) error {
			if err := m.require(2, "SWAP"); err != nil {
				return err
			}
			m.stack[m.sp], m.stack[m.sp-1] = m.stack[m.sp-1], m.stack[m.sp]
			return nil
		}, nil
	case op.Rot:
		return func(m *Machine) error {
			if err := m.require(3, "ROT"); err != nil {
				return err
			}
			c, b, a := m.take(), m.take(), m.take()
			m.push(b)
			m.push(c)
			m.push(a)
			return nil
		}, nil
	}
	return notSpecializable(instr.Opcode)
}

// Arithmetic operations

type arithmeticHandler struct{}

// A failing arithmetic instruction must not touch the stack, so operands
// are read in place and popped only once the result exists.
func arithmeticStep(m *Machine, code op.Code, name string) error {
	if code == op.Neg {
		if err := m.require(1, name); err != nil {
			return err
		}
		result, err := object.Negate(m.stack[m.sp])
		if err != nil {
			return err
		}
		m.take()
		return m.push(result)
	}
	if err := m.require(2, name); err != nil {
		return err
	}
	b := m.stack[m.sp]
	a := m.stack[m.sp-1]
	result, err := object.BinaryOp(code, a, b)
	if err != nil {
		return err
	}
	m.take()
	m.take()
	return m.push(result)
}

func (h arithmeticHandler) Interpret(m *Machine, instr bytecode.Instruction) (int, bool, error) {
	return 0, false, arithmeticStep(m, instr.Opcode, instr.Opcode.String())
}

func (h arithmeticHandler) Specialize(instr bytecode.Instruction) (step, error) {
	code := instr.Opcode
	name := code.String()
	return func(m *Machine) error {
		return arithmeticStep(m, code, name)
	}, nil
}

// Comparison operations

type comparisonHandler struct{}

func comparisonStep(m *Machine, code op.Code, name string) error {
	if err := m.require(2, name); err != nil {
		return err
	}
	b := m.stack[m.sp]
	a := m.stack[m.sp-1]
	result, err := object.Compare(code, a, b)
	if err != nil {
		return err
	}
	m.take()
	m.take()
	return m.push(result)
}

func (h comparisonHandler) Interpret(m *Machine, instr bytecode.Instruction) (int, bool, error) {
	return 0, false, comparisonStep(m, instr.Opcode, instr.Opcode.String())
}

func (h comparisonHandler) Specialize(instr bytecode.Instruction) (step, error) {
	code := instr.Opcode
	name := code.String()
	return func(m *Machine) error {
		return comparisonStep(m, code, name)
	}, nil
}

// Control flow

type controlHandler struct{}

func (h controlHandler) Interpret(m *Machine, instr bytecode.Instruction) (int, bool, error) {
	switch instr.Opcode {
	case op.Jump:
		target, err := m.controlTarget(instr)
		if err != nil {
			return 0, false, err
		}
		return target, true, nil
	case op.JumpIfZero:
		if err := m.require(1, "JUMP_IF_ZERO"); err != nil {
			return 0, false, err
		}
		if object.IsZero(m.take()) {
			target, err := m.controlTarget(instr)
			if err != nil {
				return 0, false, err
			}
			return target, true, nil
		}
		return 0, false, nil
	case op.JumpIfNotZero:
		if err := m.require(1, "JUMP_IF_NOT_ZERO"); err != nil {
			return 0, false, err
		}
		if !object.IsZero(m.take()) {
			target, err := m.controlTarget(instr)
			if err != nil {
				return 0, false, err
			}
			return target, true, nil
		}
		return 0, false, nil
	case op.Call:
		target, err := m.controlTarget(instr)
		if err != nil {
			return 0, false, err
		}
		if err := m.callPush(m.pc + 1); err != nil {
			return 0, false, err
		}
		return target, true, nil
	case op.Ret:
		target, err := m.callPop()
		if err != nil {
			return 0, false, err
		}
		// A return address equal to the program length falls off the end,
		// which is normal completion.
		if target < 0 || target > len(m.program) {
			return 0, false, errz.Newf(errz.ErrInvalidTarget,
				"return target %d out of bounds", target)
		}
		return target, true, nil
	}
	return 0, false, errz.Newf(errz.ErrInvalidInstruction, "unexpected control opcode: %s", instr.Opcode)
}

// Control flow ends a region at selection time, so these opcodes never
// reach the specializer through the normal path.
func (h controlHandler) Specialize(instr bytecode.Instruction) (step, error) {
	return notSpecializable(instr.Opcode)
}

// controlTarget decodes and bounds-checks a jump or call operand.
func (m *Machine) controlTarget(instr bytecode.Instruction) (int, error) {
	value, ok := object.AsInt(instr.Operands[0])
	if !ok {
		return 0, errz.Newf(errz.ErrInvalidTarget,
			"%s target must be an integer (got %s)", instr.Opcode, instr.Operands[0].Type())
	}
	target := int(value)
	if target < 0 || target >= len(m.program) {
		return 0, errz.Newf(errz.ErrInvalidTarget,
			"%s target %d out of bounds", instr.Opcode, target)
	}
	return target, nil
}

// Memory operations

type memoryHandler struct{}

func (h memoryHandler) Interpret(m *Machine, instr bytecode.Instruction) (int, bool, error) {
	index, err := operandIndex(instr)
	if err != nil {
		return 0, false, err
	}
	switch instr.Opcode {
	case op.Load:
		value, err := m.loadMem(index)
		if err != nil {
			return 0, false, err
		}
		return 0, false, m.push(value)
	case op.Store:
		if index < 0 {
			return 0, false, errz.Newf(errz.ErrMemoryAccess, "invalid memory address: %d", index)
		}
		if err := m.require(1, "STORE"); err != nil {
			return 0, false, err
		}
		return 0, false, m.storeMem(index, m.take())
	case op.LoadLocal:
		value, err := m.loadLocal(index)
		if err != nil {
			return 0, false, err
		}
		return 0, false, m.push(value)
	case op.StoreLocal:
		if index < 0 {
			return 0, false, errz.Newf(errz.ErrMemoryAccess, "invalid local index: %d", index)
		}
		if err := m.require(1, "STORE_LOCAL"); err != nil {
			return 0, false, err
		}
		return 0, false, m.storeLocal(index, m.take())
	}
	return 0, false, errz.Newf(errz.ErrInvalidInstruction, "unexpected memory opcode: %s", instr.Opcode)
}

func (h memoryHandler) Specialize(instr bytecode.Instruction) (step, error) {
	index, err := operandIndex(instr)
	if err != nil {
		return nil, err
	}
	switch instr.Opcode {
	case op.Load:
		return func(m *Machine) error {
			value, err := m.loadMem(index)
			if err != nil {
				return err
			}
			return m.push(value)
		}, nil
	case op.Store:
		return func(m *Machine) error {
			if index < 0 {
				return errz.Newf(errz.ErrMemoryAccess, "invalid memory address: %d", index)
			}
			if err := m.require(1, "STORE"); err != nil {
				return err
			}
			return m.storeMem(index, m.take())
		}, nil
	case op.LoadLocal:
		return func(m *Machine) error {
			value, err := m.loadLocal(index)
			if err != nil {
				return err
			}
			return m.push(value)
		}, nil
	case op.StoreLocal:
		return func(m *Machine) error {
			if index < 0 {
				return errz.Newf(errz.ErrMemoryAccess, "invalid local index: %d", index)
			}
			if err := m.require(1, "STORE_LOCAL"); err != nil {
				return err
			}
			return m.storeLocal(index, m.take())
		}, nil
	}
	return notSpecializable(instr.Opcode)
}

// operandIndex decodes a memory address or local index operand.
func operandIndex(instr bytecode.Instruction) (int, error) {
	value, ok := object.AsInt(instr.Operands[0])
	if !ok {
		return 0, errz.Newf(errz.ErrMemoryAccess,
			"%s operand must be an integer (got %s)", instr.Opcode, instr.Operands[0].Type())
	}
	return int(value), nil
}

// I/O operations

type ioHandler struct{}

func (h ioHandler) Interpret(m *Machine, instr bytecode.Instruction) (int, bool, error) {
	switch instr.Opcode {
	case op.Print:
		return 0, false, m.printValue()
	case op.PrintChar:
		return 0, false, m.printChar()
	case op.Input:
		return 0, false, m.readInput()
	}
	return 0, false, errz.Newf(errz.ErrInvalidInstruction, "unexpected io opcode: %s", instr.Opcode)
}

func (h ioHandler) Specialize(instr bytecode.Instruction) (step, error) {
	switch instr.Opcode {
	case op.Print:
		return func(m *Machine) error {
			return m.printValue()
		}, nil
	case op.PrintChar:
		return func(m *Machine) error {
			return m.printChar()
		}, nil
	}
	// INPUT blocks on the host and is not repeatable; the catalog marks it
	// NotCompilable so the selector never includes it.
	return notSpecializable(instr.Opcode)
}

func (m *Machine) printValue() error {
	if err := m.require(1, "PRINT"); err != nil {
		return err
	}
	value := m.take()
	text := value.Inspect()
	if s, ok := value.(*object.String); ok {
		text = s.Value()
	}
	if _, err := fmt.Fprintf(m.output, "Output: %s\n", text); err != nil {
		return errz.Newf(errz.ErrRuntime, "output error: %v", err)
	}
	return nil
}

func (m *Machine) printChar() error {
	if err := m.require(1, "PRINT_CHAR"); err != nil {
		return err
	}
	value := m.stack[m.sp]
	code, ok := object.AsInt(value)
	if !ok || code < 0 || code > 127 {
		return errz.Newf(errz.ErrType, "invalid character code: %s", value.Inspect())
	}
	m.take()
	if _, err := fmt.Fprintf(m.output, "%c", rune(code)); err != nil {
		return errz.Newf(errz.ErrRuntime, "output error: %v", err)
	}
	return nil
}

// readInput reads one line from the injected source and coerces it: integer
// first, then float, falling back to the literal string. EOF pushes Int(0).
func (m *Machine) readInput() error {
	line, err := m.input()
	if err != nil {
		return m.push(object.NewInt(0))
	}
	if n, err := strconv.ParseInt(line, 10, 64); err == nil {
		return m.push(object.NewInt(n))
	}
	if f, err := strconv.ParseFloat(line, 64); err == nil {
		return m.push(object.NewFloat(f))
	}
	return m.push(object.NewString(line))
}

// System operations

type systemHandler struct{}

func (h systemHandler) Interpret(m *Machine, instr bytecode.Instruction) (int, bool, error) {
	// HALT is intercepted by the dispatch loop; NOP has no effect.
	return 0, false, nil
}

func (h systemHandler) Specialize(instr bytecode.Instruction) (step, error) {
	if instr.Opcode == op.Nop {
		return func(m *Machine) error { return nil }, nil
	}
	return notSpecializable(instr.Opcode)
}
