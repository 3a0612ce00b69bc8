// Package vm provides the tiervm adaptive execution engine: a stack-based
// interpreter that profiles per-address execution counts and specializes hot
// straight-line regions into cached fast paths with identical semantics.
package vm

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tiervm/tiervm/bytecode"
	"github.com/tiervm/tiervm/errz"
	"github.com/tiervm/tiervm/object"
	"github.com/tiervm/tiervm/op"
)

const (
	MaxStackDepth = 1024
	MaxCallDepth  = 128

	DefaultHotspotThreshold = 5
	DefaultMaxScan          = 30
	DefaultMinRegionLen     = 5

	// DefaultContextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// InputFunc supplies one line of input for the INPUT opcode. An error return
// (typically io.EOF) makes INPUT push Int(0).
type InputFunc func() (string, error)

// Machine is one execution engine instance. It exclusively owns its
// execution state; a Machine and any fast paths compiled from it must not
// be shared across engines.
type Machine struct {
	pc        int // address of the next instruction to execute
	sp        int // operand stack pointer
	csp       int // call stack pointer
	halt      int32
	program   []bytecode.Instruction
	stack     [MaxStackDepth]object.Object
	callStack [MaxCallDepth]int
	memory    map[int]object.Object
	locals    []object.Object

	profile  *hotspotProfile
	cache    map[int]*compiledRegion
	compiled map[int]bool // addresses covered by any cached region

	threshold    int
	maxScan      int
	minRegionLen int

	// maxInstructions bounds the total number of executed instructions.
	// Zero disables the budget.
	maxInstructions int64

	// contextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). A value of 0 disables the check,
	// relying only on the background goroutine.
	contextCheckInterval int

	instructionCount int64

	output io.Writer
	input  InputFunc
	logger zerolog.Logger

	running  bool
	runMutex sync.Mutex
}

// New creates a new Machine with the given options applied.
func New(options ...Option) *Machine {
	m := &Machine{
		sp:                   -1,
		csp:                  -1,
		memory:               map[int]object.Object{},
		profile:              newHotspotProfile(),
		cache:                map[int]*compiledRegion{},
		compiled:             map[int]bool{},
		threshold:            DefaultHotspotThreshold,
		maxScan:              DefaultMaxScan,
		minRegionLen:         DefaultMinRegionLen,
		contextCheckInterval: DefaultContextCheckInterval,
		output:               os.Stdout,
		logger:               zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.input == nil {
		m.input = stdinInput()
	}
	return m
}

// Load validates and installs a program. It must be called before Run.
// The sequence must be non-empty and every instruction must satisfy the
// opcode catalog's arity contract; all violations are reported together.
func (m *Machine) Load(instructions []bytecode.Instruction) error {
	if len(instructions) == 0 {
		return errz.New(errz.ErrLoad, "cannot load empty program")
	}
	program := make([]bytecode.Instruction, len(instructions))
	copy(program, instructions)
	for i := range program {
		program[i].Address = i
	}
	if err := bytecode.Validate(program); err != nil {
		return err
	}
	m.program = program
	m.pc = 0
	return nil
}

func (m *Machine) start(ctx context.Context) error {
	m.runMutex.Lock()
	defer m.runMutex.Unlock()
	if m.running {
		return errz.New(errz.ErrRuntime, "machine is already running")
	}
	m.running = true
	// Halt execution when the context is cancelled
	m.halt = 0
	if doneChan := ctx.Done(); doneChan != nil {
		go func() {
			<-doneChan
			atomic.StoreInt32(&m.halt, 1)
		}()
	}
	return nil
}

func (m *Machine) stop() {
	m.runMutex.Lock()
	defer m.runMutex.Unlock()
	m.running = false
}

// Run executes the loaded program to completion, to HALT, or to an error,
// in one synchronous call. On error, the machine's state is left exactly as
// it was at the failing instruction and the error carries its address.
func (m *Machine) Run(ctx context.Context) (err error) {
	if m.program == nil {
		return errz.New(errz.ErrLoad, "no program loaded")
	}
	if err := m.start(ctx); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = errz.Newf(errz.ErrRuntime, "panic: %v", r).At(m.pc)
		}
		m.stop()
	}()
	return m.eval(ctx)
}

// The dispatch loop. On each step the fast-path cache is consulted first;
// a hit executes one whole region per transition. Otherwise the current
// address is profiled and, when it becomes hot, specialization is attempted
// before the instruction is fetched and interpreted normally.
func (m *Machine) eval(ctx context.Context) error {
	var sinceCheck int
	checkInterval := m.contextCheckInterval
	doneChan := ctx.Done()

	for m.pc < len(m.program) {

		if atomic.LoadInt32(&m.halt) == 1 {
			return ctx.Err()
		}

		// Deterministic check of ctx.Done() every N instructions.
		if checkInterval > 0 && doneChan != nil {
			sinceCheck++
			if sinceCheck >= checkInterval {
				sinceCheck = 0
				select {
				case <-doneChan:
					atomic.StoreInt32(&m.halt, 1)
					return ctx.Err()
				default:
				}
			}
		}

		// Fast path: one transition covers the whole region.
		if region, ok := m.cache[m.pc]; ok {
			m.logger.Trace().Int("entry", region.entry).Int("exit", region.exit).
				Msg("fast path dispatch")
			next, err := region.invoke(m)
			if err != nil {
				return m.locate(err)
			}
			m.instructionCount += int64(len(region.steps))
			if err := m.checkBudget(); err != nil {
				return err
			}
			m.pc = next
			continue
		}

		instr := m.program[m.pc]

		// HALT is terminal from either dispatch state. It still counts as
		// an executed instruction.
		if instr.Opcode == op.Halt {
			m.instructionCount++
			return nil
		}

		// Profile the address and attempt specialization once it is hot.
		// Every interpreted visit counts, including jumps into the interior
		// of a cached region, but such addresses never re-trigger.
		if count := m.profile.Record(m.pc); count >= m.threshold && !m.compiled[m.pc] {
			if m.trySpecialize(m.pc) {
				// The cache check above will now hit.
				continue
			}
		}

		m.instructionCount++
		if err := m.checkBudget(); err != nil {
			return err
		}

		if m.logger.GetLevel() <= zerolog.TraceLevel {
			m.logger.Trace().Int("pc", m.pc).Str("instr", instr.String()).
				Int("depth", m.sp+1).Msg("step")
		}

		handler := handlerFor(instr.Opcode)
		if handler == nil {
			return m.errorf(errz.ErrInvalidInstruction, "unknown opcode: %d", uint16(instr.Opcode))
		}
		target, jumped, err := handler.Interpret(m, instr)
		if err != nil {
			return m.locate(err)
		}
		if jumped {
			m.pc = target
		} else {
			m.pc++
		}
	}
	return nil
}

// Attempts to select and compile a region starting at entry. Returns true
// only when a region was cached. Selection or synthesis failure leaves the
// address uncached; a later hot visit will try again.
func (m *Machine) trySpecialize(entry int) bool {
	r, ok := selectRegion(m.program, entry, m.maxScan, m.minRegionLen)
	if !ok {
		return false
	}
	compiled, err := compileRegion(r.entry, r.exit, m.program)
	if err != nil {
		m.logger.Debug().Err(err).Int("entry", r.entry).Int("exit", r.exit).
			Msg("specialization failed")
		return false
	}
	m.cache[r.entry] = compiled
	for addr := r.entry; addr < r.exit; addr++ {
		m.compiled[addr] = true
	}
	m.logger.Debug().Int("entry", r.entry).Int("exit", r.exit).
		Int("fragments", len(compiled.steps)).Msg("region compiled")
	return true
}

func (m *Machine) checkBudget() error {
	if m.maxInstructions > 0 && m.instructionCount > m.maxInstructions {
		return m.errorf(errz.ErrLimit,
			"instruction budget of %d exceeded", m.maxInstructions)
	}
	return nil
}

// Execution state mutators. These are the only operations that touch the
// stack, call stack, memory, and locals; the interpreter and all fast-path
// fragments act through this one surface.

// require fails with a stack underflow unless the stack holds at least n
// elements. Handlers call it before popping so that a failing instruction
// never partially mutates the stack.
func (m *Machine) require(n int, name string) error {
	if m.sp+1 < n {
		return errz.Newf(errz.ErrStackUnderflow,
			"stack underflow in %s: need %d, have %d", name, n, m.sp+1)
	}
	return nil
}

func (m *Machine) push(obj object.Object) error {
	if m.sp+1 >= MaxStackDepth {
		return errz.Newf(errz.ErrLimit, "stack overflow: depth %d", MaxStackDepth)
	}
	m.sp++
	m.stack[m.sp] = obj
	return nil
}

func (m *Machine) pop() (object.Object, error) {
	if err := m.require(1, "pop"); err != nil {
		return nil, err
	}
	return m.take(), nil
}

// take removes and returns TOS. Callers must require first.
func (m *Machine) take() object.Object {
	obj := m.stack[m.sp]
	m.stack[m.sp] = nil
	m.sp--
	return obj
}

func (m *Machine) peek() (object.Object, error) {
	if err := m.require(1, "peek"); err != nil {
		return nil, err
	}
	return m.stack[m.sp], nil
}

func (m *Machine) loadLocal(index int) (object.Object, error) {
	if index < 0 {
		return nil, errz.Newf(errz.ErrMemoryAccess, "invalid local index: %d", index)
	}
	m.growLocals(index)
	return m.locals[index], nil
}

func (m *Machine) storeLocal(index int, value object.Object) error {
	if index < 0 {
		return errz.Newf(errz.ErrMemoryAccess, "invalid local index: %d", index)
	}
	m.growLocals(index)
	m.locals[index] = value
	return nil
}

// growLocals zero-fills the locals array up to and including index. Reads
// of never-written locals therefore yield Int(0) rather than failing; the
// engine preserves this deliberately for compatibility with programs that
// rely on it.
func (m *Machine) growLocals(index int) {
	for index >= len(m.locals) {
		m.locals = append(m.locals, object.NewInt(0))
	}
}

func (m *Machine) loadMem(address int) (object.Object, error) {
	if address < 0 {
		return nil, errz.Newf(errz.ErrMemoryAccess, "invalid memory address: %d", address)
	}
	if value, ok := m.memory[address]; ok {
		return value, nil
	}
	return object.NewInt(0), nil
}

func (m *Machine) storeMem(address int, value object.Object) error {
	if address < 0 {
		return errz.Newf(errz.ErrMemoryAccess, "invalid memory address: %d", address)
	}
	m.memory[address] = value
	return nil
}

func (m *Machine) callPush(returnAddr int) error {
	if m.csp+1 >= MaxCallDepth {
		return errz.Newf(errz.ErrLimit, "call stack overflow: depth %d", MaxCallDepth)
	}
	m.csp++
	m.callStack[m.csp] = returnAddr
	return nil
}

func (m *Machine) callPop() (int, error) {
	if m.csp < 0 {
		return 0, errz.New(errz.ErrCallStackUnderflow, "return with empty call stack")
	}
	addr := m.callStack[m.csp]
	m.csp--
	return addr, nil
}

// State inspection for hosts and tests. All return copies.

// Stack returns the operand stack, bottom first.
func (m *Machine) Stack() []object.Object {
	out := make([]object.Object, m.sp+1)
	copy(out, m.stack[:m.sp+1])
	return out
}

// Memory returns the populated memory cells.
func (m *Machine) Memory() map[int]object.Object {
	out := make(map[int]object.Object, len(m.memory))
	for k, v := range m.memory {
		out[k] = v
	}
	return out
}

// Locals returns the local variable slots.
func (m *Machine) Locals() []object.Object {
	out := make([]object.Object, len(m.locals))
	copy(out, m.locals)
	return out
}

// PC returns the address of the next instruction to execute.
func (m *Machine) PC() int {
	return m.pc
}

// locate pins an error to the current instruction address unless it already
// carries one.
func (m *Machine) locate(err error) error {
	if e, ok := err.(*errz.Error); ok {
		return e.At(m.pc)
	}
	return err
}

func (m *Machine) errorf(kind errz.ErrorKind, format string, args ...any) error {
	return errz.Newf(kind, format, args...).At(m.pc)
}

func stdinInput() InputFunc {
	reader := bufio.NewReader(os.Stdin)
	return func() (string, error) {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
