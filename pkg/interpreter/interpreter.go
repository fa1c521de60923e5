package interpreter

import (
	"io"
	"os"

	"halva/pkg/code"
)

// Interpreter drives a loaded program: it re-validates operand contracts,
// orders the instructions, registers labels, and then dispatches from
// program counter 0 until the program ends, exits, or aborts.
type Interpreter struct {
	program []code.Instruction
	state   *Program

	in   io.Reader
	out  io.Writer
	diag io.Writer

	exitCode int

	maxSteps int // maximum steps (0 = unlimited)
	steps    int // steps executed
}

type Option func(*Interpreter)

// WithInput sets the interpreted program's input line source.
func WithInput(r io.Reader) Option {
	return func(i *Interpreter) { i.in = r }
}

// WithOutput sets the primary output stream (WRITE).
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithDiag sets the diagnostic stream (DPRINT, BREAK).
func WithDiag(w io.Writer) Option {
	return func(i *Interpreter) { i.diag = w }
}

// WithMaxSteps sets a step budget; exceeding it aborts with an internal
// error. Zero means unlimited.
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// New validates and orders the instruction sequence, registers all labels,
// and returns an interpreter ready to Run. Contract violations are
// structural errors; duplicate labels are semantic errors.
func New(instrs []code.Instruction, opts ...Option) (*Interpreter, error) {
	for _, in := range instrs {
		if err := in.Opcode.ValidateArgs(in.Args); err != nil {
			return nil, Errorf(ErrStructure, "instruction %d: %v", in.Order, err)
		}
	}

	sorted, err := code.SortProgram(instrs)
	if err != nil {
		return nil, Errorf(ErrStructure, "%v", err)
	}

	it := &Interpreter{
		program: sorted,
		in:      os.Stdin,
		out:     os.Stdout,
		diag:    os.Stderr,
	}
	for _, o := range opts {
		o(it)
	}

	it.state = NewProgram(it.in, it.out, it.diag)

	if err := it.registerLabels(); err != nil {
		return nil, err
	}

	return it, nil
}

// registerLabels is the first pass: walk the ordered sequence and bind every
// LABEL to its position. Addresses are indices into the sorted program, so
// resolution is independent of where a jump sits relative to its target.
func (i *Interpreter) registerLabels() error {
	for addr, in := range i.program {
		if in.Opcode != code.OpLabel {
			continue
		}

		if err := i.state.CreateLabel(in.Args[0].Name, addr); err != nil {
			return err
		}
	}

	return nil
}

// State exposes the program state, mainly for tests and the runner's
// diagnostics.
func (i *Interpreter) State() *Program {
	return i.state
}

// Program returns the ordered instruction sequence.
func (i *Interpreter) Program() []code.Instruction {
	return i.program
}

// ExitCode returns the code the finished program terminated with.
func (i *Interpreter) ExitCode() int {
	return i.exitCode
}

// Step executes a single instruction, returning (halted, error). Falling
// off the end of the program halts normally.
func (i *Interpreter) Step() (bool, error) {
	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return false, Errorf(ErrInternal, "maximum step count %d exceeded", i.maxSteps)
	}

	pc := i.state.PC()
	if pc >= len(i.program) {
		return true, nil
	}

	i.steps++
	return i.execute(i.program[pc])
}

// Run executes until the program ends, requests exit, or aborts. The
// returned code is the process exit code for the non-error paths: 0 when
// execution fell off the end, or the EXIT-supplied code.
func (i *Interpreter) Run() (int, error) {
	for {
		halted, err := i.Step()
		if err != nil {
			return 0, err
		}

		if halted {
			return i.exitCode, nil
		}
	}
}
