package interpreter

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"halva/pkg/code"
	"halva/pkg/stack"
)

// Program is the full mutable state of one run: frames, stacks, labels, the
// program counter, and the interpreted program's I/O streams. It is owned
// exclusively by one dispatch loop.
type Program struct {
	pc int

	labels map[string]int

	global    *Frame
	temp      *Frame
	tempValid bool
	locals    *stack.Stack[*Frame]

	data  *stack.Stack[Value]
	calls *stack.Stack[int]

	input *bufio.Reader
	out   io.Writer
	diag  io.Writer
}

// NewProgram creates a fresh program state reading lines from input and
// writing to out (primary) and diag (diagnostic).
func NewProgram(input io.Reader, out, diag io.Writer) *Program {
	return &Program{
		labels: make(map[string]int),
		global: NewFrame(),
		temp:   NewFrame(),
		locals: stack.New[*Frame](),
		data:   stack.New[Value](),
		calls:  stack.New[int](),
		input:  bufio.NewReader(input),
		out:    out,
		diag:   diag,
	}
}

// PC returns the current program counter.
func (p *Program) PC() int {
	return p.pc
}

// SetPC moves the program counter; negative targets are a semantic error.
func (p *Program) SetPC(pc int) error {
	if pc < 0 {
		return Errorf(ErrSemantic, "invalid program counter value %d", pc)
	}

	p.pc = pc
	return nil
}

// CreateLabel binds name to an instruction address. Duplicate names are
// rejected unconditionally, even at the same address.
func (p *Program) CreateLabel(name string, addr int) error {
	if _, ok := p.labels[name]; ok {
		return Errorf(ErrSemantic, "label %s already used", name)
	}

	p.labels[name] = addr
	return nil
}

// LabelAddress resolves a label to its instruction address.
func (p *Program) LabelAddress(name string) (int, error) {
	addr, ok := p.labels[name]
	if !ok {
		return 0, Errorf(ErrSemantic, "label %s does not exist", name)
	}

	return addr, nil
}

// CreateFrame clears and validates the temporary frame, overwriting any
// existing one.
func (p *Program) CreateFrame() {
	p.temp.Clear()
	p.tempValid = true
}

// PushFrame moves the temporary frame onto the local-frame stack, consuming
// its validity.
func (p *Program) PushFrame() error {
	if !p.tempValid {
		return Errorf(ErrNoSuchFrame, "temporary frame does not exist, nothing to push")
	}

	p.locals.Push(p.temp)
	p.temp = NewFrame()
	p.tempValid = false
	return nil
}

// PopFrame moves the top local frame back into the temporary frame,
// re-establishing its validity.
func (p *Program) PopFrame() error {
	f, ok := p.locals.Pop()
	if !ok {
		return Errorf(ErrNoSuchFrame, "local frame stack is empty, nothing to pop")
	}

	p.temp = f
	p.tempValid = true
	return nil
}

// ResolveFrame returns the frame a variable reference names: the global
// frame, the top local frame, or the temporary frame.
func (p *Program) ResolveFrame(kind code.FrameType) (*Frame, error) {
	switch kind {
	case code.FrameGlobal:
		return p.global, nil

	case code.FrameLocal:
		f, ok := p.locals.Peek()
		if !ok {
			return nil, Errorf(ErrNoSuchFrame, "no local frame")
		}
		return f, nil

	case code.FrameTemporary:
		if !p.tempValid {
			return nil, Errorf(ErrNoSuchFrame, "temporary frame does not exist")
		}
		return p.temp, nil
	}

	return nil, Errorf(ErrInternal, "unknown frame type %q", string(kind))
}

// DeclareVariable declares var in its frame without a value.
func (p *Program) DeclareVariable(v code.Argument) error {
	f, err := p.ResolveFrame(v.Frame)
	if err != nil {
		return err
	}

	return f.Define(v.Name)
}

// SetVariable stores a value into a declared variable.
func (p *Program) SetVariable(v code.Argument, val Value) error {
	f, err := p.ResolveFrame(v.Frame)
	if err != nil {
		return err
	}

	return f.Set(v.Name, val)
}

// VariableValue reads a declared, initialized variable.
func (p *Program) VariableValue(v code.Argument) (Value, error) {
	f, err := p.ResolveFrame(v.Frame)
	if err != nil {
		return Value{}, err
	}

	return f.Value(v.Name)
}

// VariableInitialized reports whether a declared variable holds a value.
func (p *Program) VariableInitialized(v code.Argument) (bool, error) {
	f, err := p.ResolveFrame(v.Frame)
	if err != nil {
		return false, err
	}

	return f.Initialized(v.Name)
}

// DeleteVariable removes a variable; absent variables are a no-op.
func (p *Program) DeleteVariable(v code.Argument) error {
	f, err := p.ResolveFrame(v.Frame)
	if err != nil {
		return err
	}

	f.Delete(v.Name)
	return nil
}

// PushData pushes a resolved value onto the data stack.
func (p *Program) PushData(v Value) {
	p.data.Push(v)
}

// PopData pops the data stack; popping empty is a missing-value error.
func (p *Program) PopData() (Value, error) {
	v, ok := p.data.Pop()
	if !ok {
		return Value{}, Errorf(ErrMissingValue, "data stack is empty")
	}

	return v, nil
}

// PushCall pushes a return address onto the call stack.
func (p *Program) PushCall(addr int) {
	p.calls.Push(addr)
}

// PopCall pops the call stack; popping empty is a missing-value error.
func (p *Program) PopCall() (int, error) {
	addr, ok := p.calls.Pop()
	if !ok {
		return 0, Errorf(ErrMissingValue, "call stack is empty")
	}

	return addr, nil
}

// ReadLine reads the next input line without its terminator; ok is false at
// end of input.
func (p *Program) ReadLine() (string, bool) {
	line, err := p.input.ReadString('\n')
	if line == "" && err != nil {
		return "", false
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true
}

// Output returns the interpreted program's primary output stream.
func (p *Program) Output() io.Writer {
	return p.out
}

// Diag returns the interpreted program's diagnostic stream.
func (p *Program) Diag() io.Writer {
	return p.diag
}

// DumpState writes a human-readable dump of the whole state: program
// counter, labels, frames, and both stacks.
func (p *Program) DumpState(w io.Writer) {
	fmt.Fprintf(w, "Program counter: %d\n", p.pc)

	names := make([]string, 0, len(p.labels))
	for name := range p.labels {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "Labels:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s -> %d\n", name, p.labels[name])
	}

	fmt.Fprintf(w, "Global frame: %s\n", p.global)
	if p.tempValid {
		fmt.Fprintf(w, "Temporary frame: %s\n", p.temp)
	} else {
		fmt.Fprintln(w, "Temporary frame: <invalid>")
	}

	fmt.Fprintln(w, "Local frames:")
	frames := p.locals.Items()
	for i := len(frames) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "  %d: %s\n", i, frames[i])
	}

	fmt.Fprintln(w, "Data stack:")
	for _, v := range p.data.Items() {
		fmt.Fprintf(w, "  %s\n", v)
	}

	fmt.Fprintln(w, "Call stack:")
	for _, addr := range p.calls.Items() {
		fmt.Fprintf(w, "  %d\n", addr)
	}
}
