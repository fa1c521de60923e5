package interpreter_test

import (
	"bytes"
	"strings"
	"testing"

	"halva/pkg/code"
	"halva/pkg/interpreter"
)

func newState() *interpreter.Program {
	return interpreter.NewProgram(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
}

func gfVar(name string) code.Argument {
	return code.Argument{Kind: code.ArgVariable, Frame: code.FrameGlobal, Name: name}
}

func tfVar(name string) code.Argument {
	return code.Argument{Kind: code.ArgVariable, Frame: code.FrameTemporary, Name: name}
}

func lfVar(name string) code.Argument {
	return code.Argument{Kind: code.ArgVariable, Frame: code.FrameLocal, Name: name}
}

func TestFrameTransitions(t *testing.T) {
	st := newState()

	// temporary frame does not exist yet
	err := st.PushFrame()
	if kindOf(t, err) != interpreter.ErrNoSuchFrame {
		t.Errorf("push without create: expected ErrNoSuchFrame, got %v", err)
	}
	if _, err := st.ResolveFrame(code.FrameTemporary); err == nil {
		t.Errorf("resolve invalid TF: expected error, got none")
	}
	if _, err := st.ResolveFrame(code.FrameLocal); err == nil {
		t.Errorf("resolve empty LF: expected error, got none")
	}

	// create, populate, push
	st.CreateFrame()
	if err := st.DeclareVariable(tfVar("a")); err != nil {
		t.Fatalf("declare TF@a failed: %v", err)
	}
	if err := st.SetVariable(tfVar("a"), interpreter.NewInt(1)); err != nil {
		t.Fatalf("set TF@a failed: %v", err)
	}
	if err := st.PushFrame(); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	// the pushed frame is now the local frame; TF is invalid again
	if _, err := st.ResolveFrame(code.FrameTemporary); err == nil {
		t.Errorf("TF valid after push")
	}
	v, err := st.VariableValue(lfVar("a"))
	if err != nil || v.Int != 1 {
		t.Errorf("expected LF@a = 1, got %v (err %v)", v, err)
	}

	// pop moves it back to TF
	if err := st.PopFrame(); err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	v, err = st.VariableValue(tfVar("a"))
	if err != nil || v.Int != 1 {
		t.Errorf("expected TF@a = 1 after pop, got %v (err %v)", v, err)
	}

	// local stack is empty again
	err = st.PopFrame()
	if kindOf(t, err) != interpreter.ErrNoSuchFrame {
		t.Errorf("pop on empty local stack: expected ErrNoSuchFrame, got %v", err)
	}
}

func TestCreateFrameOverwrites(t *testing.T) {
	st := newState()

	st.CreateFrame()
	if err := st.DeclareVariable(tfVar("old")); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	// recreating is not an error and drops the previous contents
	st.CreateFrame()
	if _, err := st.VariableValue(tfVar("old")); kindOf(t, err) != interpreter.ErrNoSuchVar {
		t.Errorf("expected old variable gone, got %v", err)
	}
}

func TestLabels(t *testing.T) {
	st := newState()

	if err := st.CreateLabel("main", 3); err != nil {
		t.Fatalf("create label failed: %v", err)
	}
	addr, err := st.LabelAddress("main")
	if err != nil || addr != 3 {
		t.Errorf("expected address 3, got %d (err %v)", addr, err)
	}

	// duplicates are rejected, identical address included
	if err := st.CreateLabel("main", 5); kindOf(t, err) != interpreter.ErrSemantic {
		t.Errorf("duplicate label: expected ErrSemantic, got %v", err)
	}
	if err := st.CreateLabel("main", 3); kindOf(t, err) != interpreter.ErrSemantic {
		t.Errorf("duplicate label at same address: expected ErrSemantic, got %v", err)
	}

	if _, err := st.LabelAddress("missing"); kindOf(t, err) != interpreter.ErrSemantic {
		t.Errorf("missing label: expected ErrSemantic, got %v", err)
	}
}

func TestProgramCounter(t *testing.T) {
	st := newState()

	if err := st.SetPC(7); err != nil || st.PC() != 7 {
		t.Errorf("expected pc 7, got %d (err %v)", st.PC(), err)
	}
	if err := st.SetPC(-1); kindOf(t, err) != interpreter.ErrSemantic {
		t.Errorf("negative pc: expected ErrSemantic, got %v", err)
	}
}

func TestStacks(t *testing.T) {
	st := newState()

	_, err := st.PopData()
	if kindOf(t, err) != interpreter.ErrMissingValue {
		t.Errorf("pop empty data stack: expected ErrMissingValue, got %v", err)
	}

	st.PushData(interpreter.NewString("s"))
	v, err := st.PopData()
	if err != nil || v.Str != "s" {
		t.Errorf("expected string@s, got %v (err %v)", v, err)
	}

	_, err = st.PopCall()
	if kindOf(t, err) != interpreter.ErrMissingValue {
		t.Errorf("pop empty call stack: expected ErrMissingValue, got %v", err)
	}

	st.PushCall(4)
	addr, err := st.PopCall()
	if err != nil || addr != 4 {
		t.Errorf("expected return address 4, got %d (err %v)", addr, err)
	}
}

func TestReadLine(t *testing.T) {
	st := interpreter.NewProgram(strings.NewReader("one\r\ntwo\nlast"), &bytes.Buffer{}, &bytes.Buffer{})

	for _, want := range []string{"one", "two", "last"} {
		line, ok := st.ReadLine()
		if !ok || line != want {
			t.Errorf("expected %q, got %q (ok=%v)", want, line, ok)
		}
	}

	if _, ok := st.ReadLine(); ok {
		t.Errorf("expected end of input")
	}
}

func TestDumpState(t *testing.T) {
	st := newState()

	if err := st.DeclareVariable(gfVar("x")); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if err := st.SetVariable(gfVar("x"), interpreter.NewInt(5)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := st.CreateLabel("main", 0); err != nil {
		t.Fatalf("create label failed: %v", err)
	}
	st.PushData(interpreter.NewBool(true))
	st.PushCall(2)

	var buf bytes.Buffer
	st.DumpState(&buf)
	dump := buf.String()

	for _, want := range []string{"Program counter: 0", "main -> 0", "x=int@5", "bool@true", "Call stack"} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q:\n%s", want, dump)
		}
	}
}
