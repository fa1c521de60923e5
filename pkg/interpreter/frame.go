package interpreter

import (
	"fmt"
	"sort"
	"strings"

	"halva/pkg/code"
)

// slot is one frame entry. Declared-but-unset (set == false) is a distinct
// state from not declared at all.
type slot struct {
	val Value
	set bool
}

// Frame is a mutable name → variable mapping. A name may be defined at most
// once per frame.
type Frame struct {
	vars map[string]*slot
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{vars: make(map[string]*slot)}
}

// Define declares name without a value. Redefinition is a semantic error.
func (f *Frame) Define(name string) error {
	if f.Exists(name) {
		return Errorf(ErrSemantic, "variable %s redefined", name)
	}

	f.vars[name] = &slot{}
	return nil
}

// Set stores a value into an already-declared name.
func (f *Frame) Set(name string, v Value) error {
	s, ok := f.vars[name]
	if !ok {
		return Errorf(ErrNoSuchVar, "variable %s does not exist", name)
	}

	s.val = v
	s.set = true
	return nil
}

// Value returns the stored value; the variable must be declared and
// initialized.
func (f *Frame) Value(name string) (Value, error) {
	s, ok := f.vars[name]
	if !ok {
		return Value{}, Errorf(ErrNoSuchVar, "variable %s does not exist", name)
	}
	if !s.set {
		return Value{}, Errorf(ErrMissingValue, "variable %s not initialized", name)
	}

	return s.val, nil
}

// Type returns the stored value's type under the same contract as Value.
func (f *Frame) Type(name string) (code.DataType, error) {
	v, err := f.Value(name)
	if err != nil {
		return "", err
	}

	return v.Type, nil
}

// Initialized reports whether a declared variable holds a value.
func (f *Frame) Initialized(name string) (bool, error) {
	s, ok := f.vars[name]
	if !ok {
		return false, Errorf(ErrNoSuchVar, "variable %s does not exist", name)
	}

	return s.set, nil
}

// Exists reports whether name is declared in this frame.
func (f *Frame) Exists(name string) bool {
	_, ok := f.vars[name]
	return ok
}

// Delete removes name; absent names are a no-op.
func (f *Frame) Delete(name string) {
	delete(f.vars, name)
}

// Clear empties the frame. Used when the temporary frame is (re)created.
func (f *Frame) Clear() {
	f.vars = make(map[string]*slot)
}

// String lists the frame's entries in name order, for state dumps.
func (f *Frame) String() string {
	names := make([]string, 0, len(f.vars))
	for name := range f.vars {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]string, 0, len(names))
	for _, name := range names {
		s := f.vars[name]
		if !s.set {
			entries = append(entries, fmt.Sprintf("%s=<uninitialized>", name))
			continue
		}
		entries = append(entries, fmt.Sprintf("%s=%s", name, s.val))
	}

	return strings.Join(entries, ", ")
}
