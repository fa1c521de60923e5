package interpreter

import (
	"strconv"

	"halva/pkg/code"
)

// Value is a runtime value: one of nil, int, bool, or string. There are no
// implicit coercions between variants; opcodes that convert (INT2CHAR,
// STRI2INT) do so explicitly.
type Value struct {
	Type code.DataType
	Int  int64
	Bool bool
	Str  string
}

// NewNil creates the nil value.
func NewNil() Value {
	return Value{Type: code.TypeNil}
}

// NewInt creates an integer value.
func NewInt(n int64) Value {
	return Value{Type: code.TypeInt, Int: n}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Value{Type: code.TypeBool, Bool: b}
}

// NewString creates a string value.
func NewString(s string) Value {
	return Value{Type: code.TypeString, Str: s}
}

// Render produces the WRITE form: bools as true/false, nil as the empty
// string, everything else literally.
func (v Value) Render() string {
	switch v.Type {
	case code.TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case code.TypeBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case code.TypeString:
		return v.Str
	default:
		return ""
	}
}

// String renders the value with its type tag, for state dumps.
func (v Value) String() string {
	if v.Type == code.TypeNil {
		return "nil@nil"
	}

	return string(v.Type) + "@" + v.Render()
}

// equalValues compares two values of identical type (or nil on either side).
// Callers enforce the type contract first.
func equalValues(a, b Value) bool {
	if a.Type == code.TypeNil || b.Type == code.TypeNil {
		return a.Type == b.Type
	}

	switch a.Type {
	case code.TypeInt:
		return a.Int == b.Int
	case code.TypeBool:
		return a.Bool == b.Bool
	case code.TypeString:
		return a.Str == b.Str
	}

	return false
}
