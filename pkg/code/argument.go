package code

import (
	"fmt"
	"strconv"
	"strings"
)

type ArgKind string

// Argument kinds as they appear in the program document.
const (
	ArgVariable ArgKind = "var"
	ArgConstant ArgKind = "const"
	ArgLabel    ArgKind = "label"
	ArgType     ArgKind = "type"
)

type DataType string

// HalvaCode data types.
const (
	TypeNil    DataType = "nil"
	TypeInt    DataType = "int"
	TypeBool   DataType = "bool"
	TypeString DataType = "string"
)

type FrameType string

// Variable frames: global, top of the local stack, temporary.
const (
	FrameGlobal    FrameType = "GF"
	FrameLocal     FrameType = "LF"
	FrameTemporary FrameType = "TF"
)

// Argument is one positional instruction operand. Kind selects which of the
// remaining fields are meaningful: a variable has Frame and Name, a constant
// has Type plus one value field, a label has Name, a type literal has Type.
type Argument struct {
	Kind  ArgKind
	Frame FrameType
	Name  string
	Type  DataType
	Int   int64
	Bool  bool
	Str   string
}

// NewVariable parses a frame-qualified variable reference such as "GF@x".
func NewVariable(text string) (Argument, error) {
	at := strings.Index(text, "@")
	if at < 0 {
		return Argument{}, fmt.Errorf("malformed variable %q", text)
	}

	var frame FrameType
	switch strings.ToUpper(text[:at]) {
	case "GF":
		frame = FrameGlobal
	case "LF":
		frame = FrameLocal
	case "TF":
		frame = FrameTemporary
	default:
		return Argument{}, fmt.Errorf("unknown frame in variable %q", text)
	}

	name := text[at+1:]
	if name == "" {
		return Argument{}, fmt.Errorf("empty variable name in %q", text)
	}

	return Argument{Kind: ArgVariable, Frame: frame, Name: name}, nil
}

// NewLabel wraps a jump-target name.
func NewLabel(name string) (Argument, error) {
	if name == "" {
		return Argument{}, fmt.Errorf("empty label name")
	}

	return Argument{Kind: ArgLabel, Name: name}, nil
}

// NewTypeLiteral parses a type-literal operand (the READ type argument).
// Nil is not a valid literal: nothing can be read as nil.
func NewTypeLiteral(text string) (Argument, error) {
	switch DataType(strings.ToLower(text)) {
	case TypeInt, TypeBool, TypeString:
		return Argument{Kind: ArgType, Type: DataType(strings.ToLower(text))}, nil
	}

	return Argument{}, fmt.Errorf("unknown type literal %q", text)
}

// NewConstant decodes a constant of the declared type from its textual form.
func NewConstant(typ DataType, text string) (Argument, error) {
	switch typ {
	case TypeNil:
		if text != "nil" {
			return Argument{}, fmt.Errorf("bad nil constant %q", text)
		}
		return Argument{Kind: ArgConstant, Type: TypeNil}, nil

	case TypeInt:
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return Argument{}, fmt.Errorf("bad int constant %q", text)
		}
		return Argument{Kind: ArgConstant, Type: TypeInt, Int: n}, nil

	case TypeBool:
		switch text {
		case "true":
			return Argument{Kind: ArgConstant, Type: TypeBool, Bool: true}, nil
		case "false":
			return Argument{Kind: ArgConstant, Type: TypeBool, Bool: false}, nil
		}
		return Argument{}, fmt.Errorf("bad bool constant %q", text)

	case TypeString:
		s, err := DecodeEscapes(text)
		if err != nil {
			return Argument{}, err
		}
		return Argument{Kind: ArgConstant, Type: TypeString, Str: s}, nil
	}

	return Argument{}, fmt.Errorf("unknown constant type %q", typ)
}

// DecodeEscapes replaces every \DDD triplet (exactly three decimal digits)
// with the rune of that ordinal. This is the only load-time transformation
// applied to string constants.
func DecodeEscapes(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}

		if i+4 > len(s) {
			return "", fmt.Errorf("truncated escape in string %q", s)
		}

		ord := 0
		for _, c := range []byte(s[i+1 : i+4]) {
			if c < '0' || c > '9' {
				return "", fmt.Errorf("malformed escape %q in string %q", s[i:i+4], s)
			}
			ord = ord*10 + int(c-'0')
		}

		b.WriteRune(rune(ord))
		i += 3
	}

	return b.String(), nil
}

// String renders the argument in source form, for listings and state dumps.
func (a Argument) String() string {
	switch a.Kind {
	case ArgVariable:
		return string(a.Frame) + "@" + a.Name
	case ArgLabel:
		return "label@" + a.Name
	case ArgType:
		return "type@" + string(a.Type)
	case ArgConstant:
		switch a.Type {
		case TypeInt:
			return "int@" + strconv.FormatInt(a.Int, 10)
		case TypeBool:
			return "bool@" + strconv.FormatBool(a.Bool)
		case TypeString:
			return "string@" + a.Str
		default:
			return "nil@nil"
		}
	}

	return "?"
}
