// Package loader decodes the on-disk XML program representation into the
// in-memory instruction sequence consumed by the interpreter.
package loader

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"halva/pkg/code"
	"halva/pkg/interpreter"
)

type xmlProgram struct {
	XMLName      xml.Name         `xml:"program"`
	Instructions []xmlInstruction `xml:",any"`
}

type xmlInstruction struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Args    []xmlArg   `xml:",any"`
}

type xmlArg struct {
	XMLName xml.Name
	Type    string `xml:"type,attr"`
	Value   string `xml:",chardata"`
}

// Load decodes a program document. Malformed XML is a format error; a
// recognized document with wrong structure (bad root, unknown opcode, bad
// attributes, gaps in argument numbering, undecodable constants) is a
// structural error.
func Load(r io.Reader) ([]code.Instruction, error) {
	var doc xmlProgram
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		var syn *xml.SyntaxError
		if errors.As(err, &syn) {
			return nil, interpreter.Errorf(interpreter.ErrFormat, "malformed XML: %v", err)
		}
		return nil, interpreter.Errorf(interpreter.ErrStructure, "bad program document: %v", err)
	}

	instrs := make([]code.Instruction, 0, len(doc.Instructions))
	for _, el := range doc.Instructions {
		if el.XMLName.Local != "instruction" {
			return nil, interpreter.Errorf(interpreter.ErrStructure,
				"unexpected element <%s> in program", el.XMLName.Local)
		}
		in, err := decodeInstruction(el)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, in)
	}

	return instrs, nil
}

// decodeInstruction validates the element's attribute set and argument
// numbering and builds one instruction.
func decodeInstruction(el xmlInstruction) (code.Instruction, error) {
	var opcodeText, orderText string
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "opcode":
			opcodeText = attr.Value
		case "order":
			orderText = attr.Value
		default:
			return code.Instruction{}, interpreter.Errorf(interpreter.ErrStructure,
				"unexpected instruction attribute %q", attr.Name.Local)
		}
	}
	if opcodeText == "" || orderText == "" {
		return code.Instruction{}, interpreter.Errorf(interpreter.ErrStructure,
			"instruction is missing the opcode or order attribute")
	}

	order, err := strconv.Atoi(strings.TrimSpace(orderText))
	if err != nil || order < 1 {
		return code.Instruction{}, interpreter.Errorf(interpreter.ErrStructure,
			"bad instruction order %q", orderText)
	}

	opcode, ok := code.LookupOpcode(opcodeText)
	if !ok {
		return code.Instruction{}, interpreter.Errorf(interpreter.ErrStructure,
			"unknown opcode %q", opcodeText)
	}

	args, err := decodeArgs(opcode, order, el.Args)
	if err != nil {
		return code.Instruction{}, err
	}

	in := code.Instruction{Opcode: opcode, Order: order, Args: args}
	if err := opcode.ValidateArgs(args); err != nil {
		return code.Instruction{}, interpreter.Errorf(interpreter.ErrStructure,
			"instruction %d: %v", order, err)
	}

	return in, nil
}

// decodeArgs collects arg1..argN in positional order, rejecting gaps,
// duplicates, and unknown child elements.
func decodeArgs(opcode code.Opcode, order int, elems []xmlArg) ([]code.Argument, error) {
	byPos := make(map[int]xmlArg, len(elems))
	for _, el := range elems {
		pos, ok := argPosition(el.XMLName.Local)
		if !ok {
			return nil, interpreter.Errorf(interpreter.ErrStructure,
				"instruction %d: unexpected element <%s>", order, el.XMLName.Local)
		}
		if _, dup := byPos[pos]; dup {
			return nil, interpreter.Errorf(interpreter.ErrStructure,
				"instruction %d: duplicate argument arg%d", order, pos)
		}
		byPos[pos] = el
	}

	args := make([]code.Argument, 0, len(byPos))
	for pos := 1; pos <= len(byPos); pos++ {
		el, ok := byPos[pos]
		if !ok {
			return nil, interpreter.Errorf(interpreter.ErrStructure,
				"instruction %d: argument numbering has a gap at arg%d", order, pos)
		}

		arg, err := decodeArg(el)
		if err != nil {
			return nil, interpreter.Errorf(interpreter.ErrStructure,
				"instruction %d %s: %v", order, opcode, err)
		}
		args = append(args, arg)
	}

	return args, nil
}

func argPosition(tag string) (int, bool) {
	if !strings.HasPrefix(tag, "arg") {
		return 0, false
	}

	pos, err := strconv.Atoi(tag[len("arg"):])
	if err != nil || pos < 1 {
		return 0, false
	}

	return pos, true
}

// decodeArg builds one typed argument from an argN element.
func decodeArg(el xmlArg) (code.Argument, error) {
	value := el.Value
	switch el.Type {
	case string(code.ArgVariable):
		return code.NewVariable(strings.TrimSpace(value))
	case string(code.ArgLabel):
		return code.NewLabel(strings.TrimSpace(value))
	case string(code.ArgType):
		return code.NewTypeLiteral(strings.TrimSpace(value))
	case string(code.TypeNil), string(code.TypeInt), string(code.TypeBool):
		return code.NewConstant(code.DataType(el.Type), strings.TrimSpace(value))
	case string(code.TypeString):
		// string constants keep their text verbatim; escapes decode inside
		return code.NewConstant(code.TypeString, value)
	}

	return code.Argument{}, fmt.Errorf("unknown argument type %q", el.Type)
}
