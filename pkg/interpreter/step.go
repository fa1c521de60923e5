package interpreter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"halva/pkg/code"
)

// execute dispatches one instruction against the program state. Every
// non-control-flow opcode (and LABEL) advances the program counter by
// exactly one; the jump family, CALL, and RETURN set it explicitly; EXIT
// halts with the program-supplied code.
func (i *Interpreter) execute(in code.Instruction) (bool, error) {
	st := i.state
	pc := st.PC()

	switch in.Opcode {
	case code.OpMove:
		v, err := i.resolve(in.Args[1])
		if err != nil {
			return false, err
		}
		if err := st.SetVariable(in.Args[0], v); err != nil {
			return false, err
		}

	case code.OpCreateFrame:
		st.CreateFrame()

	case code.OpPushFrame:
		if err := st.PushFrame(); err != nil {
			return false, err
		}

	case code.OpPopFrame:
		if err := st.PopFrame(); err != nil {
			return false, err
		}

	case code.OpDefVar:
		if err := st.DeclareVariable(in.Args[0]); err != nil {
			return false, err
		}

	case code.OpInt2Char:
		n, err := i.resolveInt(in.Args[1])
		if err != nil {
			return false, err
		}
		if n < 0 || n > utf8.MaxRune || !utf8.ValidRune(rune(n)) {
			return false, Errorf(ErrString, "invalid character ordinal %d", n)
		}
		if err := st.SetVariable(in.Args[0], NewString(string(rune(n)))); err != nil {
			return false, err
		}

	case code.OpStri2Int:
		s, err := i.resolveString(in.Args[1])
		if err != nil {
			return false, err
		}
		idx, err := i.resolveInt(in.Args[2])
		if err != nil {
			return false, err
		}
		runes := []rune(s)
		if idx < 0 || idx >= int64(len(runes)) {
			return false, Errorf(ErrString, "string index %d out of range", idx)
		}
		if err := st.SetVariable(in.Args[0], NewInt(int64(runes[idx]))); err != nil {
			return false, err
		}

	case code.OpType:
		name, err := i.typeName(in.Args[1])
		if err != nil {
			return false, err
		}
		if err := st.SetVariable(in.Args[0], NewString(name)); err != nil {
			return false, err
		}

	case code.OpCall:
		addr, err := st.LabelAddress(in.Args[0].Name)
		if err != nil {
			return false, err
		}
		st.PushCall(pc + 1)
		return false, st.SetPC(addr)

	case code.OpReturn:
		addr, err := st.PopCall()
		if err != nil {
			return false, err
		}
		return false, st.SetPC(addr)

	case code.OpLabel:
		// registered during the label pass; at run time it only advances

	case code.OpJump:
		addr, err := st.LabelAddress(in.Args[0].Name)
		if err != nil {
			return false, err
		}
		return false, st.SetPC(addr)

	case code.OpJumpIfEq, code.OpJumpIfNeq:
		addr, err := st.LabelAddress(in.Args[0].Name)
		if err != nil {
			return false, err
		}
		a, err := i.resolve(in.Args[1])
		if err != nil {
			return false, err
		}
		b, err := i.resolve(in.Args[2])
		if err != nil {
			return false, err
		}
		if a.Type != b.Type && a.Type != code.TypeNil && b.Type != code.TypeNil {
			return false, Errorf(ErrOperandType, "%s: cannot compare %s and %s", in.Opcode, a.Type, b.Type)
		}
		eq := equalValues(a, b)
		if eq == (in.Opcode == code.OpJumpIfEq) {
			return false, st.SetPC(addr)
		}

	case code.OpExit:
		v, err := i.resolve(in.Args[0])
		if err != nil {
			return false, err
		}
		if v.Type != code.TypeInt {
			return false, Errorf(ErrOperandType, "EXIT expects an int, got %s", v.Type)
		}
		if v.Int < 0 || v.Int > 49 {
			return false, Errorf(ErrOperandValue, "EXIT code %d out of range [0,49]", v.Int)
		}
		i.exitCode = int(v.Int)
		return true, nil

	case code.OpConcat:
		a, err := i.resolveString(in.Args[1])
		if err != nil {
			return false, err
		}
		b, err := i.resolveString(in.Args[2])
		if err != nil {
			return false, err
		}
		if err := st.SetVariable(in.Args[0], NewString(a+b)); err != nil {
			return false, err
		}

	case code.OpStrLen:
		s, err := i.resolveString(in.Args[1])
		if err != nil {
			return false, err
		}
		if err := st.SetVariable(in.Args[0], NewInt(int64(utf8.RuneCountInString(s)))); err != nil {
			return false, err
		}

	case code.OpGetChar:
		s, err := i.resolveString(in.Args[1])
		if err != nil {
			return false, err
		}
		idx, err := i.resolveInt(in.Args[2])
		if err != nil {
			return false, err
		}
		runes := []rune(s)
		if idx < 0 || idx >= int64(len(runes)) {
			return false, Errorf(ErrString, "string index %d out of range", idx)
		}
		if err := st.SetVariable(in.Args[0], NewString(string(runes[idx]))); err != nil {
			return false, err
		}

	case code.OpSetChar:
		dst, err := st.VariableValue(in.Args[0])
		if err != nil {
			return false, err
		}
		if dst.Type != code.TypeString {
			return false, Errorf(ErrOperandType, "SETCHAR destination must be a string, got %s", dst.Type)
		}
		idx, err := i.resolveInt(in.Args[1])
		if err != nil {
			return false, err
		}
		src, err := i.resolveString(in.Args[2])
		if err != nil {
			return false, err
		}
		if src == "" {
			return false, Errorf(ErrString, "SETCHAR replacement string is empty")
		}
		runes := []rune(dst.Str)
		if idx < 0 || idx >= int64(len(runes)) {
			return false, Errorf(ErrString, "string index %d out of range", idx)
		}
		runes[idx] = []rune(src)[0]
		if err := st.SetVariable(in.Args[0], NewString(string(runes))); err != nil {
			return false, err
		}

	case code.OpAdd, code.OpSub, code.OpMul, code.OpIDiv:
		a, err := i.resolveInt(in.Args[1])
		if err != nil {
			return false, err
		}
		b, err := i.resolveInt(in.Args[2])
		if err != nil {
			return false, err
		}
		var res int64
		switch in.Opcode {
		case code.OpAdd:
			res = a + b
		case code.OpSub:
			res = a - b
		case code.OpMul:
			res = a * b
		case code.OpIDiv:
			if b == 0 {
				return false, Errorf(ErrOperandValue, "division by zero")
			}
			res = a / b
		}
		if err := st.SetVariable(in.Args[0], NewInt(res)); err != nil {
			return false, err
		}

	case code.OpLt, code.OpGt:
		a, err := i.resolve(in.Args[1])
		if err != nil {
			return false, err
		}
		b, err := i.resolve(in.Args[2])
		if err != nil {
			return false, err
		}
		if in.Opcode == code.OpGt {
			a, b = b, a
		}
		less, err := lessThan(in.Opcode, a, b)
		if err != nil {
			return false, err
		}
		if err := st.SetVariable(in.Args[0], NewBool(less)); err != nil {
			return false, err
		}

	case code.OpEq:
		a, err := i.resolve(in.Args[1])
		if err != nil {
			return false, err
		}
		b, err := i.resolve(in.Args[2])
		if err != nil {
			return false, err
		}
		if a.Type != b.Type && a.Type != code.TypeNil && b.Type != code.TypeNil {
			return false, Errorf(ErrOperandType, "EQ: cannot compare %s and %s", a.Type, b.Type)
		}
		if err := st.SetVariable(in.Args[0], NewBool(equalValues(a, b))); err != nil {
			return false, err
		}

	case code.OpAnd, code.OpOr:
		a, err := i.resolveBool(in.Args[1])
		if err != nil {
			return false, err
		}
		b, err := i.resolveBool(in.Args[2])
		if err != nil {
			return false, err
		}
		res := a && b
		if in.Opcode == code.OpOr {
			res = a || b
		}
		if err := st.SetVariable(in.Args[0], NewBool(res)); err != nil {
			return false, err
		}

	case code.OpNot:
		a, err := i.resolveBool(in.Args[1])
		if err != nil {
			return false, err
		}
		if err := st.SetVariable(in.Args[0], NewBool(!a)); err != nil {
			return false, err
		}

	case code.OpPushS:
		v, err := i.resolve(in.Args[0])
		if err != nil {
			return false, err
		}
		st.PushData(v)

	case code.OpPopS:
		v, err := st.PopData()
		if err != nil {
			return false, err
		}
		if err := st.SetVariable(in.Args[0], v); err != nil {
			return false, err
		}

	case code.OpRead:
		v := readValue(st, in.Args[1].Type)
		if err := st.SetVariable(in.Args[0], v); err != nil {
			return false, err
		}

	case code.OpWrite:
		v, err := i.resolve(in.Args[0])
		if err != nil {
			return false, err
		}
		fmt.Fprint(st.Output(), v.Render())

	case code.OpDPrint:
		v, err := i.resolve(in.Args[0])
		if err != nil {
			return false, err
		}
		fmt.Fprint(st.Diag(), v.Render())

	case code.OpBreak:
		st.DumpState(st.Diag())

	default:
		return false, Errorf(ErrInternal, "unhandled opcode %s at %d", in.Opcode, pc)
	}

	return false, st.SetPC(pc + 1)
}

// resolve turns a symbol operand (constant or variable reference) into its
// current value.
func (i *Interpreter) resolve(a code.Argument) (Value, error) {
	switch a.Kind {
	case code.ArgConstant:
		return constValue(a), nil
	case code.ArgVariable:
		return i.state.VariableValue(a)
	}

	return Value{}, Errorf(ErrInternal, "operand %s is not a symbol", a.Kind)
}

func (i *Interpreter) resolveInt(a code.Argument) (int64, error) {
	v, err := i.resolve(a)
	if err != nil {
		return 0, err
	}
	if v.Type != code.TypeInt {
		return 0, Errorf(ErrOperandType, "expected int operand, got %s", v.Type)
	}

	return v.Int, nil
}

func (i *Interpreter) resolveBool(a code.Argument) (bool, error) {
	v, err := i.resolve(a)
	if err != nil {
		return false, err
	}
	if v.Type != code.TypeBool {
		return false, Errorf(ErrOperandType, "expected bool operand, got %s", v.Type)
	}

	return v.Bool, nil
}

func (i *Interpreter) resolveString(a code.Argument) (string, error) {
	v, err := i.resolve(a)
	if err != nil {
		return "", err
	}
	if v.Type != code.TypeString {
		return "", Errorf(ErrOperandType, "expected string operand, got %s", v.Type)
	}

	return v.Str, nil
}

// constValue converts a constant argument into its runtime value.
func constValue(a code.Argument) Value {
	switch a.Type {
	case code.TypeInt:
		return NewInt(a.Int)
	case code.TypeBool:
		return NewBool(a.Bool)
	case code.TypeString:
		return NewString(a.Str)
	default:
		return NewNil()
	}
}

// typeName implements TYPE: the symbol's type name, or the empty string for
// a declared-but-uninitialized variable. Only the uninitialized case is
// swallowed; missing variables and frames still abort.
func (i *Interpreter) typeName(a code.Argument) (string, error) {
	if a.Kind == code.ArgConstant {
		return string(a.Type), nil
	}

	init, err := i.state.VariableInitialized(a)
	if err != nil {
		return "", err
	}
	if !init {
		return "", nil
	}

	v, err := i.state.VariableValue(a)
	if err != nil {
		return "", err
	}

	return string(v.Type), nil
}

// lessThan implements the LT ordering: identical non-nil types only; false
// sorts before true.
func lessThan(op code.Opcode, a, b Value) (bool, error) {
	if a.Type != b.Type || a.Type == code.TypeNil {
		return false, Errorf(ErrOperandType, "%s: cannot order %s and %s", op, a.Type, b.Type)
	}

	switch a.Type {
	case code.TypeInt:
		return a.Int < b.Int, nil
	case code.TypeBool:
		return !a.Bool && b.Bool, nil
	case code.TypeString:
		return a.Str < b.Str, nil
	}

	return false, Errorf(ErrInternal, "unordered type %s", a.Type)
}

// readValue implements READ: parse one input line as the requested type.
// Parse failures and end of input yield nil, never an error.
func readValue(st *Program, typ code.DataType) Value {
	line, ok := st.ReadLine()
	if !ok {
		return NewNil()
	}

	switch typ {
	case code.TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(line), 0, 64)
		if err != nil {
			return NewNil()
		}
		return NewInt(n)

	case code.TypeBool:
		return NewBool(strings.EqualFold(strings.TrimSpace(line), "true"))

	case code.TypeString:
		return NewString(line)
	}

	return NewNil()
}
