package code

import (
	"fmt"
	"strings"
)

type Opcode string

// The closed HalvaCode instruction set.
const (
	OpMove        Opcode = "MOVE"
	OpCreateFrame Opcode = "CREATEFRAME"
	OpPushFrame   Opcode = "PUSHFRAME"
	OpPopFrame    Opcode = "POPFRAME"
	OpDefVar      Opcode = "DEFVAR"
	OpCall        Opcode = "CALL"
	OpReturn      Opcode = "RETURN"
	OpPushS       Opcode = "PUSHS"
	OpPopS        Opcode = "POPS"
	OpAdd         Opcode = "ADD"
	OpSub         Opcode = "SUB"
	OpMul         Opcode = "MUL"
	OpIDiv        Opcode = "IDIV"
	OpLt          Opcode = "LT"
	OpGt          Opcode = "GT"
	OpEq          Opcode = "EQ"
	OpAnd         Opcode = "AND"
	OpOr          Opcode = "OR"
	OpNot         Opcode = "NOT"
	OpInt2Char    Opcode = "INT2CHAR"
	OpStri2Int    Opcode = "STRI2INT"
	OpRead        Opcode = "READ"
	OpWrite       Opcode = "WRITE"
	OpConcat      Opcode = "CONCAT"
	OpStrLen      Opcode = "STRLEN"
	OpGetChar     Opcode = "GETCHAR"
	OpSetChar     Opcode = "SETCHAR"
	OpType        Opcode = "TYPE"
	OpLabel       Opcode = "LABEL"
	OpJump        Opcode = "JUMP"
	OpJumpIfEq    Opcode = "JUMPIFEQ"
	OpJumpIfNeq   Opcode = "JUMPIFNEQ"
	OpExit        Opcode = "EXIT"
	OpDPrint      Opcode = "DPRINT"
	OpBreak       Opcode = "BREAK"
)

// operand is the kind contract for one operand slot.
type operand int

const (
	operandVar operand = iota // variable reference only
	operandSymb               // symbol: variable or constant
	operandLabel
	operandType
)

// contracts is the static opcode-indexed operand contract table. Arity and
// per-slot kinds are re-checked by the engine for every loaded instruction.
var contracts = map[Opcode][]operand{
	OpMove:        {operandVar, operandSymb},
	OpCreateFrame: {},
	OpPushFrame:   {},
	OpPopFrame:    {},
	OpDefVar:      {operandVar},
	OpCall:        {operandLabel},
	OpReturn:      {},
	OpPushS:       {operandSymb},
	OpPopS:        {operandVar},
	OpAdd:         {operandVar, operandSymb, operandSymb},
	OpSub:         {operandVar, operandSymb, operandSymb},
	OpMul:         {operandVar, operandSymb, operandSymb},
	OpIDiv:        {operandVar, operandSymb, operandSymb},
	OpLt:          {operandVar, operandSymb, operandSymb},
	OpGt:          {operandVar, operandSymb, operandSymb},
	OpEq:          {operandVar, operandSymb, operandSymb},
	OpAnd:         {operandVar, operandSymb, operandSymb},
	OpOr:          {operandVar, operandSymb, operandSymb},
	OpNot:         {operandVar, operandSymb},
	OpInt2Char:    {operandVar, operandSymb},
	OpStri2Int:    {operandVar, operandSymb, operandSymb},
	OpRead:        {operandVar, operandType},
	OpWrite:       {operandSymb},
	OpConcat:      {operandVar, operandSymb, operandSymb},
	OpStrLen:      {operandVar, operandSymb},
	OpGetChar:     {operandVar, operandSymb, operandSymb},
	OpSetChar:     {operandVar, operandSymb, operandSymb},
	OpType:        {operandVar, operandSymb},
	OpLabel:       {operandLabel},
	OpJump:        {operandLabel},
	OpJumpIfEq:    {operandLabel, operandSymb, operandSymb},
	OpJumpIfNeq:   {operandLabel, operandSymb, operandSymb},
	OpExit:        {operandSymb},
	OpDPrint:      {operandSymb},
	OpBreak:       {},
}

// LookupOpcode resolves a mnemonic (case-insensitive) to its opcode.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	op := Opcode(strings.ToUpper(mnemonic))
	_, ok := contracts[op]
	return op, ok
}

// ValidateArgs checks arity and per-slot argument kinds against the contract
// table.
func (op Opcode) ValidateArgs(args []Argument) error {
	contract, ok := contracts[op]
	if !ok {
		return fmt.Errorf("unknown opcode %q", string(op))
	}

	if len(args) != len(contract) {
		return fmt.Errorf("%s expects %d arguments, got %d", op, len(contract), len(args))
	}

	for i, want := range contract {
		got := args[i].Kind
		ok := false
		switch want {
		case operandVar:
			ok = got == ArgVariable
		case operandSymb:
			ok = got == ArgVariable || got == ArgConstant
		case operandLabel:
			ok = got == ArgLabel
		case operandType:
			ok = got == ArgType
		}
		if !ok {
			return fmt.Errorf("%s argument %d: unexpected %s operand", op, i+1, got)
		}
	}

	return nil
}
