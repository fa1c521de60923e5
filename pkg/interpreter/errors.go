package interpreter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every fatal condition the interpreter can report.
// Each kind maps to one fixed process exit code.
type ErrorKind int

const (
	ErrUsage        ErrorKind = iota // bad invocation
	ErrInputOpen                     // cannot open a requested source
	ErrOutputOpen                    // cannot open a requested sink
	ErrFormat                        // malformed program document
	ErrStructure                     // bad document structure, unknown opcode, bad ordinals
	ErrSemantic                      // label/redefinition/program-counter violations
	ErrOperandType                   // wrong value type for an opcode
	ErrNoSuchVar                     // variable not declared
	ErrNoSuchFrame                   // frame does not currently exist
	ErrMissingValue                  // declared-but-unset variable, empty data or call stack
	ErrOperandValue                  // value outside the accepted domain
	ErrString                        // bad string index or empty source string
	ErrInternal                      // invariant violation
)

var exitCodes = map[ErrorKind]int{
	ErrUsage:        10,
	ErrInputOpen:    11,
	ErrOutputOpen:   12,
	ErrFormat:       31,
	ErrStructure:    32,
	ErrSemantic:     52,
	ErrOperandType:  53,
	ErrNoSuchVar:    54,
	ErrNoSuchFrame:  55,
	ErrMissingValue: 56,
	ErrOperandValue: 57,
	ErrString:       58,
	ErrInternal:     99,
}

// Code returns the fixed process exit code for the kind.
func (k ErrorKind) Code() int {
	if c, ok := exitCodes[k]; ok {
		return c
	}

	return exitCodes[ErrInternal]
}

// Error is a fatal interpreter error carrying its kind.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds a kinded error.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// CodeOf maps any error to its process exit code. Nil maps to 0; errors
// without a kind map to the internal code.
func CodeOf(err error) int {
	if err == nil {
		return 0
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind.Code()
	}

	return exitCodes[ErrInternal]
}
