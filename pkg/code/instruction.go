package code

import (
	"fmt"
	"sort"
	"strings"
)

// Instruction is one decoded program step: an opcode, its source-assigned
// ordinal, and the positional arguments fixed by the opcode's contract.
type Instruction struct {
	Opcode Opcode
	Order  int
	Args   []Argument
}

// String renders the instruction roughly in source form.
func (in Instruction) String() string {
	parts := make([]string, 0, len(in.Args)+1)
	parts = append(parts, string(in.Opcode))
	for _, a := range in.Args {
		parts = append(parts, a.String())
	}

	return fmt.Sprintf("%d: %s", in.Order, strings.Join(parts, " "))
}

// SortProgram orders instructions by ordinal and verifies that the ordinals
// are unique and contiguous starting at 1. The returned slice is the final
// executable sequence; instruction addresses are indices into it.
func SortProgram(instrs []Instruction) ([]Instruction, error) {
	sorted := append([]Instruction(nil), instrs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	for i, in := range sorted {
		switch {
		case in.Order == i+1:
			// contiguous
		case i > 0 && in.Order == sorted[i-1].Order:
			return nil, fmt.Errorf("duplicate instruction order %d", in.Order)
		default:
			return nil, fmt.Errorf("instruction orders not contiguous: expected %d, got %d", i+1, in.Order)
		}
	}

	return sorted, nil
}
