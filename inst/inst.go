// Package inst models decoded instructions and their feature encodings.
package inst

import (
	"math"
	"strings"
)

// Category classifies an instruction's effect on control flow.
type Category int

const (
	Default Category = iota
	Calling
	ConditionalJump
	UnconditionalJump
	EndOfFlow
)

// Sentinel addresses for control-flow targets that do not exist in the
// listing. Both sort after every real listing address, so their
// auxiliary blocks come last in address-ordered walks and cannot
// collide with software interrupt numbers (0..255).
const (
	// FakeCalleeAddr stands for the callee of an extern or indirect call.
	FakeCalleeAddr int64 = math.MaxInt64 - 1
	// InvalidAddr stands for a branch target outside the program.
	InvalidAddr int64 = math.MaxInt64
)

// Feature vocabularies. Order is fixed: feature columns depend on it.
var (
	OperandTypes  = []string{"void", "imm", "reg", "mem", "sym", "str", "mixed"}
	OperatorTypes = []string{"trans", "call", "math", "other"}
	SpecialChars  = []string{"*", "[", "]", "?", "@", "$", "-"}
)

// Instruction is one decoded instruction of the normalized program,
// together with the control-flow state filled in by the visitor.
type Instruction struct {
	Address  int64
	Size     int64
	Mnemonic string
	Operands []string
	Category Category

	// Indexes into OperandTypes and OperatorTypes.
	OperandKind  int
	OperatorKind int

	// Raw material carried along from the listing.
	Bytes    []string
	RawLines []string

	// Control-flow state.
	Start       bool
	FallThrough bool
	BranchTo    *int64
	Call        bool
}

// New returns an instruction at addr with the default size and
// fallthrough behavior.
func New(addr int64, mnemonic string) *Instruction {
	return &Instruction{
		Address:     addr,
		Size:        2,
		Mnemonic:    mnemonic,
		FallThrough: true,
	}
}

// SetBranchTo records the branch target address.
func (i *Instruction) SetBranchTo(addr int64) {
	i.BranchTo = &addr
}

// String returns the instruction in canonical "mnemonic op, op" form.
func (i *Instruction) String() string {
	if len(i.Operands) == 0 {
		return i.Mnemonic
	}
	return i.Mnemonic + " " + strings.Join(i.Operands, ", ")
}

// OperandFeatures returns the one-hot encoding of the operand kind.
func (i *Instruction) OperandFeatures() []float64 {
	features := make([]float64, len(OperandTypes))
	features[i.OperandKind] = 1
	return features
}

// OperatorFeatures returns the one-hot encoding of the operator kind.
func (i *Instruction) OperatorFeatures() []float64 {
	features := make([]float64, len(OperatorTypes))
	features[i.OperatorKind] = 1
	return features
}

// SpecialCharFeatures returns 0/1 indicators for the special characters
// appearing in the operand text.
func (i *Instruction) SpecialCharFeatures() []float64 {
	text := strings.Join(i.Operands, " ")
	features := make([]float64, len(SpecialChars))
	for idx, ch := range SpecialChars {
		if strings.Contains(text, ch) {
			features[idx] = 1
		}
	}
	return features
}
