package acfg

import (
	"slices"
	"strings"

	"github.com/asmlab/acfg/cfg"
	"github.com/asmlab/acfg/inst"
	"github.com/asmlab/acfg/profile"
)

// Extractor derives per-block feature vectors and the adjacency matrix
// of a control-flow graph. Rows follow the graph's ascending block
// address order.
type Extractor struct {
	profile *profile.Profile
	oneIdx  map[string]int
	fourIdx map[string]int
}

// NewExtractor returns an extractor using the profile's gram
// vocabularies.
func NewExtractor(prof *profile.Profile) *Extractor {
	e := &Extractor{
		profile: prof,
		oneIdx:  make(map[string]int, len(prof.OneGram)),
		fourIdx: make(map[string]int, len(prof.FourGram)),
	}
	for i, g := range prof.OneGram {
		e.oneIdx[g] = i
	}
	for i, g := range prof.FourGram {
		e.fourIdx[g] = i
	}
	return e
}

// Dim returns the feature-vector width: one column per operand type,
// operator type, gram vocabulary entry and special character, plus the
// two structural columns (out-degree, instruction count).
func (e *Extractor) Dim() int {
	return len(inst.OperandTypes) + len(inst.OperatorTypes) +
		len(e.profile.OneGram) + len(e.profile.FourGram) +
		len(inst.SpecialChars) + 2
}

// Extract computes the dense feature matrix and sparse adjacency matrix
// of g. A zero-node graph yields nil matrices, not an error.
func (e *Extractor) Extract(g *cfg.Graph) (*Matrix, *Sparse, error) {
	addrs := g.Nodes()
	if len(addrs) == 0 {
		return nil, nil, nil
	}

	features := NewMatrix(len(addrs), e.Dim())
	for i, addr := range addrs {
		block, _ := g.Node(addr)
		copy(features.Row(i), e.blockFeatures(block))
	}

	rowIndex := make(map[int64]int, len(addrs))
	for i, addr := range addrs {
		rowIndex[addr] = i
	}
	rows := make([][]int, len(addrs))
	for i, addr := range addrs {
		succs := g.Out(addr)
		cols := make([]int, 0, len(succs))
		for _, succ := range succs {
			cols = append(cols, rowIndex[succ])
		}
		slices.Sort(cols)
		rows[i] = cols
	}
	adjacency, err := NewSparse(rows)
	if err != nil {
		return nil, nil, err
	}
	return features, adjacency, nil
}

// blockFeatures sums the per-instruction encodings and folds in the
// gram histograms, which are counted once per block over the
// concatenated byte tokens.
func (e *Extractor) blockFeatures(block *cfg.Block) []float64 {
	operandBase := 0
	operatorBase := operandBase + len(inst.OperandTypes)
	oneBase := operatorBase + len(inst.OperatorTypes)
	fourBase := oneBase + len(e.profile.OneGram)
	charBase := fourBase + len(e.profile.FourGram)

	row := make([]float64, e.Dim())
	for _, ins := range block.Insts {
		for idx, v := range ins.OperandFeatures() {
			row[operandBase+idx] += v
		}
		for idx, v := range ins.OperatorFeatures() {
			row[operatorBase+idx] += v
		}
		for idx, v := range ins.SpecialCharFeatures() {
			row[charBase+idx] += v
		}
	}

	tokens := block.BytesFromInsts()
	for _, tok := range tokens {
		if idx, ok := e.oneIdx[tok]; ok {
			row[oneBase+idx]++
		}
	}
	for i := 0; i+4 <= len(tokens); i++ {
		window := strings.Join(tokens[i:i+4], "")
		if idx, ok := e.fourIdx[window]; ok {
			row[fourBase+idx]++
		}
	}

	row[e.Dim()-2] = float64(len(block.EdgeList))
	row[e.Dim()-1] = float64(len(block.Insts))
	return row
}
