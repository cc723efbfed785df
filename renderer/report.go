package renderer

import (
	"github.com/asmlab/acfg/acfg"
)

// Report is the serializable form of an attributed graph. Blocks are
// ordered by ascending start address and feature rows align with that
// order, so index i refers to the same block everywhere.
type Report struct {
	BinaryID   string        `json:"binary_id"`
	BlockCount int           `json:"block_count"`
	EdgeCount  int           `json:"edge_count"`
	Blocks     []BlockReport `json:"blocks"`
	Features   [][]float64   `json:"features,omitempty"`
	Adjacency  []EdgeReport  `json:"adjacency,omitempty"`
}

// BlockReport describes one basic block of the graph.
type BlockReport struct {
	Index        int      `json:"index"`
	StartAddr    int64    `json:"start_addr"`
	EndAddr      int64    `json:"end_addr"`
	Instructions []string `json:"instructions"`
	Edges        []int64  `json:"edges,omitempty"`
}

// EdgeReport is one directed edge between block indices.
type EdgeReport struct {
	SrcIndex int `json:"src_index"`
	DstIndex int `json:"dst_index"`
}

// NewReport flattens an attributed graph into its serializable form.
func NewReport(a *acfg.ACFG) *Report {
	nodes := a.Graph.Nodes()
	report := &Report{
		BinaryID:   a.BinaryID,
		BlockCount: a.Graph.Len(),
		EdgeCount:  a.Graph.EdgeCount(),
		Blocks:     make([]BlockReport, 0, len(nodes)),
	}

	for i, addr := range nodes {
		block, _ := a.Graph.Node(addr)
		instructions := make([]string, 0, len(block.Insts))
		for _, ins := range block.Insts {
			instructions = append(instructions, ins.String())
		}
		report.Blocks = append(report.Blocks, BlockReport{
			Index:        i,
			StartAddr:    block.StartAddr,
			EndAddr:      block.EndAddr,
			Instructions: instructions,
			Edges:        block.EdgeList,
		})
	}

	if a.Features != nil {
		report.Features = make([][]float64, 0, a.Features.Rows())
		for i := 0; i < a.Features.Rows(); i++ {
			report.Features = append(report.Features, a.Features.Row(i))
		}
	}
	if a.Adjacency != nil {
		for i := 0; i < a.Adjacency.N(); i++ {
			for _, j := range a.Adjacency.Row(i) {
				report.Adjacency = append(report.Adjacency, EdgeReport{SrcIndex: i, DstIndex: j})
			}
		}
	}
	return report
}
