package acfg

import (
	"github.com/asmlab/acfg/cfg"
	"github.com/asmlab/acfg/profile"
)

// ACFG couples one binary's control-flow graph with its numeric
// representation, the unit the renderers consume. Features and
// Adjacency are nil for an empty graph.
type ACFG struct {
	BinaryID  string
	Graph     *cfg.Graph
	Features  *Matrix
	Adjacency *Sparse
}

// New extracts the attributed control-flow graph of binaryID from its
// block graph.
func New(binaryID string, graph *cfg.Graph, prof *profile.Profile) (*ACFG, error) {
	features, adjacency, err := NewExtractor(prof).Extract(graph)
	if err != nil {
		return nil, err
	}
	return &ACFG{
		BinaryID:  binaryID,
		Graph:     graph,
		Features:  features,
		Adjacency: adjacency,
	}, nil
}
