package renderer

import (
	"fmt"
	"io"

	"github.com/awalterschulze/gographviz"

	"github.com/asmlab/acfg/acfg"
	"github.com/asmlab/acfg/cfg"
)

const dotGraphName = "acfg"

// DOTRenderer renders the block graph in Graphviz DOT format. Nodes are
// emitted in ascending address order so the output is deterministic.
type DOTRenderer struct{}

// NewDOTRenderer creates a new instance of DOTRenderer.
func NewDOTRenderer() Renderer {
	return &DOTRenderer{}
}

// Render writes the DOT graph to the provided writer.
func (r *DOTRenderer) Render(a *acfg.ACFG, output io.Writer) error {
	graph := gographviz.NewGraph()
	if err := graph.SetName(dotGraphName); err != nil {
		return fmt.Errorf("error naming graph: %w", err)
	}
	if err := graph.SetDir(true); err != nil {
		return fmt.Errorf("error marking graph directed: %w", err)
	}
	if err := graph.SetStrict(true); err != nil {
		return fmt.Errorf("error marking graph strict: %w", err)
	}

	nodes := a.Graph.Nodes()
	for _, addr := range nodes {
		block, _ := a.Graph.Node(addr)
		if err := graph.AddNode(dotGraphName, nodeName(addr), nodeAttributes(block)); err != nil {
			return fmt.Errorf("error adding node %#x: %w", addr, err)
		}
	}
	for _, addr := range nodes {
		block, _ := a.Graph.Node(addr)
		for _, target := range block.EdgeList {
			if err := graph.AddEdge(nodeName(addr), nodeName(target), true, nil); err != nil {
				return fmt.Errorf("error adding edge %#x -> %#x: %w", addr, target, err)
			}
		}
	}

	_, err := io.WriteString(output, graph.String())
	return err
}

func nodeName(addr int64) string {
	return fmt.Sprintf("\"%#x\"", addr)
}

func nodeAttributes(block *cfg.Block) map[string]string {
	m := make(map[string]string)
	m["label"] = fmt.Sprintf("\"%#x..%#x\\l%d insts\\l\"", block.StartAddr, block.EndAddr, len(block.Insts))
	m["shape"] = "box"
	m["fontname"] = "Monospace"
	m["fontsize"] = "10"
	return m
}

// Format returns the format type.
func (r *DOTRenderer) Format() string {
	return "dot"
}
