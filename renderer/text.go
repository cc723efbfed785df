// Package renderer provides a way to render attributed graphs in different formats.
package renderer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/asmlab/acfg/acfg"
	"github.com/asmlab/acfg/profile"
)

// TextRenderer formats the attributed graph in a structured text format.
type TextRenderer struct {
	profile *profile.Profile
}

// NewTextRenderer creates a new instance of TextRenderer.
func NewTextRenderer(profile *profile.Profile) Renderer {
	return &TextRenderer{profile: profile}
}

// Render formats and writes the attributed graph to the command line.
func (r *TextRenderer) Render(a *acfg.ACFG, output io.Writer) error {
	nodes := a.Graph.Nodes()
	if len(nodes) == 0 {
		return nil
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05 UTC")

	totalInsts := 0
	for _, addr := range nodes {
		block, _ := a.Graph.Node(addr)
		totalInsts += len(block.Insts)
	}
	featureDim := 0
	if a.Features != nil {
		featureDim = a.Features.Cols()
	}

	// Build report template
	var report strings.Builder

	// Header Section
	report.WriteString("==============================\n")
	report.WriteString("🔍 Attributed Control Flow Graph\n")
	report.WriteString("==============================\n\n")
	report.WriteString(fmt.Sprintf("📦 Binary: %s\n", a.BinaryID))
	report.WriteString(fmt.Sprintf("⚙️ Profile: %s\n", r.profile.Name))
	report.WriteString(fmt.Sprintf("📅 Timestamp: %s\n\n", timestamp))
	report.WriteString("------------------------------\n")
	report.WriteString("📊 Summary\n")
	report.WriteString("------------------------------\n")
	report.WriteString(fmt.Sprintf("Blocks: %d\n", a.Graph.Len()))
	report.WriteString(fmt.Sprintf("Edges: %d\n", a.Graph.EdgeCount()))
	report.WriteString(fmt.Sprintf("Instructions: %d\n", totalInsts))
	report.WriteString(fmt.Sprintf("Feature dimension: %d\n\n", featureDim))
	report.WriteString("------------------------------\n")
	report.WriteString("📌 Blocks\n")
	report.WriteString("------------------------------\n\n")

	// Blocks Section
	blockCounter := 1
	for _, addr := range nodes {
		block, _ := a.Graph.Node(addr)
		report.WriteString(fmt.Sprintf("%d. block %#x..%#x (%d instructions)\n",
			blockCounter, block.StartAddr, block.EndAddr, len(block.Insts)))
		if len(block.EdgeList) > 0 {
			report.WriteString(fmt.Sprintf("   - Successors: %s\n", formatEdges(block.EdgeList)))
		}
		for _, ins := range block.Insts {
			report.WriteString(fmt.Sprintf("   %#x: %s\n", ins.Address, ins.String()))
		}
		report.WriteString("\n")
		blockCounter++
	}

	report.WriteString("🔚 End of Report\n")

	// Print the complete report at once
	_, err := output.Write([]byte(report.String()))
	return err
}

func formatEdges(edges []int64) string {
	targets := make([]string, 0, len(edges))
	for _, target := range edges {
		targets = append(targets, fmt.Sprintf("%#x", target))
	}
	return strings.Join(targets, ", ")
}

// Format returns the format type.
func (r *TextRenderer) Format() string {
	return "text"
}
