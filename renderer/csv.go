package renderer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/asmlab/acfg/acfg"
)

// CSVRenderer renders attributed graphs as two CSV sections: one block
// record per feature row, then one record per adjacency edge.
type CSVRenderer struct{}

// NewCSVRenderer creates a new instance of CSVRenderer.
func NewCSVRenderer() Renderer {
	return &CSVRenderer{}
}

// Render writes the block and edge records to the provided writer.
func (r *CSVRenderer) Render(a *acfg.ACFG, output io.Writer) error {
	featureDim := 0
	if a.Features != nil {
		featureDim = a.Features.Cols()
	}

	header := []string{"index", "start", "end", "insts", "degree"}
	for i := 0; i < featureDim; i++ {
		header = append(header, fmt.Sprintf("f%d", i))
	}
	records := [][]string{header}

	for i, addr := range a.Graph.Nodes() {
		block, _ := a.Graph.Node(addr)
		record := []string{
			strconv.Itoa(i),
			strconv.FormatInt(block.StartAddr, 16),
			strconv.FormatInt(block.EndAddr, 16),
			strconv.Itoa(len(block.Insts)),
			strconv.Itoa(len(block.EdgeList)),
		}
		for j := 0; j < featureDim; j++ {
			record = append(record, strconv.FormatFloat(a.Features.At(i, j), 'g', -1, 64))
		}
		records = append(records, record)
	}

	records = append(records, []string{"srcindex", "dstindex"})
	if a.Adjacency != nil {
		for i := 0; i < a.Adjacency.N(); i++ {
			for _, j := range a.Adjacency.Row(i) {
				records = append(records, []string{strconv.Itoa(i), strconv.Itoa(j)})
			}
		}
	}

	writer := csv.NewWriter(output)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("error writing csv records: %w", err)
	}
	return nil
}

// Format returns the format type.
func (r *CSVRenderer) Format() string {
	return "csv"
}
