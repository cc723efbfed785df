package renderer

import (
	"io"

	"github.com/asmlab/acfg/acfg"
)

// Renderer defines the interface for rendering attributed graphs in different formats.
type Renderer interface {
	// Render takes an attributed graph and outputs it in the desired format to the provided writer.
	Render(a *acfg.ACFG, output io.Writer) error

	// Format returns the name of the output format (e.g., "json", "text", "csv").
	Format() string
}
