package renderer

import (
	"encoding/json"
	"io"

	"github.com/asmlab/acfg/acfg"
)

// JSONRenderer renders attributed graphs in JSON format.
type JSONRenderer struct{}

func NewJSONRenderer() Renderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Render(a *acfg.ACFG, output io.Writer) error {
	return json.NewEncoder(output).Encode(NewReport(a))
}

func (r *JSONRenderer) Format() string {
	return "json"
}
