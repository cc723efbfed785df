package cfg

import (
	"github.com/asmlab/acfg/asmparser"
	"github.com/asmlab/acfg/inst"
	"github.com/asmlab/acfg/logging"
)

// Builder runs the pipeline from normalized program to block graph:
// decode, control-flow walk, block assembly, graph export.
type Builder struct {
	decoder inst.Decoder
	log     *logging.Logger
	index   *Index
}

// NewBuilder returns a builder decoding instructions with decoder.
func NewBuilder(decoder inst.Decoder) *Builder {
	return &Builder{decoder: decoder, log: logging.New()}
}

// Build constructs the control-flow graph of program. An empty program
// yields an empty graph, not an error.
func (b *Builder) Build(program *asmparser.Program) (*Graph, error) {
	index, err := buildIndex(program, b.decoder, b.log)
	if err != nil {
		return nil, err
	}
	b.index = index

	newVisitor(index, b.log).visit()
	blocks := newAssembler().assemble(index)
	return export(blocks), nil
}

// Index returns the instruction index of the last Build, including the
// auxiliary instructions synthesized during the control-flow walk.
func (b *Builder) Index() *Index {
	return b.index
}
