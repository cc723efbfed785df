// Package cfg builds the control-flow graph of a normalized program:
// instructions are decoded into an address-ordered index, a visitor
// marks block entries and branch targets per category, and an assembler
// folds the instruction stream into connected basic blocks.
package cfg

import (
	"fmt"
	"slices"

	"github.com/asmlab/acfg/asmparser"
	"github.com/asmlab/acfg/inst"
	"github.com/asmlab/acfg/logging"
)

// Index holds the decoded instructions of one program keyed by address.
// After the control-flow walk it also carries the synthesized auxiliary
// instructions: interrupt vectors at their low numbers, extern and
// invalid targets at sentinel keys above every listing address.
type Index struct {
	insts map[int64]*inst.Instruction
	start int64
	end   int64
	empty bool
}

// buildIndex decodes the program in ascending address order. The size of
// each instruction is the gap to its accepted successor; the last one
// keeps the default size. Rejected texts are skipped.
func buildIndex(program *asmparser.Program, decoder inst.Decoder, log *logging.Logger) (*Index, error) {
	idx := &Index{insts: make(map[int64]*inst.Instruction), empty: true}

	var prev *inst.Instruction
	for _, addr := range program.Addrs() {
		ins, err := decoder.Decode(addr, program.Text(addr))
		if err != nil {
			return nil, fmt.Errorf("error decoding instruction at %x: %w", addr, err)
		}
		if ins == nil {
			log.Debug("skipping non-instruction text", "address", fmt.Sprintf("%x", addr))
			continue
		}

		ins.Bytes = program.Bytes(addr)
		ins.RawLines = program.RawLines(addr)
		if len(ins.Bytes) == 0 {
			log.Warn("instruction without bytes", "address", fmt.Sprintf("%x", addr))
		}

		if prev != nil {
			prev.Size = addr - prev.Address
		} else {
			idx.start = addr
		}
		idx.insts[addr] = ins
		idx.end = addr
		idx.empty = false
		prev = ins
	}

	if prev != nil {
		prev.Size = 2
	} else {
		log.Warn("no code found in program", "entries", program.Len())
	}
	return idx, nil
}

// At returns the instruction at addr, or nil.
func (x *Index) At(addr int64) *inst.Instruction {
	return x.insts[addr]
}

// Has reports whether addr carries an instruction.
func (x *Index) Has(addr int64) bool {
	_, ok := x.insts[addr]
	return ok
}

// Len returns the number of instructions, auxiliary ones included.
func (x *Index) Len() int {
	return len(x.insts)
}

// Addrs returns every instruction address in ascending order.
func (x *Index) Addrs() []int64 {
	addrs := make([]int64, 0, len(x.insts))
	for addr := range x.insts {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	return addrs
}

// Start returns the lowest decoded address.
func (x *Index) Start() int64 {
	return x.start
}

// End returns the highest decoded address. Auxiliary instructions do not
// move it.
func (x *Index) End() int64 {
	return x.end
}

// Empty reports whether no instruction was decoded.
func (x *Index) Empty() bool {
	return x.empty
}

// merge inserts auxiliary instructions, never replacing a decoded one.
func (x *Index) merge(aux map[int64]*inst.Instruction) {
	for addr, ins := range aux {
		if _, ok := x.insts[addr]; !ok {
			x.insts[addr] = ins
		}
	}
}
