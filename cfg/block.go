package cfg

import (
	"slices"
	"strings"

	"github.com/asmlab/acfg/common/digraph"
	"github.com/asmlab/acfg/inst"
)

// Block is a maximal run of instructions between two entry points.
// EndAddr is the highest instruction address in the block, not
// StartAddr plus the block's byte size.
type Block struct {
	StartAddr int64
	EndAddr   int64
	Insts     []*inst.Instruction
	EdgeList  []int64
}

// addEdge appends a successor block address unless already present.
func (b *Block) addEdge(target int64) {
	if slices.Contains(b.EdgeList, target) {
		return
	}
	b.EdgeList = append(b.EdgeList, target)
}

// BytesFromInsts returns the byte tokens of all instructions in order,
// with trailing continuation markers stripped.
func (b *Block) BytesFromInsts() []string {
	var tokens []string
	for _, ins := range b.Insts {
		for _, tok := range ins.Bytes {
			tokens = append(tokens, strings.TrimRight(tok, "\n+"))
		}
	}
	return tokens
}

// Graph is the control-flow graph keyed by block start address.
type Graph = digraph.Graph[int64, *Block]

// assembler groups instructions into blocks and connects them through
// fallthrough, branch and call-return edges.
type assembler struct {
	blocks map[int64]*Block
}

func newAssembler() *assembler {
	return &assembler{blocks: make(map[int64]*Block)}
}

// blockAt returns the block starting at addr, creating it on first use.
func (a *assembler) blockAt(addr int64) *Block {
	if b, ok := a.blocks[addr]; ok {
		return b
	}
	b := &Block{StartAddr: addr, EndAddr: addr}
	a.blocks[addr] = b
	return b
}

// assemble runs a single pass over the index in ascending address order.
// A new block opens at every Start instruction; a fallthrough edge is
// added when the current instruction falls into the entry of the next
// one, which then becomes the current block.
func (a *assembler) assemble(index *Index) map[int64]*Block {
	var current *Block
	for _, addr := range index.Addrs() {
		ins := index.At(addr)
		if current == nil || ins.Start {
			current = a.blockAt(addr)
		}

		next := current
		if nextIns := index.At(ins.Address + ins.Size); nextIns != nil {
			if ins.FallThrough && nextIns.Start {
				next = a.blockAt(nextIns.Address)
				current.addEdge(next.StartAddr)
			}
		}

		if ins.BranchTo != nil {
			target := a.blockAt(*ins.BranchTo)
			current.addEdge(target.StartAddr)
			if ins.Call {
				// Coarse return path: the callee links back to
				// every call site.
				target.addEdge(current.StartAddr)
			}
		}

		current.Insts = append(current.Insts, ins)
		if ins.Address > current.EndAddr {
			current.EndAddr = ins.Address
		}
		current = next
	}
	return a.blocks
}

// export transcribes the blocks into a directed graph. Nodes are added
// in ascending address order so the graph iterates deterministically.
func export(blocks map[int64]*Block) *Graph {
	addrs := make([]int64, 0, len(blocks))
	for addr := range blocks {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)

	g := digraph.New[int64, *Block]()
	for _, addr := range addrs {
		g.AddNode(addr, blocks[addr])
	}
	for _, addr := range addrs {
		for _, succ := range blocks[addr].EdgeList {
			g.AddEdge(addr, succ)
		}
	}
	return g
}
