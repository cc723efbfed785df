package cfg

import (
	"testing"

	"github.com/asmlab/acfg/asmparser"
	"github.com/asmlab/acfg/inst"
	"github.com/stretchr/testify/assert"
)

func buildProgram(texts map[int64]string) *asmparser.Program {
	p := asmparser.NewProgram()
	for addr, text := range texts {
		p.SetText(addr, text)
	}
	return p
}

func TestBuildExternCall(t *testing.T) {
	program := buildProgram(map[int64]string{
		100: "call ds:CreateFileA",
		105: "retn",
	})

	builder := NewBuilder(inst.NewDecoder())
	graph, err := builder.Build(program)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// The unresolvable callee becomes one synthesized extern block.
	assert.Equal(t, graph.Nodes(), []int64{100, inst.FakeCalleeAddr})
	assert.True(t, graph.HasEdge(100, inst.FakeCalleeAddr))
	assert.True(t, graph.HasEdge(inst.FakeCalleeAddr, 100))

	block, ok := graph.Node(100)
	if !ok {
		t.Fatal("expected block at 100")
	}
	assert.Equal(t, len(block.Insts), 2)
	assert.Equal(t, block.StartAddr, int64(100))
	assert.Equal(t, block.EndAddr, int64(105))
	assert.Equal(t, block.Insts[0].Size, int64(5))
	assert.Equal(t, block.Insts[1].Size, int64(2))
	assert.True(t, block.Insts[0].Call)

	extern, ok := graph.Node(inst.FakeCalleeAddr)
	if !ok {
		t.Fatal("expected extern block")
	}
	assert.Equal(t, len(extern.Insts), 1)
	assert.Equal(t, extern.Insts[0].Mnemonic, "extrn_sym")
	assert.True(t, extern.Insts[0].Start)
	assert.False(t, extern.Insts[0].FallThrough)
}

func TestBuildInvalidBranchTarget(t *testing.T) {
	program := buildProgram(map[int64]string{
		0x401000: "jnz 9999h",
		0x401002: "retn",
	})

	builder := NewBuilder(inst.NewDecoder())
	graph, err := builder.Build(program)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// The absent target is redirected to the invalid sentinel.
	jnz := builder.Index().At(0x401000)
	if assert.NotNil(t, jnz.BranchTo) {
		assert.Equal(t, *jnz.BranchTo, inst.InvalidAddr)
	}

	assert.Equal(t, graph.Nodes(), []int64{0x401000, 0x401002, inst.InvalidAddr})
	assert.True(t, graph.HasEdge(0x401000, inst.InvalidAddr))
	// The conditional jump still falls through into the next block.
	assert.True(t, graph.HasEdge(0x401000, 0x401002))

	invalid, ok := graph.Node(inst.InvalidAddr)
	if !ok {
		t.Fatal("expected invalid block")
	}
	assert.Equal(t, invalid.Insts[0].Mnemonic, "invalid")
}

func TestBuildLocalCall(t *testing.T) {
	program := buildProgram(map[int64]string{
		0x401000: "call sub_401005",
		0x401005: "retn",
	})

	builder := NewBuilder(inst.NewDecoder())
	graph, err := builder.Build(program)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	assert.Equal(t, graph.Nodes(), []int64{0x401000, 0x401005})

	// Fallthrough and branch reach the same target: one edge survives.
	caller, _ := graph.Node(0x401000)
	assert.Equal(t, caller.EdgeList, []int64{0x401005})
	// The callee links back to the call site.
	callee, _ := graph.Node(0x401005)
	assert.Equal(t, callee.EdgeList, []int64{0x401000})
}

func TestBuildUnconditionalJump(t *testing.T) {
	program := buildProgram(map[int64]string{
		0x401000: "jmp loc_401004",
		0x401002: "inc eax",
		0x401004: "retn",
	})

	builder := NewBuilder(inst.NewDecoder())
	graph, err := builder.Build(program)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	assert.Equal(t, graph.Nodes(), []int64{0x401000, 0x401002, 0x401004})

	// The jump reaches its target but never falls through.
	assert.True(t, graph.HasEdge(0x401000, 0x401004))
	assert.False(t, graph.HasEdge(0x401000, 0x401002))
	// The skipped-over instruction still opens a block and falls through.
	assert.True(t, graph.HasEdge(0x401002, 0x401004))
}

func TestBuildSoftwareInterrupt(t *testing.T) {
	program := buildProgram(map[int64]string{
		0x401000: "int 21h",
		0x401002: "retn",
	})

	builder := NewBuilder(inst.NewDecoder())
	graph, err := builder.Build(program)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// The interrupt vector owns the lowest address, so its block opens
	// first and the unmarked program head joins it.
	assert.Equal(t, graph.Nodes(), []int64{0x21})
	irq, _ := graph.Node(0x21)
	assert.Equal(t, len(irq.Insts), 3)
	assert.Equal(t, irq.Insts[0].Mnemonic, "softirq_21")
	assert.Equal(t, irq.EdgeList, []int64{0x21})
}

func TestBuildEmptyProgram(t *testing.T) {
	builder := NewBuilder(inst.NewDecoder())
	graph, err := builder.Build(asmparser.NewProgram())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	assert.Equal(t, graph.Len(), 0)
	assert.Equal(t, graph.EdgeCount(), 0)
	assert.True(t, builder.Index().Empty())
}

func TestBuildSizesFromAddressGaps(t *testing.T) {
	program := buildProgram(map[int64]string{
		0x401000: "push ebp",
		0x401005: "mov ebp, esp",
		0x401008: "retn",
	})

	builder := NewBuilder(inst.NewDecoder())
	if _, err := builder.Build(program); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	index := builder.Index()
	assert.Equal(t, index.At(0x401000).Size, int64(5))
	assert.Equal(t, index.At(0x401005).Size, int64(3))
	// The last instruction keeps the default size.
	assert.Equal(t, index.At(0x401008).Size, int64(2))
	assert.Equal(t, index.Start(), int64(0x401000))
	assert.Equal(t, index.End(), int64(0x401008))
}

func TestBuildDeterministic(t *testing.T) {
	texts := map[int64]string{
		0x401000: "call ds:CreateFileA",
		0x401005: "jnz short loc_401000",
		0x401007: "retn",
	}

	first, err := NewBuilder(inst.NewDecoder()).Build(buildProgram(texts))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := NewBuilder(inst.NewDecoder()).Build(buildProgram(texts))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	assert.Equal(t, first.Nodes(), second.Nodes())
	for _, addr := range first.Nodes() {
		assert.Equal(t, first.Out(addr), second.Out(addr))
		b1, _ := first.Node(addr)
		b2, _ := second.Node(addr)
		assert.Equal(t, len(b1.Insts), len(b2.Insts))
		assert.Equal(t, b1.EdgeList, b2.EdgeList)
	}
}

func TestBlockAtIdempotent(t *testing.T) {
	a := newAssembler()
	first := a.blockAt(0x401000)
	second := a.blockAt(0x401000)
	assert.Same(t, first, second)
	assert.Equal(t, len(a.blocks), 1)
}

func TestBytesFromInsts(t *testing.T) {
	block := &Block{
		Insts: []*inst.Instruction{
			{Bytes: []string{"55", "8B+"}},
			{Bytes: []string{"FF\n"}},
		},
	}
	assert.Equal(t, block.BytesFromInsts(), []string{"55", "8B", "FF"})
}
