package cfg

import (
	"fmt"

	"github.com/asmlab/acfg/inst"
	"github.com/asmlab/acfg/logging"
)

type resolutionKind int

const (
	resolved resolutionKind = iota
	extern
	softwareInterrupt
	invalid
)

// resolution classifies one control-flow target. addr is the address the
// graph will use for it: the target itself when resolved or extern, the
// interrupt number, or the invalid sentinel.
type resolution struct {
	kind resolutionKind
	addr int64
}

// visitor walks the index in address order and applies the category
// handler of each instruction. Auxiliary instructions synthesized for
// unresolvable targets collect separately and merge in afterwards.
type visitor struct {
	index *Index
	aux   map[int64]*inst.Instruction
	log   *logging.Logger
}

func newVisitor(index *Index, log *logging.Logger) *visitor {
	return &visitor{
		index: index,
		aux:   make(map[int64]*inst.Instruction),
		log:   log,
	}
}

func (v *visitor) visit() {
	for _, addr := range v.index.Addrs() {
		ins := v.index.At(addr)
		switch ins.Category {
		case inst.Calling:
			v.call(ins)
		case inst.ConditionalJump:
			v.branch(ins)
		case inst.UnconditionalJump:
			v.jump(ins)
		case inst.EndOfFlow:
			v.end(ins)
		default:
		}
	}
	v.index.merge(v.aux)
}

// resolve classifies target. callLike decides whether a missing target
// reads as an extern callee or as an invalid branch. The interrupt check
// runs before the index lookup: interrupt numbers name vectors, not
// listing addresses.
func (v *visitor) resolve(target int64, callLike bool) resolution {
	switch {
	case target == inst.FakeCalleeAddr:
		return resolution{kind: extern, addr: inst.FakeCalleeAddr}
	case target >= 0 && target < 256:
		return resolution{kind: softwareInterrupt, addr: target}
	case !v.index.Has(target):
		if callLike {
			return resolution{kind: extern, addr: target}
		}
		return resolution{kind: invalid, addr: inst.InvalidAddr}
	default:
		return resolution{kind: resolved, addr: target}
	}
}

// enter marks the instruction at target as a block entry, synthesizing
// an auxiliary instruction when the target lies outside the program. An
// invalid target also redirects the branching instruction itself.
func (v *visitor) enter(from *inst.Instruction, target int64) {
	res := v.resolve(target, callLike(from))
	switch res.kind {
	case extern:
		v.addAuxiliary(res.addr, "extrn_sym")
	case softwareInterrupt:
		v.addAuxiliary(res.addr, fmt.Sprintf("softirq_%X", res.addr))
	case invalid:
		v.log.Debug("invalid branch target",
			"from", fmt.Sprintf("%x", from.Address), "target", fmt.Sprintf("%x", target))
		v.addAuxiliary(res.addr, "invalid")
		from.SetBranchTo(inst.InvalidAddr)
	case resolved:
		v.index.At(res.addr).Start = true
	}
}

// addAuxiliary inserts an auxiliary instruction at addr if absent.
func (v *visitor) addAuxiliary(addr int64, mnemonic string) {
	if _, ok := v.aux[addr]; ok {
		return
	}
	ins := inst.New(addr, mnemonic)
	ins.Start = true
	ins.FallThrough = false
	v.aux[addr] = ins
}

func callLike(ins *inst.Instruction) bool {
	return ins.Mnemonic == "call" || ins.Mnemonic == "syscall"
}

// call jumps out and, by the coarse return approximation, back.
func (v *visitor) call(ins *inst.Instruction) {
	ins.Call = true
	// The callee address often cannot be resolved (extern symbols).
	target := ins.TargetAddr()
	ins.SetBranchTo(target)
	v.enter(ins, target)
}

// branch either jumps to the target or falls through.
func (v *visitor) branch(ins *inst.Instruction) {
	target := ins.TargetAddr()
	ins.SetBranchTo(target)
	v.enter(ins, target)
	v.enter(ins, ins.Address+ins.Size)
}

// jump transfers unconditionally; the following address can still be a
// block entry through other incoming edges.
func (v *visitor) jump(ins *inst.Instruction) {
	target := ins.TargetAddr()
	ins.FallThrough = false
	ins.SetBranchTo(target)
	v.enter(ins, target)
	v.enter(ins, ins.Address+ins.Size)
}

// end stops the fall through at a flow terminator.
func (v *visitor) end(ins *inst.Instruction) {
	ins.FallThrough = false
	if next := ins.Address + ins.Size; next <= v.index.End() {
		v.enter(ins, next)
	}
}
