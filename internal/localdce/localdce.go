// Package localdce removes side-effect-free instructions whose results
// are never observed. Liveness is computed per method with a backwards
// fixpoint over the blocks; removal itself is a single backwards sweep per
// block. Anything that can throw or touch the heap is kept.
package localdce

import (
	"github.com/tliron/commonlog"

	"dexopt/internal/cfg"
	"dexopt/internal/ir"
)

var log = commonlog.GetLogger("localdce")

type Pass struct{}

func (Pass) Name() string { return "local-dce" }

// Run deletes dead instructions and reports whether anything changed.
func (Pass) Run(m *cfg.Method) bool {
	g := m.Graph
	liveOut := liveness(g)

	removed := 0
	for _, b := range g.Blocks() {
		live := copySet(liveOut[b])
		var keptRev []*ir.Instruction
		for i := len(b.Insns) - 1; i >= 0; i-- {
			insn := b.Insns[i]
			if removable(insn.Opcode) && !anyLive(live, destRegs(insn)) {
				removed++
				continue
			}
			for _, r := range destRegs(insn) {
				delete(live, r)
			}
			for _, r := range useRegs(insn) {
				live[r] = struct{}{}
			}
			keptRev = append(keptRev, insn)
		}
		if removed > 0 {
			insns := make([]*ir.Instruction, 0, len(keptRev))
			for i := len(keptRev) - 1; i >= 0; i-- {
				insns = append(insns, keptRev[i])
			}
			b.Insns = insns
		}
	}
	if removed > 0 {
		log.Debugf("removed %d dead instructions in %s", removed, m.Name)
	}
	return removed > 0
}

type regSet map[ir.Register]struct{}

func copySet(s regSet) regSet {
	c := make(regSet, len(s))
	for r := range s {
		c[r] = struct{}{}
	}
	return c
}

func anyLive(live regSet, regs []ir.Register) bool {
	for _, r := range regs {
		if _, ok := live[r]; ok {
			return true
		}
	}
	return false
}

// destRegs returns the registers an instruction writes, pairs expanded.
// Instructions whose result goes through the result register count as
// writing it.
func destRegs(insn *ir.Instruction) []ir.Register {
	if insn.HasDest() {
		if insn.DestIsWide() {
			return []ir.Register{insn.Dest, insn.Dest + 1}
		}
		return []ir.Register{insn.Dest}
	}
	if insn.HasMoveResult() || insn.HasMoveResultPseudo() {
		return []ir.Register{ir.ResultRegister}
	}
	return nil
}

// useRegs returns the registers an instruction reads, pairs expanded.
func useRegs(insn *ir.Instruction) []ir.Register {
	var uses []ir.Register
	for i, src := range insn.Srcs {
		uses = append(uses, src)
		if ir.SrcIsWide(insn.Opcode, i) {
			uses = append(uses, src+1)
		}
	}
	if ir.IsMoveResult(insn.Opcode) {
		uses = append(uses, ir.ResultRegister)
	}
	return uses
}

// removable lists the opcodes safe to delete when their result is dead:
// no heap access, no exceptions, no synchronization. Division and
// remainder stay because of the zero-divisor throw.
func removable(op ir.Opcode) bool {
	switch {
	case ir.IsMove(op), ir.IsMoveResult(op), ir.IsConst(op):
		return true
	}
	switch op {
	case ir.OpAddInt, ir.OpSubInt, ir.OpMulInt, ir.OpAndInt, ir.OpOrInt, ir.OpXorInt,
		ir.OpShlInt, ir.OpShrInt, ir.OpUshrInt,
		ir.OpAddLong, ir.OpSubLong, ir.OpMulLong, ir.OpAndLong, ir.OpOrLong, ir.OpXorLong,
		ir.OpShlLong, ir.OpShrLong, ir.OpUshrLong,
		ir.OpNegInt, ir.OpNotInt, ir.OpNegLong, ir.OpNotLong,
		ir.OpIntToLong, ir.OpLongToInt, ir.OpCmpLong, ir.OpInstanceOf,
		ir.OpAddIntLit, ir.OpMulIntLit, ir.OpAndIntLit, ir.OpOrIntLit, ir.OpXorIntLit:
		return true
	}
	return false
}

// liveness computes per-block live-out sets with a round-robin backwards
// fixpoint.
func liveness(g *cfg.Graph) map[*cfg.Block]regSet {
	blocks := g.Blocks()
	use := make(map[*cfg.Block]regSet, len(blocks))
	def := make(map[*cfg.Block]regSet, len(blocks))
	for _, b := range blocks {
		u, d := regSet{}, regSet{}
		for _, insn := range b.Insns {
			for _, r := range useRegs(insn) {
				if _, defined := d[r]; !defined {
					u[r] = struct{}{}
				}
			}
			for _, r := range destRegs(insn) {
				d[r] = struct{}{}
			}
		}
		use[b], def[b] = u, d
	}

	liveIn := make(map[*cfg.Block]regSet, len(blocks))
	liveOut := make(map[*cfg.Block]regSet, len(blocks))
	for _, b := range blocks {
		liveIn[b], liveOut[b] = regSet{}, regSet{}
	}
	for changed := true; changed; {
		changed = false
		for i := len(blocks) - 1; i >= 0; i-- {
			b := blocks[i]
			out := regSet{}
			for _, s := range b.Succs {
				for r := range liveIn[s] {
					out[r] = struct{}{}
				}
			}
			in := copySet(use[b])
			for r := range out {
				if _, defined := def[b][r]; !defined {
					in[r] = struct{}{}
				}
			}
			if len(out) != len(liveOut[b]) || len(in) != len(liveIn[b]) {
				changed = true
			}
			liveOut[b], liveIn[b] = out, in
		}
	}
	return liveOut
}
