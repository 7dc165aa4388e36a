// Package copyprop implements block-local copy propagation: source
// operands are rewritten to the oldest register known to hold the same
// value, and moves that become self-assignments are dropped. It is the
// first of the two cleanup passes that collapse the residue left behind
// by CSE forwarding.
package copyprop

import (
	"github.com/tliron/commonlog"

	"dexopt/internal/cfg"
	"dexopt/internal/ir"
)

var log = commonlog.GetLogger("copyprop")

type Pass struct{}

func (Pass) Name() string { return "copy-propagation" }

// Run rewrites each block independently and reports whether anything
// changed.
func (Pass) Run(m *cfg.Method) bool {
	changed := false
	for _, block := range m.Graph.Blocks() {
		if propagateBlock(block) {
			changed = true
		}
	}
	if changed {
		log.Debugf("rewrote copies in %s", m.Name)
	}
	return changed
}

func propagateBlock(b *cfg.Block) bool {
	// copies maps a register to the older register it duplicates. Values
	// in the map are always roots, so lookups never chase chains.
	copies := make(map[ir.Register]ir.Register)
	changed := false
	var kept []*ir.Instruction

	invalidate := func(reg ir.Register) {
		delete(copies, reg)
		for dst, src := range copies {
			if src == reg {
				delete(copies, dst)
			}
		}
	}

	for _, insn := range b.Insns {
		// Only single-register operands are rewritten; pair equality is
		// never established here, so wide sources stay untouched.
		for i, src := range insn.Srcs {
			if ir.SrcIsWide(insn.Opcode, i) {
				continue
			}
			if root, ok := copies[src]; ok {
				insn.Srcs[i] = root
				changed = true
			}
		}

		switch insn.Opcode {
		case ir.OpMove, ir.OpMoveObject:
			src := insn.Srcs[0]
			if src == insn.Dest {
				changed = true
				continue // self-assignment, drop
			}
			invalidate(insn.Dest)
			root := src
			if r, ok := copies[src]; ok {
				root = r
			}
			copies[insn.Dest] = root
		default:
			if insn.HasDest() {
				invalidate(insn.Dest)
				if insn.DestIsWide() {
					invalidate(insn.Dest + 1)
				}
			}
		}
		kept = append(kept, insn)
	}

	b.Insns = kept
	return changed
}
