package dataflow

import (
	"dexopt/internal/cfg"
	"dexopt/internal/ir"
)

// State is the abstract-state contract the fixpoint iterator needs. Join
// and transfer must be monotone; the state space must be finite, which
// makes plain join a sufficient widening.
type State[S any] interface {
	Clone() S
	JoinWith(S)
	Equal(S) bool
	IsBottom() bool
}

// Result holds the per-block entry states of a converged analysis.
type Result[S State[S]] struct {
	entry  map[*cfg.Block]S
	bottom func() S
}

// EntryState returns the state at the block's entry. Blocks never reached
// from the entry stay at bottom.
func (r *Result[S]) EntryState(b *cfg.Block) S {
	if s, ok := r.entry[b]; ok {
		return s
	}
	return r.bottom()
}

// Run iterates transfer over the graph to a fixpoint. Blocks are visited
// in reverse postorder, sweeping until no exit state changes; a block's
// entry state is the join of its predecessors' exits, with unvisited
// predecessors contributing bottom. The initial state applies at the
// graph entry.
func Run[S State[S]](g *cfg.Graph, initial S, bottom func() S, transfer func(*ir.Instruction, S)) *Result[S] {
	res := &Result[S]{entry: make(map[*cfg.Block]S), bottom: bottom}
	rpo := g.ReversePostorder()
	if len(rpo) == 0 {
		return res
	}
	exits := make(map[*cfg.Block]S, len(rpo))

	for changed := true; changed; {
		changed = false
		for _, b := range rpo {
			in, haveIn := res.entry[b]
			var acc S
			have := false
			if b == rpo[0] {
				acc = initial.Clone()
				have = true
			}
			for _, p := range b.Preds {
				pe, ok := exits[p]
				if !ok {
					continue
				}
				if !have {
					acc = pe.Clone()
					have = true
				} else {
					acc.JoinWith(pe)
				}
			}
			if !have {
				continue
			}
			if !haveIn || !acc.Equal(in) {
				res.entry[b] = acc
				in = acc
			}
			out := in.Clone()
			for _, insn := range b.Insns {
				transfer(insn, out)
			}
			if prev, ok := exits[b]; !ok || !prev.Equal(out) {
				exits[b] = out
				changed = true
			}
		}
	}
	return res
}
