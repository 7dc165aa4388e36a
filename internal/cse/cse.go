package cse

import (
	"fmt"

	"github.com/tliron/commonlog"

	"dexopt/internal/cfg"
	"dexopt/internal/ir"
)

// Metric names reported by the driver. These are public and stable.
const (
	MetricResultsCaptured        = "num_results_captured"
	MetricEliminatedInstructions = "num_eliminated_instructions"
)

var log = commonlog.GetLogger("cse")

// Forward records that earlier's result can replace later's.
type Forward struct {
	Earlier *ir.Instruction
	Later   *ir.Instruction
}

// Stats accumulates across methods; addition is associative, so partial
// stats from parallel workers reduce in any order.
type Stats struct {
	ResultsCaptured        int
	InstructionsEliminated int
}

// Add folds o into s.
func (s *Stats) Add(o Stats) {
	s.ResultsCaptured += o.ResultsCaptured
	s.InstructionsEliminated += o.InstructionsEliminated
}

// RegKindOracle tells the patcher what kind of register an instruction
// defines, after it executes. The second result is false when the oracle
// cannot answer, which the patcher treats as fatal.
type RegKindOracle interface {
	DestKind(insn *ir.Instruction) (ir.RegKind, bool)
}

// CommonSubexpressionElimination plans and applies the forwarding for one
// method. Construction runs the analysis and the planning replay; Patch
// materializes the moves. The planning replay consults instruction handles
// stored in the definition environments, so it happens entirely before any
// graph mutation.
type CommonSubexpressionElimination struct {
	graph   *cfg.Graph
	forward []Forward
	stats   Stats
}

// New runs the analysis to fixpoint, then replays each block once from its
// entry state to collect forwarding pairs.
func New(g *cfg.Graph, resolver ir.FieldResolver) *CommonSubexpressionElimination {
	c := &CommonSubexpressionElimination{graph: g}
	analyzer := NewAnalyzer(g, resolver)

	for _, block := range g.Blocks() {
		env := analyzer.EntryState(block).Clone()
		for _, insn := range block.Insns {
			analyzer.AnalyzeInstruction(insn, env)
			op := insn.Opcode
			if !insn.HasDest() || ir.IsMove(op) || ir.IsConst(op) {
				// Moves and constants are cheaper to leave to copy
				// propagation than to forward through a temp.
				continue
			}
			id, ok := env.GetRef(insn.Dest).Get()
			if !ok {
				continue
			}
			if id.IsPreStateSrc() {
				panic(fmt.Sprintf("cse: pre-state source %#x observed as destination of %s", uint32(id), insn))
			}
			earlier, ok := env.GetDef(id.IsBarrierSensitive(), id).Get()
			if !ok {
				continue
			}
			if earlier == insn || ir.IsLoadParam(earlier.Opcode) {
				continue
			}
			c.forward = append(c.forward, Forward{Earlier: earlier, Later: insn})
		}
	}
	return c
}

// Forwards exposes the planned forwarding records.
func (c *CommonSubexpressionElimination) Forwards() []Forward { return c.forward }

// Stats returns the statistics accumulated by Patch.
func (c *CommonSubexpressionElimination) Stats() Stats { return c.stats }

type tempInfo struct {
	moveOpcode ir.Opcode
	reg        ir.Register
}

// Patch materializes the planned forwardings: one temp per distinct
// earlier instruction, a move into the temp right after it, and a move out
// of the temp right after each later instruction. It reports whether the
// graph changed. The redundant later instructions become dead and are left
// for copy propagation and local DCE to collapse.
func (c *CommonSubexpressionElimination) Patch(oracle RegKindOracle) bool {
	if len(c.forward) == 0 {
		return false
	}

	temps := make(map[*ir.Instruction]tempInfo)
	for _, f := range c.forward {
		if _, ok := temps[f.Earlier]; ok {
			continue
		}
		kind, ok := oracle.DestKind(f.Earlier)
		if !ok {
			panic(fmt.Sprintf("cse: no destination kind for %s", f.Earlier))
		}
		var info tempInfo
		switch {
		case kind == ir.RegReference:
			info = tempInfo{moveOpcode: ir.OpMoveObject, reg: c.graph.AllocTemp()}
		case f.Earlier.DestIsWide():
			info = tempInfo{moveOpcode: ir.OpMoveWide, reg: c.graph.AllocWideTemp()}
		default:
			info = tempInfo{moveOpcode: ir.OpMove, reg: c.graph.AllocTemp()}
		}
		temps[f.Earlier] = info
	}

	for _, f := range c.forward {
		info := temps[f.Earlier]
		move := ir.NewInsn(info.moveOpcode, info.reg).WithDest(f.Later.Dest)
		c.graph.InsertAfter(f.Later, move)
		log.Debugf("forwarding %s to %s via v%d", f.Earlier, f.Later, info.reg)
	}
	for earlier, info := range temps {
		move := ir.NewInsn(info.moveOpcode, earlier.Dest).WithDest(info.reg)
		c.graph.InsertAfter(earlier, move)
	}

	c.stats.InstructionsEliminated += len(c.forward)
	c.stats.ResultsCaptured += len(temps)
	return true
}
