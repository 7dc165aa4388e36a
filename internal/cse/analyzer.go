package cse

import (
	"slices"

	"dexopt/internal/cfg"
	"dexopt/internal/dataflow"
	"dexopt/internal/ir"
)

// Analyzer runs the value-numbering abstract interpretation over a graph
// and keeps the converged per-block entry states. It owns the value table
// for the lifetime of one method's analysis.
type Analyzer struct {
	graph    *cfg.Graph
	resolver ir.FieldResolver
	table    *valueTable
	result   *dataflow.Result[*Env]
}

// NewAnalyzer runs the fixpoint to convergence, starting from the top
// state at the entry block.
func NewAnalyzer(g *cfg.Graph, resolver ir.FieldResolver) *Analyzer {
	a := &Analyzer{graph: g, resolver: resolver, table: newValueTable()}
	a.result = dataflow.Run(g, TopEnv(), BottomEnv, a.AnalyzeInstruction)
	return a
}

// EntryState returns the converged state at the block's entry.
func (a *Analyzer) EntryState(b *cfg.Block) *Env {
	return a.result.EntryState(b)
}

// AnalyzeInstruction is the transfer function. It updates env in place
// with the instruction's effect on registers and definitions, then applies
// the barrier havoc if the instruction induces one.
func (a *Analyzer) AnalyzeInstruction(insn *ir.Instruction, env *Env) {
	if env.IsBottom() {
		return
	}

	setDest := func(dest ir.Register, wide bool, v dataflow.Flat[ValueID]) {
		env.SetRef(dest, v)
		if wide {
			env.SetRef(dest+1, dataflow.Top[ValueID]())
		}
	}

	switch {
	case ir.IsMove(insn.Opcode):
		setDest(insn.Dest, insn.DestIsWide(), env.GetRef(insn.Srcs[0]))

	case ir.IsMoveResult(insn.Opcode):
		d := env.GetRef(ir.ResultRegister)
		if id, ok := d.Get(); ok {
			ibs := id.IsBarrierSensitive()
			if _, have := env.GetDef(ibs, id).Get(); !have {
				env.SetDef(ibs, id, insn)
			}
		}
		setDest(insn.Dest, insn.DestIsWide(), d)

	default:
		switch {
		case insn.HasDest():
			id := a.valueIDOf(insn, env)
			ibs := id.IsBarrierSensitive()
			if _, have := env.GetDef(ibs, id).Get(); !have {
				env.SetDef(ibs, id, insn)
			}
			setDest(insn.Dest, insn.DestIsWide(), dataflow.Value(id))

		case insn.HasMoveResult() || insn.HasMoveResultPseudo():
			id := a.valueIDOf(insn, env)
			env.SetRef(ir.ResultRegister, dataflow.Value(id))
		}
	}

	if a.inducesBarrier(insn) {
		env.MutateDefs(true, func(defs DefEnv) {
			clear(defs)
		})
		env.MutateRefs(func(refs RefEnv) {
			for reg, id := range refs {
				if id.IsBarrierSensitive() {
					delete(refs, reg)
				}
			}
		})
	}
}

// inducesBarrier reports whether the instruction invalidates prior
// heap-derived facts. Monitor operations, heap writes, and all invocations are
// barriers; beyond those, a field-touching instruction is a barrier when
// its field does not resolve or is volatile.
func (a *Analyzer) inducesBarrier(insn *ir.Instruction) bool {
	op := insn.Opcode
	switch {
	case op == ir.OpMonitorEnter, op == ir.OpMonitorExit, op == ir.OpFillArrayData:
		return true
	case ir.IsHeapPut(op), ir.IsInvoke(op):
		return true
	case insn.HasField():
		search := ir.InstanceFieldSearch
		if ir.IsSFieldOp(op) {
			search = ir.StaticFieldSearch
		}
		field := a.resolver.ResolveField(insn.Field, search)
		return field == nil || field.Volatile
	}
	return false
}

// valueIDOf builds the abstract value an instruction computes in the
// current state and interns it. Source registers bound to top get a
// pre-state source synthesized for them, one per register per call; the
// placeholders are committed back into the register environment so later
// instructions observe the same one.
func (a *Analyzer) valueIDOf(insn *ir.Instruction, env *Env) ValueID {
	v := value{opcode: insn.Opcode}
	var fresh map[ir.Register]ValueID
	for _, reg := range insn.Srcs {
		if id, ok := env.GetRef(reg).Get(); ok {
			v.srcs = append(v.srcs, id)
			continue
		}
		id, ok := fresh[reg]
		if !ok {
			id = a.table.intern(&value{
				opcode:     opPreStateSrc,
				srcs:       []ValueID{ValueID(reg)},
				positional: insn,
			})
			if fresh == nil {
				fresh = make(map[ir.Register]ValueID)
			}
			fresh[reg] = id
		}
		v.srcs = append(v.srcs, id)
	}
	if len(fresh) > 0 {
		env.MutateRefs(func(refs RefEnv) {
			for reg, id := range fresh {
				refs[reg] = id
			}
		})
	}
	if ir.IsCommutative(insn.Opcode) {
		slices.Sort(v.srcs)
	}

	positional := false
	switch insn.Opcode {
	case ir.OpLoadParam, ir.OpLoadParamObject, ir.OpLoadParamWide,
		ir.OpMoveException, ir.OpNewArray, ir.OpNewInstance, ir.OpFilledNewArray:
		positional = true
	default:
		positional = a.inducesBarrier(insn)
	}
	if positional {
		v.positional = insn
	} else {
		switch {
		case insn.HasLiteral():
			v.literal = insn.Literal
		case insn.HasType():
			v.typ = insn.Type
		case insn.HasField():
			v.field = insn.Field
		case insn.HasMethod():
			v.method = insn.Method
		case insn.HasString():
			v.str = insn.Str
		case insn.HasData():
			v.data = insn.Data
		}
	}
	return a.table.intern(&v)
}
