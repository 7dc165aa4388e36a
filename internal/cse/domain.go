package cse

import (
	"dexopt/internal/dataflow"
	"dexopt/internal/ir"
)

// DefEnv maps value IDs to their first-defining instruction. A missing
// binding is top. Instruction handles are weak references into the graph
// and are only dereferenced before patching mutates it.
type DefEnv map[ValueID]*ir.Instruction

// RefEnv maps registers to value IDs. A missing binding is top.
type RefEnv map[ir.Register]ValueID

// Env is the abstract state: a reduced product of the barrier-sensitive
// definition environment, the barrier-insensitive one, and the register
// environment. The reduction is the identity; ordering and join are
// componentwise, with each component joined pointwise over the flat
// lattice (agreeing bindings survive, disagreeing ones go to top).
type Env struct {
	bottom bool
	defBS  DefEnv
	defNBS DefEnv
	refs   RefEnv
}

// TopEnv is the state with no information: every binding is top.
func TopEnv() *Env {
	return &Env{
		defBS:  make(DefEnv),
		defNBS: make(DefEnv),
		refs:   make(RefEnv),
	}
}

// BottomEnv is the unreachable state.
func BottomEnv() *Env {
	return &Env{bottom: true}
}

func (e *Env) IsBottom() bool { return e.bottom }

// IsTop reports whether every component is top.
func (e *Env) IsTop() bool {
	return !e.bottom && len(e.defBS) == 0 && len(e.defNBS) == 0 && len(e.refs) == 0
}

func (e *Env) Clone() *Env {
	if e.bottom {
		return BottomEnv()
	}
	c := &Env{
		defBS:  make(DefEnv, len(e.defBS)),
		defNBS: make(DefEnv, len(e.defNBS)),
		refs:   make(RefEnv, len(e.refs)),
	}
	for k, v := range e.defBS {
		c.defBS[k] = v
	}
	for k, v := range e.defNBS {
		c.defNBS[k] = v
	}
	for k, v := range e.refs {
		c.refs[k] = v
	}
	return c
}

// JoinWith folds o into e pointwise.
func (e *Env) JoinWith(o *Env) {
	if o.bottom {
		return
	}
	if e.bottom {
		*e = *o.Clone()
		return
	}
	joinDefs(e.defBS, o.defBS)
	joinDefs(e.defNBS, o.defNBS)
	for reg, id := range e.refs {
		if other, ok := o.refs[reg]; !ok || other != id {
			delete(e.refs, reg)
		}
	}
}

// WidenWith is JoinWith: the domain is finite, so plain join converges.
func (e *Env) WidenWith(o *Env) { e.JoinWith(o) }

func joinDefs(dst, src DefEnv) {
	for id, insn := range dst {
		if other, ok := src[id]; !ok || other != insn {
			delete(dst, id)
		}
	}
}

func (e *Env) Equal(o *Env) bool {
	if e.bottom || o.bottom {
		return e.bottom == o.bottom
	}
	if len(e.defBS) != len(o.defBS) || len(e.defNBS) != len(o.defNBS) || len(e.refs) != len(o.refs) {
		return false
	}
	for k, v := range e.defBS {
		if o.defBS[k] != v {
			return false
		}
	}
	for k, v := range e.defNBS {
		if o.defNBS[k] != v {
			return false
		}
	}
	for k, v := range e.refs {
		if o.refs[k] != v {
			return false
		}
	}
	return true
}

// Leq reports the componentwise pointwise ordering.
func (e *Env) Leq(o *Env) bool {
	if e.bottom {
		return true
	}
	if o.bottom {
		return false
	}
	return defsLeq(e.defBS, o.defBS) && defsLeq(e.defNBS, o.defNBS) && refsLeq(e.refs, o.refs)
}

func defsLeq(a, b DefEnv) bool {
	for id, insn := range b {
		if mine, ok := a[id]; !ok || mine != insn {
			return false
		}
	}
	return true
}

func refsLeq(a, b RefEnv) bool {
	for reg, id := range b {
		if mine, ok := a[reg]; !ok || mine != id {
			return false
		}
	}
	return true
}

// GetRef looks up the register binding as a flat element.
func (e *Env) GetRef(reg ir.Register) dataflow.Flat[ValueID] {
	if e.bottom {
		return dataflow.Bottom[ValueID]()
	}
	if id, ok := e.refs[reg]; ok {
		return dataflow.Value(id)
	}
	return dataflow.Top[ValueID]()
}

// SetRef writes a flat element into the register environment. Writing
// bottom collapses the whole state.
func (e *Env) SetRef(reg ir.Register, v dataflow.Flat[ValueID]) {
	if e.bottom {
		return
	}
	if v.IsBottom() {
		*e = *BottomEnv()
		return
	}
	if id, ok := v.Get(); ok {
		e.refs[reg] = id
	} else {
		delete(e.refs, reg)
	}
}

// GetDef looks up the defining instruction recorded for a value in the
// selected definition environment.
func (e *Env) GetDef(barrierSensitive bool, id ValueID) dataflow.Flat[*ir.Instruction] {
	if e.bottom {
		return dataflow.Bottom[*ir.Instruction]()
	}
	if insn, ok := e.defEnv(barrierSensitive)[id]; ok {
		return dataflow.Value(insn)
	}
	return dataflow.Top[*ir.Instruction]()
}

// SetDef records the defining instruction for a value.
func (e *Env) SetDef(barrierSensitive bool, id ValueID, insn *ir.Instruction) {
	if e.bottom {
		return
	}
	e.defEnv(barrierSensitive)[id] = insn
}

func (e *Env) defEnv(barrierSensitive bool) DefEnv {
	if barrierSensitive {
		return e.defBS
	}
	return e.defNBS
}

// MutateRefs applies f to the register environment in place.
func (e *Env) MutateRefs(f func(RefEnv)) {
	if e.bottom {
		return
	}
	f(e.refs)
}

// MutateDefs applies f to the selected definition environment in place.
func (e *Env) MutateDefs(barrierSensitive bool, f func(DefEnv)) {
	if e.bottom {
		return
	}
	f(e.defEnv(barrierSensitive))
}
