// Package typeinf answers what kind of register an instruction defines.
// The opcode space here is fully typed, so the destination kind follows
// from the opcode alone; the package still sits behind the patcher's
// oracle interface so a flow-based inference could replace it.
package typeinf

import "dexopt/internal/ir"

// Oracle classifies instruction destinations.
type Oracle struct{}

func NewOracle() *Oracle { return &Oracle{} }

// DestKind returns the kind of insn's destination register after insn
// executes. The second result is false for instructions with no
// destination.
func (o *Oracle) DestKind(insn *ir.Instruction) (ir.RegKind, bool) {
	if !insn.HasDest() {
		return ir.RegPrimitive, false
	}
	switch insn.Opcode {
	case ir.OpMoveObject, ir.OpMoveResultObject, ir.OpMoveResultPseudoObject,
		ir.OpMoveException, ir.OpLoadParamObject,
		ir.OpConstString, ir.OpConstClass,
		ir.OpNewInstance, ir.OpNewArray,
		ir.OpIgetObject, ir.OpSgetObject, ir.OpAgetObject:
		return ir.RegReference, true
	}
	if insn.DestIsWide() {
		return ir.RegWide, true
	}
	return ir.RegPrimitive, true
}
