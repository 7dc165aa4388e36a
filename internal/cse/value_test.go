package cse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dexopt/internal/ir"
)

func TestInternIsDeterministic(t *testing.T) {
	table := newValueTable()
	a := table.intern(&value{opcode: ir.OpAddInt, srcs: []ValueID{4, 8}})
	b := table.intern(&value{opcode: ir.OpAddInt, srcs: []ValueID{4, 8}})
	assert.Equal(t, a, b)
	assert.Equal(t, 1, table.size())

	c := table.intern(&value{opcode: ir.OpAddInt, srcs: []ValueID{8, 4}})
	assert.NotEqual(t, a, c, "source order is part of the identity")
}

func TestSerialStride(t *testing.T) {
	table := newValueTable()
	a := table.intern(&value{opcode: ir.OpAddInt})
	b := table.intern(&value{opcode: ir.OpSubInt})
	assert.Equal(t, ValueID(0), a&^3)
	assert.Equal(t, idStride, b&^3, "serials advance in steps of four")
}

func TestHeapGetIsBarrierSensitive(t *testing.T) {
	table := newValueTable()
	pool := ir.NewRefPool()
	field := pool.Field("Lcom/A;", "f", "I")

	get := table.intern(&value{opcode: ir.OpIget, srcs: []ValueID{0}, field: field})
	assert.True(t, get.IsBarrierSensitive())
	assert.False(t, get.IsPreStateSrc())

	// Sensitivity propagates through anything computed from the read.
	derived := table.intern(&value{opcode: ir.OpAddInt, srcs: []ValueID{get, get}})
	assert.True(t, derived.IsBarrierSensitive())

	pure := table.intern(&value{opcode: ir.OpAddInt, srcs: []ValueID{0, 4}})
	assert.False(t, pure.IsBarrierSensitive())
}

func TestPreStateSourceFlag(t *testing.T) {
	table := newValueTable()
	insn := ir.NewInsn(ir.OpAddInt, 0, 1).WithDest(2)
	id := table.intern(&value{opcode: opPreStateSrc, srcs: []ValueID{ValueID(1)}, positional: insn})
	assert.True(t, id.IsPreStateSrc())
	assert.False(t, id.IsBarrierSensitive())
}

func TestPreStateUniquenessPerRegisterAndInstruction(t *testing.T) {
	table := newValueTable()
	insn := ir.NewInsn(ir.OpAddInt, 0, 0).WithDest(2)
	other := ir.NewInsn(ir.OpAddInt, 0, 0).WithDest(3)

	a := table.intern(&value{opcode: opPreStateSrc, srcs: []ValueID{0}, positional: insn})
	b := table.intern(&value{opcode: opPreStateSrc, srcs: []ValueID{0}, positional: insn})
	require.Equal(t, a, b, "one pre-state value per register and instruction")
	assert.Equal(t, 1, table.size())

	c := table.intern(&value{opcode: opPreStateSrc, srcs: []ValueID{0}, positional: other})
	assert.NotEqual(t, a, c, "a different instruction pins a different value")
}

func TestPayloadDistinguishesValues(t *testing.T) {
	table := newValueTable()
	pool := ir.NewRefPool()

	seven := table.intern(&value{opcode: ir.OpConst, literal: 7})
	eight := table.intern(&value{opcode: ir.OpConst, literal: 8})
	assert.NotEqual(t, seven, eight)

	fa := table.intern(&value{opcode: ir.OpSget, field: pool.Field("Lcom/A;", "f", "I")})
	fb := table.intern(&value{opcode: ir.OpSget, field: pool.Field("Lcom/A;", "g", "I")})
	assert.NotEqual(t, fa, fb)

	again := table.intern(&value{opcode: ir.OpSget, field: pool.Field("Lcom/A;", "f", "I")})
	assert.Equal(t, fa, again, "pooled refs give stable identities")
}
