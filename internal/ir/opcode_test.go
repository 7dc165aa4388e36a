package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeByNameRoundTrip(t *testing.T) {
	for op := Opcode(0); op < numOpcodes; op++ {
		name := opcodeTable[op].name
		if name == "" {
			continue
		}
		got, ok := OpcodeByName(name)
		assert.True(t, ok, "mnemonic %q should resolve", name)
		assert.Equal(t, op, got)
		assert.Equal(t, name, op.String())
	}

	_, ok := OpcodeByName("no-such-op")
	assert.False(t, ok)
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsMove(OpMove))
	assert.True(t, IsMove(OpMoveWide))
	assert.False(t, IsMove(OpMoveResult), "move-result is not a plain move")

	assert.True(t, IsMoveResult(OpMoveResultPseudoObject))
	assert.True(t, IsConst(OpConstString))
	assert.False(t, IsConst(OpMove))
	assert.True(t, IsLoadParam(OpLoadParamWide))
	assert.True(t, IsInvoke(OpInvokeInterface))

	assert.True(t, IsSFieldOp(OpSget))
	assert.True(t, IsSFieldOp(OpSputShort))
	assert.False(t, IsSFieldOp(OpIget))
	assert.True(t, IsIFieldOp(OpIputChar))

	assert.True(t, IsHeapGet(OpIgetObject))
	assert.True(t, IsHeapGet(OpSgetWide))
	assert.True(t, IsHeapGet(OpAgetByte))
	assert.False(t, IsHeapGet(OpIput))
	assert.True(t, IsHeapPut(OpAputObject))
	assert.False(t, IsHeapPut(OpAget))

	assert.True(t, IsCommutative(OpAddInt))
	assert.True(t, IsCommutative(OpXorLong))
	assert.False(t, IsCommutative(OpSubInt))
	assert.False(t, IsCommutative(OpCmpLong), "cmp-long is order sensitive")
	assert.False(t, IsCommutative(OpShlInt))

	assert.True(t, IsBranch(OpIfEqz))
	assert.True(t, IsTerminator(OpGoto))
	assert.True(t, IsTerminator(OpReturnVoid))
	assert.True(t, IsTerminator(OpThrow))
	assert.False(t, IsTerminator(OpMonitorEnter))
}

func TestWideDestinations(t *testing.T) {
	assert.True(t, OpConstWide.DestIsWide())
	assert.True(t, OpAddLong.DestIsWide())
	assert.True(t, OpIgetWide.DestIsWide())
	assert.False(t, OpCmpLong.DestIsWide(), "the comparison result is narrow")
	assert.False(t, OpLongToInt.DestIsWide())
}

func TestSrcIsWide(t *testing.T) {
	assert.True(t, SrcIsWide(OpAddLong, 0))
	assert.True(t, SrcIsWide(OpAddLong, 1))
	assert.True(t, SrcIsWide(OpShlLong, 0))
	assert.False(t, SrcIsWide(OpShlLong, 1), "the shift distance is narrow")
	assert.True(t, SrcIsWide(OpIputWide, 0))
	assert.False(t, SrcIsWide(OpIputWide, 1), "the receiver is a single register")
	assert.False(t, SrcIsWide(OpAddInt, 0))
}

func TestInstructionAccessors(t *testing.T) {
	add := NewInsn(OpAddInt, 0, 1).WithDest(2)
	assert.True(t, add.HasDest())
	assert.False(t, add.HasLiteral())

	c := NewInsn(OpConst).WithDest(0).WithLiteral(7)
	assert.True(t, c.HasLiteral())
	assert.False(t, c.HasField())

	invoke := NewInsn(OpInvokeStatic)
	assert.False(t, invoke.HasDest())
	assert.True(t, invoke.HasMoveResult())
	assert.False(t, invoke.HasMoveResultPseudo())

	cast := NewInsn(OpCheckCast, 0)
	assert.True(t, cast.HasMoveResultPseudo())
	assert.True(t, cast.HasType())
}
