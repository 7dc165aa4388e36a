// Package cse implements common subexpression elimination as a global
// value numbering over an abstract interpretation of a method's graph.
// Registers map to abstract values, values map to first-defining
// instructions, and a later instruction computing an already-defined value
// gets its result forwarded from the earlier one through a temp register.
package cse

import (
	"encoding/binary"
	"fmt"

	"dexopt/internal/ir"
)

// ValueID densely numbers interned values. The two low bits carry
// classification; the serial occupies the rest.
type ValueID uint32

const (
	flagPreStateSrc      ValueID = 0x1
	flagBarrierSensitive ValueID = 0x2
	idStride             ValueID = 0x4
)

// IsPreStateSrc reports whether the value is a pre-state placeholder.
func (id ValueID) IsPreStateSrc() bool { return id&flagPreStateSrc != 0 }

// IsBarrierSensitive reports whether the value is derived from the heap
// and must be invalidated by memory barriers.
func (id ValueID) IsBarrierSensitive() bool { return id&flagBarrierSensitive != 0 }

// opPreStateSrc marks values standing for the contents of a source
// register as it was before a given instruction; it recovers tracking
// after merges and havocs.
const opPreStateSrc ir.Opcode = 0xFFFF

// value is an identity-free description of a computation: an opcode,
// value-ID sources, and at most one scalar payload. For a pre-state
// source, srcs holds the register number and positional pins the owning
// instruction.
type value struct {
	opcode ir.Opcode
	srcs   []ValueID

	literal    int64
	str        string
	typ        *ir.TypeRef
	field      *ir.FieldRef
	method     *ir.MethodRef
	data       *ir.OpcodeData
	positional *ir.Instruction
}

// valueKey is the comparable interning key. Ref payloads compare by
// pointer, which is why refs must come from one RefPool.
type valueKey struct {
	opcode     ir.Opcode
	srcs       string
	literal    int64
	str        string
	typ        *ir.TypeRef
	field      *ir.FieldRef
	method     *ir.MethodRef
	data       *ir.OpcodeData
	positional *ir.Instruction
}

func (v *value) key() valueKey {
	var srcs []byte
	if len(v.srcs) > 0 {
		srcs = make([]byte, 4*len(v.srcs))
		for i, s := range v.srcs {
			binary.LittleEndian.PutUint32(srcs[4*i:], uint32(s))
		}
	}
	return valueKey{
		opcode:     v.opcode,
		srcs:       string(srcs),
		literal:    v.literal,
		str:        v.str,
		typ:        v.typ,
		field:      v.field,
		method:     v.method,
		data:       v.data,
		positional: v.positional,
	}
}

// valueTable interns values into dense IDs for the duration of one
// method's analysis.
type valueTable struct {
	ids map[valueKey]ValueID
}

func newValueTable() *valueTable {
	return &valueTable{ids: make(map[valueKey]ValueID)}
}

const maxSerial = 1 << 30

// intern returns the ID for the value, assigning one on first sight. The
// classification bits are decided here, once, and frozen into the ID:
// heap reads are barrier-sensitive, pre-state markers carry their flag,
// and barrier sensitivity propagates from any source.
func (t *valueTable) intern(v *value) ValueID {
	key := v.key()
	if id, ok := t.ids[key]; ok {
		return id
	}
	serial := len(t.ids)
	if serial >= maxSerial {
		panic(fmt.Sprintf("cse: value serial overflow at %d", serial))
	}
	id := ValueID(serial) * idStride
	switch {
	case ir.IsHeapGet(v.opcode):
		id |= flagBarrierSensitive
	case v.opcode == opPreStateSrc:
		id |= flagPreStateSrc
	default:
		for _, src := range v.srcs {
			if src.IsBarrierSensitive() {
				id |= flagBarrierSensitive
				break
			}
		}
	}
	t.ids[key] = id
	return id
}

func (t *valueTable) size() int { return len(t.ids) }
