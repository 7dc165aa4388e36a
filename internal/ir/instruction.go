package ir

// Register identifies a virtual register. Wide values occupy two
// consecutive registers, addressed by the lower one.
type Register uint32

// ResultRegister is the distinguished register holding the pending result
// of an invoke or filled-new-array until the following move-result.
const ResultRegister Register = ^Register(0)

// Instruction is a single IR instruction. Which fields are meaningful is
// determined by the opcode: payload accessors consult the opcode table, so
// an iget exposes its Field and nothing else.
type Instruction struct {
	Opcode Opcode
	Dest   Register
	Srcs   []Register

	Literal int64
	Str     string
	Type    *TypeRef
	Field   *FieldRef
	Method  *MethodRef
	Data    *OpcodeData

	// Branch targets, resolved to block IDs by the frontend.
	Targets []int
}

// NewInsn builds an instruction with the given opcode and sources.
func NewInsn(op Opcode, srcs ...Register) *Instruction {
	return &Instruction{Opcode: op, Srcs: srcs}
}

// WithDest sets the destination register.
func (i *Instruction) WithDest(r Register) *Instruction {
	i.Dest = r
	return i
}

// WithLiteral sets the literal payload.
func (i *Instruction) WithLiteral(v int64) *Instruction {
	i.Literal = v
	return i
}

// WithType sets the type payload.
func (i *Instruction) WithType(t *TypeRef) *Instruction {
	i.Type = t
	return i
}

// WithField sets the field payload.
func (i *Instruction) WithField(f *FieldRef) *Instruction {
	i.Field = f
	return i
}

// WithMethod sets the method payload.
func (i *Instruction) WithMethod(m *MethodRef) *Instruction {
	i.Method = m
	return i
}

// WithString sets the string payload.
func (i *Instruction) WithString(s string) *Instruction {
	i.Str = s
	return i
}

// WithData sets the opcode-data payload.
func (i *Instruction) WithData(d *OpcodeData) *Instruction {
	i.Data = d
	return i
}

func (i *Instruction) HasDest() bool    { return i.Opcode.HasDest() }
func (i *Instruction) DestIsWide() bool { return i.Opcode.DestIsWide() }
func (i *Instruction) HasLiteral() bool { return i.Opcode.Payload() == PayloadLiteral }
func (i *Instruction) HasString() bool  { return i.Opcode.Payload() == PayloadString }
func (i *Instruction) HasType() bool    { return i.Opcode.Payload() == PayloadType }
func (i *Instruction) HasField() bool   { return i.Opcode.Payload() == PayloadField }
func (i *Instruction) HasMethod() bool  { return i.Opcode.Payload() == PayloadMethod }
func (i *Instruction) HasData() bool    { return i.Opcode.Payload() == PayloadData }

// HasMoveResult reports whether a following move-result captures this
// instruction's result.
func (i *Instruction) HasMoveResult() bool { return i.Opcode.info().moveResult }

// HasMoveResultPseudo reports whether a following move-result-pseudo
// captures this instruction's result.
func (i *Instruction) HasMoveResultPseudo() bool { return i.Opcode.info().moveResultPseudo }

func (i *Instruction) String() string { return printInsn(i) }
