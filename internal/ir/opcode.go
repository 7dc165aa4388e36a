package ir

// Opcode identifies a Dalvik-style instruction kind. The set covers what the
// optimizer and its frontend need; it is not the full dex opcode space.
type Opcode uint16

const (
	OpNop Opcode = iota

	// Register moves.
	OpMove
	OpMoveObject
	OpMoveWide

	// Capture of the pending invoke / filled-new-array result.
	OpMoveResult
	OpMoveResultObject
	OpMoveResultWide

	// Pseudo result capture, paired with instructions like check-cast that
	// logically define a register but carry no destination of their own.
	OpMoveResultPseudo
	OpMoveResultPseudoObject
	OpMoveResultPseudoWide

	OpMoveException

	// Parameter loads, emitted at the head of the entry block.
	OpLoadParam
	OpLoadParamObject
	OpLoadParamWide

	// Constants.
	OpConst
	OpConstWide
	OpConstString
	OpConstClass

	// Returns and throw.
	OpReturnVoid
	OpReturn
	OpReturnObject
	OpReturnWide
	OpThrow

	// Synchronization.
	OpMonitorEnter
	OpMonitorExit

	OpCheckCast
	OpInstanceOf
	OpArrayLength

	// Allocation.
	OpNewInstance
	OpNewArray
	OpFilledNewArray
	OpFillArrayData

	// Control flow.
	OpGoto
	OpIfEq
	OpIfNe
	OpIfLt
	OpIfGe
	OpIfGt
	OpIfLe
	OpIfEqz
	OpIfNez

	// Instance field access.
	OpIget
	OpIgetWide
	OpIgetObject
	OpIgetBoolean
	OpIgetByte
	OpIgetChar
	OpIgetShort
	OpIput
	OpIputWide
	OpIputObject
	OpIputBoolean
	OpIputByte
	OpIputChar
	OpIputShort

	// Static field access.
	OpSget
	OpSgetWide
	OpSgetObject
	OpSgetBoolean
	OpSgetByte
	OpSgetChar
	OpSgetShort
	OpSput
	OpSputWide
	OpSputObject
	OpSputBoolean
	OpSputByte
	OpSputChar
	OpSputShort

	// Array element access.
	OpAget
	OpAgetWide
	OpAgetObject
	OpAgetBoolean
	OpAgetByte
	OpAgetChar
	OpAgetShort
	OpAput
	OpAputWide
	OpAputObject
	OpAputBoolean
	OpAputByte
	OpAputChar
	OpAputShort

	// Invocations.
	OpInvokeVirtual
	OpInvokeSuper
	OpInvokeDirect
	OpInvokeStatic
	OpInvokeInterface

	// Unary ALU.
	OpNegInt
	OpNotInt
	OpNegLong
	OpNotLong
	OpIntToLong
	OpLongToInt

	OpCmpLong

	// Binary ALU, int.
	OpAddInt
	OpSubInt
	OpMulInt
	OpDivInt
	OpRemInt
	OpAndInt
	OpOrInt
	OpXorInt
	OpShlInt
	OpShrInt
	OpUshrInt

	// Binary ALU, long.
	OpAddLong
	OpSubLong
	OpMulLong
	OpDivLong
	OpRemLong
	OpAndLong
	OpOrLong
	OpXorLong
	OpShlLong
	OpShrLong
	OpUshrLong

	// Literal forms.
	OpAddIntLit
	OpMulIntLit
	OpAndIntLit
	OpOrIntLit
	OpXorIntLit

	numOpcodes
)

// PayloadKind says which single scalar attribute an opcode carries.
type PayloadKind uint8

const (
	PayloadNone PayloadKind = iota
	PayloadLiteral
	PayloadString
	PayloadType
	PayloadField
	PayloadMethod
	PayloadData
)

type opcodeInfo struct {
	name    string
	hasDest bool
	wide    bool // destination occupies a register pair
	srcs    int  // fixed source count, or variadicSrcs
	payload PayloadKind
	labels  int // branch target count

	moveResult       bool // result is captured by a following move-result
	moveResultPseudo bool
	commutative      bool
	branch           bool
	terminator       bool // ends a block unconditionally
}

const variadicSrcs = -1

var opcodeTable = [numOpcodes]opcodeInfo{
	OpNop: {name: "nop"},

	OpMove:       {name: "move", hasDest: true, srcs: 1},
	OpMoveObject: {name: "move-object", hasDest: true, srcs: 1},
	OpMoveWide:   {name: "move-wide", hasDest: true, wide: true, srcs: 1},

	OpMoveResult:       {name: "move-result", hasDest: true},
	OpMoveResultObject: {name: "move-result-object", hasDest: true},
	OpMoveResultWide:   {name: "move-result-wide", hasDest: true, wide: true},

	OpMoveResultPseudo:       {name: "move-result-pseudo", hasDest: true},
	OpMoveResultPseudoObject: {name: "move-result-pseudo-object", hasDest: true},
	OpMoveResultPseudoWide:   {name: "move-result-pseudo-wide", hasDest: true, wide: true},

	OpMoveException: {name: "move-exception", hasDest: true},

	OpLoadParam:       {name: "load-param", hasDest: true},
	OpLoadParamObject: {name: "load-param-object", hasDest: true},
	OpLoadParamWide:   {name: "load-param-wide", hasDest: true, wide: true},

	OpConst:       {name: "const", hasDest: true, payload: PayloadLiteral},
	OpConstWide:   {name: "const-wide", hasDest: true, wide: true, payload: PayloadLiteral},
	OpConstString: {name: "const-string", hasDest: true, payload: PayloadString},
	OpConstClass:  {name: "const-class", hasDest: true, payload: PayloadType},

	OpReturnVoid:   {name: "return-void", terminator: true},
	OpReturn:       {name: "return", srcs: 1, terminator: true},
	OpReturnObject: {name: "return-object", srcs: 1, terminator: true},
	OpReturnWide:   {name: "return-wide", srcs: 1, terminator: true},
	OpThrow:        {name: "throw", srcs: 1, terminator: true},

	OpMonitorEnter: {name: "monitor-enter", srcs: 1},
	OpMonitorExit:  {name: "monitor-exit", srcs: 1},

	OpCheckCast:   {name: "check-cast", srcs: 1, payload: PayloadType, moveResultPseudo: true},
	OpInstanceOf:  {name: "instance-of", hasDest: true, srcs: 1, payload: PayloadType},
	OpArrayLength: {name: "array-length", hasDest: true, srcs: 1},

	OpNewInstance:    {name: "new-instance", hasDest: true, payload: PayloadType},
	OpNewArray:       {name: "new-array", hasDest: true, srcs: 1, payload: PayloadType},
	OpFilledNewArray: {name: "filled-new-array", srcs: variadicSrcs, payload: PayloadType, moveResult: true},
	OpFillArrayData:  {name: "fill-array-data", srcs: 1, payload: PayloadData},

	OpGoto:  {name: "goto", labels: 1, branch: true, terminator: true},
	OpIfEq:  {name: "if-eq", srcs: 2, labels: 2, branch: true, terminator: true},
	OpIfNe:  {name: "if-ne", srcs: 2, labels: 2, branch: true, terminator: true},
	OpIfLt:  {name: "if-lt", srcs: 2, labels: 2, branch: true, terminator: true},
	OpIfGe:  {name: "if-ge", srcs: 2, labels: 2, branch: true, terminator: true},
	OpIfGt:  {name: "if-gt", srcs: 2, labels: 2, branch: true, terminator: true},
	OpIfLe:  {name: "if-le", srcs: 2, labels: 2, branch: true, terminator: true},
	OpIfEqz: {name: "if-eqz", srcs: 1, labels: 2, branch: true, terminator: true},
	OpIfNez: {name: "if-nez", srcs: 1, labels: 2, branch: true, terminator: true},

	OpIget:        {name: "iget", hasDest: true, srcs: 1, payload: PayloadField},
	OpIgetWide:    {name: "iget-wide", hasDest: true, wide: true, srcs: 1, payload: PayloadField},
	OpIgetObject:  {name: "iget-object", hasDest: true, srcs: 1, payload: PayloadField},
	OpIgetBoolean: {name: "iget-boolean", hasDest: true, srcs: 1, payload: PayloadField},
	OpIgetByte:    {name: "iget-byte", hasDest: true, srcs: 1, payload: PayloadField},
	OpIgetChar:    {name: "iget-char", hasDest: true, srcs: 1, payload: PayloadField},
	OpIgetShort:   {name: "iget-short", hasDest: true, srcs: 1, payload: PayloadField},
	OpIput:        {name: "iput", srcs: 2, payload: PayloadField},
	OpIputWide:    {name: "iput-wide", srcs: 2, payload: PayloadField},
	OpIputObject:  {name: "iput-object", srcs: 2, payload: PayloadField},
	OpIputBoolean: {name: "iput-boolean", srcs: 2, payload: PayloadField},
	OpIputByte:    {name: "iput-byte", srcs: 2, payload: PayloadField},
	OpIputChar:    {name: "iput-char", srcs: 2, payload: PayloadField},
	OpIputShort:   {name: "iput-short", srcs: 2, payload: PayloadField},

	OpSget:        {name: "sget", hasDest: true, payload: PayloadField},
	OpSgetWide:    {name: "sget-wide", hasDest: true, wide: true, payload: PayloadField},
	OpSgetObject:  {name: "sget-object", hasDest: true, payload: PayloadField},
	OpSgetBoolean: {name: "sget-boolean", hasDest: true, payload: PayloadField},
	OpSgetByte:    {name: "sget-byte", hasDest: true, payload: PayloadField},
	OpSgetChar:    {name: "sget-char", hasDest: true, payload: PayloadField},
	OpSgetShort:   {name: "sget-short", hasDest: true, payload: PayloadField},
	OpSput:        {name: "sput", srcs: 1, payload: PayloadField},
	OpSputWide:    {name: "sput-wide", srcs: 1, payload: PayloadField},
	OpSputObject:  {name: "sput-object", srcs: 1, payload: PayloadField},
	OpSputBoolean: {name: "sput-boolean", srcs: 1, payload: PayloadField},
	OpSputByte:    {name: "sput-byte", srcs: 1, payload: PayloadField},
	OpSputChar:    {name: "sput-char", srcs: 1, payload: PayloadField},
	OpSputShort:   {name: "sput-short", srcs: 1, payload: PayloadField},

	OpAget:        {name: "aget", hasDest: true, srcs: 2},
	OpAgetWide:    {name: "aget-wide", hasDest: true, wide: true, srcs: 2},
	OpAgetObject:  {name: "aget-object", hasDest: true, srcs: 2},
	OpAgetBoolean: {name: "aget-boolean", hasDest: true, srcs: 2},
	OpAgetByte:    {name: "aget-byte", hasDest: true, srcs: 2},
	OpAgetChar:    {name: "aget-char", hasDest: true, srcs: 2},
	OpAgetShort:   {name: "aget-short", hasDest: true, srcs: 2},
	OpAput:        {name: "aput", srcs: 3},
	OpAputWide:    {name: "aput-wide", srcs: 3},
	OpAputObject:  {name: "aput-object", srcs: 3},
	OpAputBoolean: {name: "aput-boolean", srcs: 3},
	OpAputByte:    {name: "aput-byte", srcs: 3},
	OpAputChar:    {name: "aput-char", srcs: 3},
	OpAputShort:   {name: "aput-short", srcs: 3},

	OpInvokeVirtual:   {name: "invoke-virtual", srcs: variadicSrcs, payload: PayloadMethod, moveResult: true},
	OpInvokeSuper:     {name: "invoke-super", srcs: variadicSrcs, payload: PayloadMethod, moveResult: true},
	OpInvokeDirect:    {name: "invoke-direct", srcs: variadicSrcs, payload: PayloadMethod, moveResult: true},
	OpInvokeStatic:    {name: "invoke-static", srcs: variadicSrcs, payload: PayloadMethod, moveResult: true},
	OpInvokeInterface: {name: "invoke-interface", srcs: variadicSrcs, payload: PayloadMethod, moveResult: true},

	OpNegInt:    {name: "neg-int", hasDest: true, srcs: 1},
	OpNotInt:    {name: "not-int", hasDest: true, srcs: 1},
	OpNegLong:   {name: "neg-long", hasDest: true, wide: true, srcs: 1},
	OpNotLong:   {name: "not-long", hasDest: true, wide: true, srcs: 1},
	OpIntToLong: {name: "int-to-long", hasDest: true, wide: true, srcs: 1},
	OpLongToInt: {name: "long-to-int", hasDest: true, srcs: 1},

	OpCmpLong: {name: "cmp-long", hasDest: true, srcs: 2},

	OpAddInt:  {name: "add-int", hasDest: true, srcs: 2, commutative: true},
	OpSubInt:  {name: "sub-int", hasDest: true, srcs: 2},
	OpMulInt:  {name: "mul-int", hasDest: true, srcs: 2, commutative: true},
	OpDivInt:  {name: "div-int", hasDest: true, srcs: 2},
	OpRemInt:  {name: "rem-int", hasDest: true, srcs: 2},
	OpAndInt:  {name: "and-int", hasDest: true, srcs: 2, commutative: true},
	OpOrInt:   {name: "or-int", hasDest: true, srcs: 2, commutative: true},
	OpXorInt:  {name: "xor-int", hasDest: true, srcs: 2, commutative: true},
	OpShlInt:  {name: "shl-int", hasDest: true, srcs: 2},
	OpShrInt:  {name: "shr-int", hasDest: true, srcs: 2},
	OpUshrInt: {name: "ushr-int", hasDest: true, srcs: 2},

	OpAddLong:  {name: "add-long", hasDest: true, wide: true, srcs: 2, commutative: true},
	OpSubLong:  {name: "sub-long", hasDest: true, wide: true, srcs: 2},
	OpMulLong:  {name: "mul-long", hasDest: true, wide: true, srcs: 2, commutative: true},
	OpDivLong:  {name: "div-long", hasDest: true, wide: true, srcs: 2},
	OpRemLong:  {name: "rem-long", hasDest: true, wide: true, srcs: 2},
	OpAndLong:  {name: "and-long", hasDest: true, wide: true, srcs: 2, commutative: true},
	OpOrLong:   {name: "or-long", hasDest: true, wide: true, srcs: 2, commutative: true},
	OpXorLong:  {name: "xor-long", hasDest: true, wide: true, srcs: 2, commutative: true},
	OpShlLong:  {name: "shl-long", hasDest: true, wide: true, srcs: 2},
	OpShrLong:  {name: "shr-long", hasDest: true, wide: true, srcs: 2},
	OpUshrLong: {name: "ushr-long", hasDest: true, wide: true, srcs: 2},

	OpAddIntLit: {name: "add-int/lit", hasDest: true, srcs: 1, payload: PayloadLiteral},
	OpMulIntLit: {name: "mul-int/lit", hasDest: true, srcs: 1, payload: PayloadLiteral},
	OpAndIntLit: {name: "and-int/lit", hasDest: true, srcs: 1, payload: PayloadLiteral},
	OpOrIntLit:  {name: "or-int/lit", hasDest: true, srcs: 1, payload: PayloadLiteral},
	OpXorIntLit: {name: "xor-int/lit", hasDest: true, srcs: 1, payload: PayloadLiteral},
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, numOpcodes)
	for op := Opcode(0); op < numOpcodes; op++ {
		if info := opcodeTable[op]; info.name != "" {
			m[info.name] = op
		}
	}
	return m
}()

// OpcodeByName looks up an opcode by its assembly mnemonic.
func OpcodeByName(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}

func (op Opcode) String() string {
	if op < numOpcodes && opcodeTable[op].name != "" {
		return opcodeTable[op].name
	}
	return "unknown-opcode"
}

func (op Opcode) info() opcodeInfo {
	if op < numOpcodes {
		return opcodeTable[op]
	}
	return opcodeInfo{}
}

// Payload reports which scalar attribute instructions with this opcode carry.
func (op Opcode) Payload() PayloadKind { return op.info().payload }

// HasDest reports whether instructions with this opcode define a register.
func (op Opcode) HasDest() bool { return op.info().hasDest }

// DestIsWide reports whether the destination occupies a register pair.
func (op Opcode) DestIsWide() bool { return op.info().wide }

// SrcCount is the fixed source-register count, or -1 for variadic opcodes.
func (op Opcode) SrcCount() int { return op.info().srcs }

// LabelCount is the number of branch targets the opcode takes.
func (op Opcode) LabelCount() int { return op.info().labels }

// IsMove reports plain register-to-register moves.
func IsMove(op Opcode) bool {
	return op == OpMove || op == OpMoveObject || op == OpMoveWide
}

// IsMoveResult covers move-result and its pseudo forms.
func IsMoveResult(op Opcode) bool {
	switch op {
	case OpMoveResult, OpMoveResultObject, OpMoveResultWide,
		OpMoveResultPseudo, OpMoveResultPseudoObject, OpMoveResultPseudoWide:
		return true
	}
	return false
}

// IsConst reports constant-materializing opcodes.
func IsConst(op Opcode) bool {
	switch op {
	case OpConst, OpConstWide, OpConstString, OpConstClass:
		return true
	}
	return false
}

// IsLoadParam reports parameter loads.
func IsLoadParam(op Opcode) bool {
	return op == OpLoadParam || op == OpLoadParamObject || op == OpLoadParamWide
}

// IsCommutative reports opcodes whose two sources may be swapped freely.
func IsCommutative(op Opcode) bool { return op.info().commutative }

// IsInvoke reports method invocations.
func IsInvoke(op Opcode) bool {
	switch op {
	case OpInvokeVirtual, OpInvokeSuper, OpInvokeDirect, OpInvokeStatic, OpInvokeInterface:
		return true
	}
	return false
}

// IsSFieldOp reports static field accesses.
func IsSFieldOp(op Opcode) bool { return op >= OpSget && op <= OpSputShort }

// IsIFieldOp reports instance field accesses.
func IsIFieldOp(op Opcode) bool { return op >= OpIget && op <= OpIputShort }

// IsHeapGet reports reads from the heap: instance, static, or array gets.
func IsHeapGet(op Opcode) bool {
	return (op >= OpIget && op <= OpIgetShort) ||
		(op >= OpSget && op <= OpSgetShort) ||
		(op >= OpAget && op <= OpAgetShort)
}

// IsHeapPut reports writes to the heap: instance, static, or array puts.
func IsHeapPut(op Opcode) bool {
	return (op >= OpIput && op <= OpIputShort) ||
		(op >= OpSput && op <= OpSputShort) ||
		(op >= OpAput && op <= OpAputShort)
}

// SrcIsWide reports whether source operand i of the opcode names a
// register pair rather than a single register.
func SrcIsWide(op Opcode, i int) bool {
	switch op {
	case OpMoveWide, OpReturnWide, OpNegLong, OpNotLong, OpLongToInt:
		return i == 0
	case OpAddLong, OpSubLong, OpMulLong, OpDivLong, OpRemLong,
		OpAndLong, OpOrLong, OpXorLong, OpCmpLong:
		return true
	case OpShlLong, OpShrLong, OpUshrLong:
		// The shift distance is a single register.
		return i == 0
	case OpIputWide, OpSputWide, OpAputWide:
		return i == 0
	}
	return false
}

// IsBranch reports opcodes with explicit targets.
func IsBranch(op Opcode) bool { return op.info().branch }

// IsTerminator reports opcodes that end a block unconditionally.
func IsTerminator(op Opcode) bool { return op.info().terminator }
