package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dexopt/internal/cfg"
	"dexopt/internal/ir"
)

func TestParseSimpleMethod(t *testing.T) {
	source := `
method simple (regs 4) {
entry:
  load-param v0
  load-param v1
  add-int v2, v0, v1
  return v2
}
`
	prog, err := Parse("test.dasm", source)
	require.NoError(t, err)
	require.Len(t, prog.Methods, 1)

	m := prog.Methods[0]
	assert.Equal(t, "simple", m.Name)
	assert.Equal(t, uint32(4), m.Graph.RegCount())

	entry := m.Graph.Entry()
	require.Len(t, entry.Insns, 4)

	add := entry.Insns[2]
	assert.Equal(t, ir.OpAddInt, add.Opcode)
	assert.Equal(t, ir.Register(2), add.Dest)
	assert.Equal(t, []ir.Register{0, 1}, add.Srcs)
}

func TestParseBranchesAndEdges(t *testing.T) {
	source := `
method branchy (regs 4) {
entry:
  load-param v0
  if-eqz v0, left, right
left:
  const v1, 1
  goto merge
right:
  const v1, 2
  goto merge
merge:
  return-void
}
`
	prog, err := Parse("test.dasm", source)
	require.NoError(t, err)
	g := prog.Methods[0].Graph

	entry, merge := g.Block(0), g.Block(3)
	require.Len(t, entry.Succs, 2)
	assert.Equal(t, "left", entry.Succs[0].Label)
	assert.Equal(t, "right", entry.Succs[1].Label)
	assert.Len(t, merge.Preds, 2)

	branch := entry.Insns[1]
	assert.Equal(t, ir.OpIfEqz, branch.Opcode)
	assert.Equal(t, []int{1, 2}, branch.Targets)
}

func TestParseFallthrough(t *testing.T) {
	source := `
method fall (regs 2) {
entry:
  const v0, 1
next:
  return-void
}
`
	prog, err := Parse("test.dasm", source)
	require.NoError(t, err)
	g := prog.Methods[0].Graph
	require.Len(t, g.Block(0).Succs, 1)
	assert.Same(t, g.Block(1), g.Block(0).Succs[0])
}

func TestParsePayloads(t *testing.T) {
	source := `
field volatile Lcom/A;.v:I
field Lcom/A;.f:I

method payloads (regs 6) {
entry:
  const v0, -7
  const-string v1, "hi there"
  const-class v2, Lcom/A;
  iget v3, v2, Lcom/A;.f:I
  invoke-virtual v2, v3, Lcom/A;.run:(I)V
  move-result v4
  fill-array-data v2, {4: 1, 2, 3}
  return-void
}
`
	prog, err := Parse("test.dasm", source)
	require.NoError(t, err)
	insns := prog.Methods[0].Graph.Entry().Insns

	assert.Equal(t, int64(-7), insns[0].Literal)
	assert.Equal(t, "hi there", insns[1].Str)
	assert.Equal(t, "Lcom/A;", insns[2].Type.Descriptor)

	iget := insns[3]
	require.NotNil(t, iget.Field)
	assert.Equal(t, "f", iget.Field.Name)
	assert.Same(t, iget.Field, prog.Pool.Field("Lcom/A;", "f", "I"), "refs are pooled")

	invoke := insns[4]
	assert.Equal(t, ir.OpInvokeVirtual, invoke.Opcode)
	assert.Equal(t, []ir.Register{2, 3}, invoke.Srcs)
	require.NotNil(t, invoke.Method)
	assert.Equal(t, "run", invoke.Method.Name)

	data := insns[6].Data
	require.NotNil(t, data)
	assert.Equal(t, 4, data.Width)
	assert.Equal(t, []int64{1, 2, 3}, data.Elements)

	volatileField := prog.Resolver.ResolveField(prog.Pool.Field("Lcom/A;", "v", "I"), ir.InstanceFieldSearch)
	require.NotNil(t, volatileField)
	assert.True(t, volatileField.Volatile)
	plain := prog.Resolver.ResolveField(prog.Pool.Field("Lcom/A;", "f", "I"), ir.InstanceFieldSearch)
	require.NotNil(t, plain)
	assert.False(t, plain.Volatile)
}

func TestParseMultipleMethods(t *testing.T) {
	source := `
method one (regs 1) {
entry:
  return-void
}

method two (regs 1) {
entry:
  return-void
}
`
	prog, err := Parse("test.dasm", source)
	require.NoError(t, err)
	require.Len(t, prog.Methods, 2)
	assert.Equal(t, "one", prog.Methods[0].Name)
	assert.Equal(t, "two", prog.Methods[1].Name)
}

func TestParseComments(t *testing.T) {
	source := `
// leading comment
method commented (regs 2) {
entry:
  const v0, 1 // trailing comment
  return-void
}
`
	_, err := Parse("test.dasm", source)
	assert.NoError(t, err)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"unknown mnemonic", "method m (regs 1) {\nentry:\n  frobnicate v0\n  return-void\n}\n"},
		{"bad arity", "method m (regs 2) {\nentry:\n  add-int v0, v1\n  return-void\n}\n"},
		{"unknown label", "method m (regs 1) {\nentry:\n  goto nowhere\n}\n"},
		{"duplicate label", "method m (regs 1) {\nentry:\n  return-void\nentry:\n  return-void\n}\n"},
		{"missing payload", "method m (regs 1) {\nentry:\n  const v0\n  return-void\n}\n"},
		{"falls off the end", "method m (regs 1) {\nentry:\n  const v0, 1\n}\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("test.dasm", tc.source)
			assert.Error(t, err)
		})
	}
}

func TestPrintRoundTrip(t *testing.T) {
	source := `
field Lcom/A;.f:I
method round (regs 4) {
entry:
  load-param v0
  iget v1, v0, Lcom/A;.f:I
  if-eqz v1, yes, no
yes:
  const-string v2, "y"
  return-void
no:
  return-void
}
`
	prog, err := Parse("test.dasm", source)
	require.NoError(t, err)

	printed := cfg.Print(prog.Methods[0])
	reparsed, err := Parse("roundtrip.dasm", printed)
	require.NoError(t, err, "printed form should parse back:\n%s", printed)

	again := cfg.Print(reparsed.Methods[0])
	assert.Equal(t, printed, again)
}
