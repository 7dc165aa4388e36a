package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dexopt/internal/ir"
)

func diamond() (*Graph, *Block, *Block, *Block, *Block) {
	g := New(4)
	entry := g.NewBlock("entry")
	left := g.NewBlock("left")
	right := g.NewBlock("right")
	merge := g.NewBlock("merge")
	g.AddEdge(entry, left)
	g.AddEdge(entry, right)
	g.AddEdge(left, merge)
	g.AddEdge(right, merge)
	return g, entry, left, right, merge
}

func TestEdges(t *testing.T) {
	g, entry, left, _, merge := diamond()
	assert.Len(t, entry.Succs, 2)
	assert.Len(t, merge.Preds, 2)
	assert.Empty(t, entry.Preds)

	g.AddEdge(entry, left)
	assert.Len(t, entry.Succs, 2, "duplicate edges are dropped")
}

func TestReversePostorder(t *testing.T) {
	g, entry, _, _, merge := diamond()
	rpo := g.ReversePostorder()
	require.Len(t, rpo, 4)
	assert.Same(t, entry, rpo[0])
	assert.Same(t, merge, rpo[3], "the merge comes after both branches")
}

func TestReversePostorderSkipsUnreachable(t *testing.T) {
	g := New(2)
	g.NewBlock("entry")
	g.NewBlock("dead")
	rpo := g.ReversePostorder()
	assert.Len(t, rpo, 1)
}

func TestTempAllocation(t *testing.T) {
	g := New(4)
	assert.Equal(t, ir.Register(4), g.AllocTemp())
	assert.Equal(t, ir.Register(5), g.AllocWideTemp())
	assert.Equal(t, ir.Register(7), g.AllocTemp())
	assert.Equal(t, uint32(8), g.RegCount())
}

func TestInsertAfter(t *testing.T) {
	g := New(4)
	b := g.NewBlock("entry")
	first := ir.NewInsn(ir.OpAddInt, 0, 1).WithDest(2)
	last := ir.NewInsn(ir.OpReturnVoid)
	b.Insns = []*ir.Instruction{first, last}

	mid := ir.NewInsn(ir.OpMove, 2).WithDest(3)
	g.InsertAfter(first, mid)
	require.Len(t, b.Insns, 3)
	assert.Same(t, mid, b.Insns[1])

	tail := ir.NewInsn(ir.OpNop)
	g.InsertAfter(last, tail)
	assert.Same(t, tail, b.Insns[3], "insertion after the last instruction appends")

	assert.Panics(t, func() {
		g.InsertAfter(ir.NewInsn(ir.OpNop), ir.NewInsn(ir.OpNop))
	})
}

func TestForEachInsnAndCount(t *testing.T) {
	g, entry, left, right, merge := diamond()
	entry.Insns = []*ir.Instruction{ir.NewInsn(ir.OpNop)}
	left.Insns = []*ir.Instruction{ir.NewInsn(ir.OpNop)}
	right.Insns = []*ir.Instruction{ir.NewInsn(ir.OpNop)}
	merge.Insns = []*ir.Instruction{ir.NewInsn(ir.OpReturnVoid)}

	n := 0
	g.ForEachInsn(func(*Block, *ir.Instruction) { n++ })
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, g.InsnCount())
}
