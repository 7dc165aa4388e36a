package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatZeroValueIsTop(t *testing.T) {
	var f Flat[int]
	assert.True(t, f.IsTop())
}

func TestFlatJoin(t *testing.T) {
	top := Top[int]()
	bottom := Bottom[int]()
	one := Value(1)
	two := Value(2)

	assert.True(t, bottom.Join(one).Equal(one), "bottom is the join identity")
	assert.True(t, one.Join(bottom).Equal(one))
	assert.True(t, one.Join(one).Equal(one))
	assert.True(t, one.Join(two).IsTop(), "distinct values join to top")
	assert.True(t, one.Join(top).IsTop())
	assert.True(t, top.Join(bottom).IsTop())
}

func TestFlatLeq(t *testing.T) {
	top := Top[int]()
	bottom := Bottom[int]()
	one := Value(1)
	two := Value(2)

	assert.True(t, bottom.Leq(one))
	assert.True(t, bottom.Leq(top))
	assert.True(t, one.Leq(one))
	assert.True(t, one.Leq(top))
	assert.False(t, one.Leq(two))
	assert.False(t, top.Leq(one))
	assert.False(t, one.Leq(bottom))
}

func TestFlatGet(t *testing.T) {
	v, ok := Value(7).Get()
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = Top[int]().Get()
	assert.False(t, ok)
	_, ok = Bottom[int]().Get()
	assert.False(t, ok)
}
