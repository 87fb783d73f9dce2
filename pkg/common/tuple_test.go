package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTupleEncode(t *testing.T) {
	tuples := []Tuple{
		NewTuple(),
		NewTuple(1, 2, 3),
		{Resolved(0), Unresolved(), Resolved(1 << 40)},
	}
	seen := make(map[string]string)
	for _, tuple := range tuples {
		encoded := tuple.Encode()
		require.Len(t, encoded, 2+len(tuple)*componentSize)
		_, dup := seen[encoded]
		assert.False(t, dup, tuple.String())
		seen[encoded] = tuple.String()
		assert.Equal(t, encoded, tuple.Clone().Encode())
	}
	assert.Equal(t, "\x00\x01\x01\x00\x00\x00\x00\x00\x00\x01\x02", NewTuple(258).Encode())
	// a placeholder never collides with the zero value
	assert.NotEqual(t, Tuple{Unresolved()}.Encode(), NewTuple(0).Encode())
	// arity is part of the key
	assert.NotEqual(t, NewTuple().Encode(), Tuple{Unresolved()}.Encode()[:2])
}

func TestTupleGather(t *testing.T) {
	key := NewTuple(10, 20, 30)
	assert.Equal(t, "(30,10)", key.Gather([]int{2, 0}).String())
	assert.True(t, key.GatherEqual([]int{1}, NewTuple(20)))
	assert.False(t, key.GatherEqual([]int{1}, NewTuple(30)))
	assert.Equal(t, "()", key.Gather(nil).String())
	assert.Equal(t, "(10,20,30,?)", key.Concat(UnresolvedTuple(1)).String())
}

func TestTupleResolved(t *testing.T) {
	assert.True(t, NewTuple(1, 2).IsResolved())
	assert.False(t, Tuple{Resolved(1), Unresolved()}.IsResolved())
	assert.True(t, Tuple{}.IsResolved())
	v, ok := Unresolved().Value()
	assert.False(t, ok)
	assert.Equal(t, Value(0), v)
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(nil))
	assert.True(t, IsBlank("  "))
	assert.False(t, IsBlank("0"))
	assert.False(t, IsBlank(0))
}

func TestIdAlloctor(t *testing.T) {
	alloc := NewIdAlloctor(1)
	assert.Equal(t, uint64(1), alloc.Alloc())
	assert.Equal(t, uint64(2), alloc.Alloc())
	alloc.SetStart(10)
	assert.Equal(t, uint64(11), alloc.Alloc())
}
