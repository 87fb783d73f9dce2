package relation

import (
	"pivot/pkg/common"
	"testing"

	"github.com/stretchr/testify/assert"
)

func keysOf(rel *Relation) []string {
	keys := make([]string, 0, rel.Len())
	rel.Loop(func(e *Entry) bool {
		keys = append(keys, e.Key.String())
		return true
	})
	return keys
}

func TestRelationOrder(t *testing.T) {
	rel := New(2)
	assert.True(t, rel.Upsert(common.NewTuple(1, 10), "x"))
	assert.True(t, rel.Upsert(common.NewTuple(2, 10), "y"))
	assert.True(t, rel.Upsert(common.NewTuple(3, 10), "z"))
	assert.Equal(t, []string{"(1,10)", "(2,10)", "(3,10)"}, keysOf(rel))

	// overwrite keeps the position
	assert.False(t, rel.Upsert(common.NewTuple(1, 10), "x2"))
	assert.Equal(t, []string{"(1,10)", "(2,10)", "(3,10)"}, keysOf(rel))
	v, ok := rel.Get(common.NewTuple(1, 10))
	assert.True(t, ok)
	assert.Equal(t, "x2", v)

	// re-added key moves to the tail
	assert.True(t, rel.Delete(common.NewTuple(1, 10)))
	assert.False(t, rel.Delete(common.NewTuple(1, 10)))
	rel.Upsert(common.NewTuple(1, 10), "x3")
	assert.Equal(t, []string{"(2,10)", "(3,10)", "(1,10)"}, keysOf(rel))
	t.Log(rel.PPString(common.PPL1, 0, ""))
}

func TestRelationUpdate(t *testing.T) {
	rel := New(1)
	assert.False(t, rel.Update(common.NewTuple(1), "a"))
	assert.Equal(t, 0, rel.Len())
	rel.Upsert(common.NewTuple(1), "a")
	assert.True(t, rel.Update(common.NewTuple(1), "b"))
	v, _ := rel.Get(common.NewTuple(1))
	assert.Equal(t, "b", v)
}

func TestRelationUnresolvedKeys(t *testing.T) {
	rel := New(2)
	rel.Upsert(common.Tuple{common.Resolved(0), common.Unresolved()}, nil)
	assert.False(t, rel.Has(common.NewTuple(0, 0)))
	assert.True(t, rel.Has(common.Tuple{common.Resolved(0), common.Unresolved()}))
}

func TestRelationCheckArity(t *testing.T) {
	rel := New(2)
	err := rel.CheckArity([]Entry{{Key: common.NewTuple(1, 2)}, {Key: common.NewTuple(1)}})
	assert.ErrorIs(t, err, ErrArityMismatch)
	assert.NoError(t, rel.CheckArity([]Entry{{Key: common.NewTuple(1, 2)}}))
}

func TestRelationReset(t *testing.T) {
	rel := New(1)
	for i := 0; i < 100; i++ {
		rel.Upsert(common.NewTuple(common.Value(i)), i)
	}
	assert.Equal(t, 100, rel.Len())
	assert.Len(t, rel.Entries(), 100)
	rel.Reset()
	assert.Equal(t, 0, rel.Len())
	assert.Empty(t, keysOf(rel))
}
