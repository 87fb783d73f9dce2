package dataio

import (
	"errors"
	"pivot/pkg/common"
	"pivot/pkg/relation"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	resets  int
	added   []relation.Entry
	removed []relation.Entry
	updated []relation.Entry
}

func (r *recorder) OnReset(*Snapshot)                  { r.resets++ }
func (r *recorder) OnAdded(entries []relation.Entry)   { r.added = append(r.added, entries...) }
func (r *recorder) OnRemoved(entries []relation.Entry) { r.removed = append(r.removed, entries...) }
func (r *recorder) OnUpdated(entries []relation.Entry) { r.updated = append(r.updated, entries...) }

func TestMockStoreNames(t *testing.T) {
	store := NewMockStore(1, 2)
	store.AddEntity(1, 10, "north")
	store.SetDimensionName(1, "Region")

	assert.Equal(t, "north", store.Resolve(1, 10))
	assert.Equal(t, "11", store.Resolve(1, 11))
	assert.Equal(t, "Region", store.DimensionName(1))
	assert.Equal(t, "dim-2", store.DimensionName(2))
	assert.Equal(t, "Measure", store.DimensionName(common.MeasureDimID))

	require.NoError(t, store.Rename(1, 10, " south "))
	assert.Equal(t, "south", store.Resolve(1, 10))
	assert.ErrorIs(t, store.Rename(1, 10, "  "), ErrRejected)
	assert.ErrorIs(t, store.Rename(1, 99, "x"), ErrNotFound)
	assert.ErrorIs(t, store.Rename(7, 10, "x"), ErrNotFound)

	store.AddEntity(1, 12, "east")
	assert.ErrorIs(t, store.Rename(1, 12, "south"), ErrRejected)
}

func TestMockStoreCreate(t *testing.T) {
	store := NewMockStore(1)
	store.AddEntity(1, 40, "a")

	v, err := store.CreateEntity(1, "b")
	require.NoError(t, err)
	assert.Equal(t, common.Value(41), v)
	again, err := store.CreateEntity(1, "b")
	require.NoError(t, err)
	assert.Equal(t, v, again)

	store.SetValueList(1, "c", "d")
	_, err = store.CreateEntity(1, "e")
	assert.ErrorIs(t, err, ErrRejected)
	v, err = store.CreateEntity(1, "c")
	require.NoError(t, err)
	assert.Equal(t, "c", store.Resolve(1, v))

	store.SetValueList(1)
	_, err = store.CreateEntity(1, "e")
	assert.NoError(t, err)
	_, err = store.CreateEntity(1, "")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestMockStoreEnsureLeaves(t *testing.T) {
	store := NewMockStore(1, 2)
	dims := []common.DimID{1, 2}
	require.NoError(t, store.EnsureLeaves(dims, common.NewTuple(3, 4)))
	assert.Equal(t, "3", store.Resolve(1, 3))

	store.SetValueList(2, "x")
	assert.ErrorIs(t, store.EnsureLeaves(dims, common.NewTuple(3, 5)), ErrRejected)
	assert.ErrorIs(t, store.EnsureLeaves(dims, common.NewTuple(3)), ErrRejected)
	key := common.Tuple{common.Resolved(3), common.Unresolved()}
	assert.ErrorIs(t, store.EnsureLeaves(dims, key), ErrRejected)
}

func TestMockStoreNotify(t *testing.T) {
	store := NewMockStore(1, 2)
	rec := new(recorder)
	store.Subscribe(rec)

	require.NoError(t, store.Seed([]relation.Entry{{Key: common.NewTuple(1, 10), Payload: "x"}}))
	assert.Equal(t, 1, rec.resets)

	require.NoError(t, store.Upsert(common.NewTuple(2, 10), "y"))
	require.NoError(t, store.Upsert(common.NewTuple(1, 10), "z"))
	require.Len(t, rec.added, 1)
	require.Len(t, rec.updated, 1)
	assert.Equal(t, "z", rec.updated[0].Payload)

	payload, ok := store.Payload(common.NewTuple(1, 10))
	assert.True(t, ok)
	assert.Equal(t, "z", payload)

	require.NoError(t, store.Delete(common.NewTuple(2, 10)))
	assert.Len(t, rec.removed, 1)
	err := store.Delete(common.NewTuple(2, 10))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, store.Upsert(common.NewTuple(1), "bad"), ErrRejected)
	assert.Equal(t, 1, store.Len())

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []common.DimID{1, 2}, snap.Dimensions)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "z", snap.Entries[0].Payload)

	assert.ErrorIs(t, store.Seed([]relation.Entry{{Key: common.NewTuple(1)}}), ErrRejected)
	assert.Equal(t, 1, store.Len())
	require.NoError(t, store.Seed([]relation.Entry{{Key: common.NewTuple(3, 30), Payload: "s"}}))
	assert.Equal(t, 2, rec.resets)
	assert.Equal(t, 1, store.Len())
	_, ok = store.Payload(common.NewTuple(1, 10))
	assert.False(t, ok)
}

func TestNoopStore(t *testing.T) {
	var store Store = new(NoopStore)
	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap.Entries)
	_, err = store.CreateEntity(1, "x")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "5", store.Resolve(1, 5))
	var _ Listener = new(recorder)
}
