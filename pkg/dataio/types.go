package dataio

import (
	"pivot/pkg/common"
	"pivot/pkg/relation"

	"github.com/cockroachdb/errors"
)

var (
	ErrRejected = errors.New("pivot: rejected by store")
	ErrNotFound = errors.New("pivot: not found")
)

// Snapshot is a whole relation as delivered by a source.
type Snapshot struct {
	Dimensions []common.DimID
	Entries    []relation.Entry
}

type RelationSource interface {
	Load() (*Snapshot, error)
}

type NameResolver interface {
	Resolve(dim common.DimID, v common.Value) string
	DimensionName(dim common.DimID) string
}

type Renamer interface {
	Rename(dim common.DimID, v common.Value, name string) error
}

type EntityCreator interface {
	CreateEntity(dim common.DimID, name string) (common.Value, error)
	// EnsureLeaves creates any value of key missing from its dimension.
	// dims gives the dimension of each key position.
	EnsureLeaves(dims []common.DimID, key common.Tuple) error
}

type RelationMutator interface {
	Upsert(key common.Tuple, payload interface{}) error
	Delete(key common.Tuple) error
}

// Listener receives relation changes from a source.
type Listener interface {
	OnReset(snapshot *Snapshot)
	OnAdded(entries []relation.Entry)
	OnRemoved(entries []relation.Entry)
	OnUpdated(entries []relation.Entry)
}

type Store interface {
	RelationSource
	NameResolver
	Renamer
	EntityCreator
	RelationMutator
}
