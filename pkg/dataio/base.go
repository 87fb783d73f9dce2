package dataio

import (
	"fmt"
	"pivot/pkg/common"
)

type NoopStore struct{}

func (s *NoopStore) Load() (*Snapshot, error) { return &Snapshot{}, nil }

func (s *NoopStore) Resolve(dim common.DimID, v common.Value) string {
	return fmt.Sprintf("%d", v)
}

func (s *NoopStore) DimensionName(dim common.DimID) string {
	return fmt.Sprintf("dim-%d", dim)
}

func (s *NoopStore) Rename(common.DimID, common.Value, string) (err error) { return }

func (s *NoopStore) CreateEntity(dim common.DimID, name string) (common.Value, error) {
	return 0, ErrRejected
}

func (s *NoopStore) EnsureLeaves([]common.DimID, common.Tuple) (err error) { return }
func (s *NoopStore) Upsert(common.Tuple, interface{}) (err error)          { return }
func (s *NoopStore) Delete(common.Tuple) (err error)                       { return }
