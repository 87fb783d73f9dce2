package pivot

import (
	"fmt"
	"pivot/pkg/common"

	"github.com/cockroachdb/errors"
)

// Spec assigns every dimension to exactly one of rows, columns or frozen.
// FrozenValue selects the single slice shown for the frozen dimensions.
type Spec struct {
	Rows        []common.DimID
	Columns     []common.DimID
	Frozen      []common.DimID
	FrozenValue common.Tuple
}

func (s Spec) IsEmpty() bool {
	return len(s.Rows)+len(s.Columns)+len(s.Frozen) == 0
}

func (s Spec) Clone() Spec {
	return Spec{
		Rows:        cloneDims(s.Rows),
		Columns:     cloneDims(s.Columns),
		Frozen:      cloneDims(s.Frozen),
		FrozenValue: s.FrozenValue.Clone(),
	}
}

func (s Spec) Equal(o Spec) bool {
	return equalDims(s.Rows, o.Rows) &&
		equalDims(s.Columns, o.Columns) &&
		equalDims(s.Frozen, o.Frozen) &&
		s.FrozenValue.Equal(o.FrozenValue)
}

func (s Spec) String() string {
	return fmt.Sprintf("SPEC[rows=%v][cols=%v][frozen=%v=%s]", s.Rows, s.Columns, s.Frozen, s.FrozenValue)
}

// validate checks that s partitions the dimensions in positions.
func (s Spec) validate(positions map[common.DimID]int) error {
	seen := make(map[common.DimID]struct{}, len(positions))
	for _, axis := range [][]common.DimID{s.Rows, s.Columns, s.Frozen} {
		for _, id := range axis {
			if _, ok := seen[id]; ok {
				return errors.Wrapf(ErrInvalidPivotSpec, "dimension %d assigned more than once", id)
			}
			seen[id] = struct{}{}
		}
	}
	for id := range seen {
		if _, ok := positions[id]; !ok {
			return errors.Wrapf(ErrInvalidPivotSpec, "unknown dimension %d", id)
		}
	}
	if len(seen) != len(positions) {
		for id := range positions {
			if _, ok := seen[id]; !ok {
				return errors.Wrapf(ErrInvalidPivotSpec, "dimension %d not assigned", id)
			}
		}
	}
	if len(s.Frozen) != len(s.FrozenValue) {
		return errors.Wrapf(ErrInvalidPivotSpec, "%d frozen dimensions but %d frozen values",
			len(s.Frozen), len(s.FrozenValue))
	}
	return nil
}

func cloneDims(dims []common.DimID) []common.DimID {
	if dims == nil {
		return nil
	}
	out := make([]common.DimID, len(dims))
	copy(out, dims)
	return out
}

func equalDims(a, b []common.DimID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
