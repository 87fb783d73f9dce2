package pivot

import "pivot/pkg/common"

// permutation holds, per axis, the canonical key positions of the axis
// dimensions. Projection gathers from those positions; reassembly scatters
// rows++columns++frozen back into canonical order.
type permutation struct {
	rows    []int
	columns []int
	frozen  []int
	scatter []int
}

func newPermutation(spec Spec, positions map[common.DimID]int) *permutation {
	perm := &permutation{
		rows:    axisPositions(spec.Rows, positions),
		columns: axisPositions(spec.Columns, positions),
		frozen:  axisPositions(spec.Frozen, positions),
	}
	perm.scatter = make([]int, 0, len(perm.rows)+len(perm.columns)+len(perm.frozen))
	perm.scatter = append(perm.scatter, perm.rows...)
	perm.scatter = append(perm.scatter, perm.columns...)
	perm.scatter = append(perm.scatter, perm.frozen...)
	return perm
}

func axisPositions(dims []common.DimID, positions map[common.DimID]int) []int {
	out := make([]int, len(dims))
	for i, id := range dims {
		out[i] = positions[id]
	}
	return out
}

func (perm *permutation) assemble(row, column, frozen common.Tuple) common.Tuple {
	parts := row.Concat(column, frozen)
	key := make(common.Tuple, len(perm.scatter))
	for i, pos := range perm.scatter {
		key[pos] = parts[i]
	}
	return key
}
