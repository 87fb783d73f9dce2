package grid

import (
	"pivot/pkg/iface"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellIt(t *testing.T) {
	p, _ := scenarioGrid(t)
	it := NewCellIt(p, iface.Rect{Top: 2, Left: -3, Bottom: 100, Right: 1})
	defer it.Close()
	var labels []interface{}
	for ; it.Valid(); it.Next() {
		row, column := it.Position()
		cell := it.GetCell()
		if column == 0 {
			labels = append(labels, cell.Label)
		} else {
			labels = append(labels, cell.Payload)
		}
		assert.True(t, row >= 2 && row <= 4)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []interface{}{"one", "x", "two", "y", "", nil}, labels)

	empty := NewCellIt(p, iface.Rect{Top: 3, Left: 3, Bottom: 4, Right: 9})
	assert.False(t, empty.Valid())

	closed := NewCellIt(p, iface.Rect{Bottom: 1, Right: 1})
	assert.True(t, closed.Valid())
	require.NoError(t, closed.Close())
	assert.False(t, closed.Valid())
}
