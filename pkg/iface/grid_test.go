package iface

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectExtend(t *testing.T) {
	r := Rect{Top: 3, Left: 3, Bottom: 3, Right: 3}
	r = r.Extend(1, 5)
	r = r.Extend(4, 2)
	assert.Equal(t, Rect{Top: 1, Left: 2, Bottom: 4, Right: 5}, r)
	assert.Equal(t, "[1,2]-[4,5]", r.String())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "EmptyColumn", RegionEmptyColumn.String())
	assert.Equal(t, "rows", AxisRows.String())
	assert.Equal(t, "columns", AxisColumns.String())
}
