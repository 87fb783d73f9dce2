package iface

import (
	"fmt"
	"pivot/pkg/common"
)

type Axis int8

const (
	AxisRows Axis = iota
	AxisColumns
)

func (a Axis) String() string {
	if a == AxisRows {
		return "rows"
	}
	return "columns"
}

type Region int8

const (
	RegionCorner Region = iota
	RegionColumnHeader
	RegionRowHeader
	RegionData
	RegionEmptyRow
	RegionEmptyColumn
)

var RegionNames = map[Region]string{
	RegionCorner:       "Corner",
	RegionColumnHeader: "ColumnHeader",
	RegionRowHeader:    "RowHeader",
	RegionData:         "Data",
	RegionEmptyRow:     "EmptyRow",
	RegionEmptyColumn:  "EmptyColumn",
}

func (r Region) String() string { return RegionNames[r] }

// Cell is the resolved content of one grid position.
//
// For header cells Dim owns the value and Label is its resolved name. For
// data cells Key is the full relation key and Payload is valid when Present.
// Cells in the empty row or column are header cells with an unresolved Value
// or data cells with an unresolved Key.
type Cell struct {
	Region  Region
	Dim     common.DimID
	HasDim  bool
	Value   common.Component
	Label   string
	Key     common.Tuple
	Payload interface{}
	Present bool
}

type Edit struct {
	Row, Column int
	Value       interface{}
}

// Rect is an inclusive range of grid positions.
type Rect struct {
	Top, Left, Bottom, Right int
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d]-[%d,%d]", r.Top, r.Left, r.Bottom, r.Right)
}

// Extend grows r to include the position.
func (r Rect) Extend(row, column int) Rect {
	if row < r.Top {
		r.Top = row
	}
	if row > r.Bottom {
		r.Bottom = row
	}
	if column < r.Left {
		r.Left = column
	}
	if column > r.Right {
		r.Right = column
	}
	return r
}

type GridReader interface {
	RowCount() int
	ColumnCount() int
	HeaderRowCount() int
	HeaderColumnCount() int
	Cell(row, column int) (Cell, error)
}

type GridFetcher interface {
	FetchMore(axis Axis)
	CanFetchMore(axis Axis) bool
}

type GridWriter interface {
	BatchEdit(edits []Edit) (ok bool, errs []error)
}

// Grid is what a viewport drives: geometry, cell content, chunked fetching
// and batched edits.
type Grid interface {
	GridReader
	GridFetcher
	GridWriter
}
