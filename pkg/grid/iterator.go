package grid

import (
	"pivot/pkg/iface"
	"pivot/pkg/iface/handle"
)

type cellIt struct {
	grid        iface.GridReader
	rect        iface.Rect
	row, column int
	cell        iface.Cell
	err         error
	closed      bool
}

// NewCellIt iterates the cells of g inside rect, clipped to the grid.
func NewCellIt(g iface.GridReader, rect iface.Rect) handle.CellIt {
	if rect.Top < 0 {
		rect.Top = 0
	}
	if rect.Left < 0 {
		rect.Left = 0
	}
	if last := g.RowCount() - 1; rect.Bottom > last {
		rect.Bottom = last
	}
	if last := g.ColumnCount() - 1; rect.Right > last {
		rect.Right = last
	}
	it := &cellIt{
		grid:   g,
		rect:   rect,
		row:    rect.Top,
		column: rect.Left,
	}
	if rect.Left > rect.Right {
		it.row = rect.Bottom + 1
	}
	if it.Valid() {
		it.load()
	}
	return it
}

func (it *cellIt) load() {
	it.cell, it.err = it.grid.Cell(it.row, it.column)
}

func (it *cellIt) Valid() bool {
	return !it.closed && it.err == nil && it.row <= it.rect.Bottom
}

func (it *cellIt) Next() {
	it.column++
	if it.column > it.rect.Right {
		it.column = it.rect.Left
		it.row++
	}
	if it.Valid() {
		it.load()
	}
}

func (it *cellIt) Position() (int, int) { return it.row, it.column }
func (it *cellIt) GetCell() iface.Cell  { return it.cell }
func (it *cellIt) Err() error           { return it.err }
func (it *cellIt) Close() error         { it.closed = true; return nil }
