package grid

import (
	"pivot/pkg/common"
	"pivot/pkg/iface"

	"github.com/cockroachdb/errors"
)

// layout is the grid geometry at one point in time.
//
//	+--------+----------------+---+
//	| corner | column headers | e |
//	+--------+----------------+---+
//	|  row   |      data      | e |
//	|headers |                |   |
//	+--------+----------------+---+
//	| empty row                   |
//	+-----------------------------+
//
// The last header row holds the row dimension labels and the last header
// column holds the column dimension labels.
type layout struct {
	rows, columns []common.DimID
	headerRows    int
	headerColumns int
	dataRows      int
	dataColumns   int
	emptyRow      bool
	emptyColumn   bool
}

func (l *layout) rowCount() int {
	n := l.headerRows + l.dataRows
	if l.emptyRow {
		n++
	}
	return n
}

func (l *layout) columnCount() int {
	n := l.headerColumns + l.dataColumns
	if l.emptyColumn {
		n++
	}
	return n
}

func (p *Projector) layout() *layout {
	spec := p.index.Spec()
	l := &layout{
		rows:        spec.Rows,
		columns:     spec.Columns,
		headerRows:  len(spec.Columns),
		emptyRow:    len(spec.Rows) > 0,
		emptyColumn: len(spec.Columns) > 0,
	}
	if len(spec.Rows) > 0 {
		l.headerRows++
	}
	l.headerColumns = len(spec.Rows)
	if l.headerColumns == 0 && len(spec.Columns) > 0 {
		l.headerColumns = 1
	}
	p.RLock()
	l.dataRows, l.dataColumns = p.fetched[iface.AxisRows], p.fetched[iface.AxisColumns]
	p.RUnlock()
	if len(spec.Rows) == 0 {
		l.dataRows = 1
	}
	if len(spec.Columns) == 0 {
		l.dataColumns = 1
	}
	return l
}

// position is a classified grid coordinate. dataRow and dataColumn are
// relative to the data band and meaningful only where the region says so.
type position struct {
	row, column int
	region      iface.Region
	dataRow     int
	dataColumn  int
	dim         common.DimID
	hasDim      bool
	// component of the header key owned by dim
	part int
}

func (l *layout) classify(row, column int) (pos position, err error) {
	if row < 0 || column < 0 || row >= l.rowCount() || column >= l.columnCount() {
		err = errors.Wrapf(ErrInvalidPosition, "(%d,%d) outside %dx%d", row, column, l.rowCount(), l.columnCount())
		return
	}
	pos = position{
		row:        row,
		column:     column,
		dataRow:    row - l.headerRows,
		dataColumn: column - l.headerColumns,
	}
	switch {
	case row < l.headerRows && column < l.headerColumns:
		pos.region = iface.RegionCorner
		if row == len(l.columns) && column < len(l.rows) {
			pos.dim, pos.hasDim = l.rows[column], true
		} else if row < len(l.columns) && column == l.headerColumns-1 {
			pos.dim, pos.hasDim = l.columns[row], true
		}
	case row < len(l.columns):
		pos.region = iface.RegionColumnHeader
		if pos.dataColumn == l.dataColumns {
			pos.region = iface.RegionEmptyColumn
		}
		pos.dim, pos.hasDim, pos.part = l.columns[row], true, row
	case row < l.headerRows:
		pos.region = iface.RegionCorner
	case column < len(l.rows):
		pos.region = iface.RegionRowHeader
		if pos.dataRow == l.dataRows {
			pos.region = iface.RegionEmptyRow
		}
		pos.dim, pos.hasDim, pos.part = l.rows[column], true, column
	case column < l.headerColumns:
		pos.region = iface.RegionCorner
	case pos.dataRow == l.dataRows:
		pos.region = iface.RegionEmptyRow
	case pos.dataColumn == l.dataColumns:
		pos.region = iface.RegionEmptyColumn
	default:
		pos.region = iface.RegionData
	}
	return
}

// isLabel reports a corner cell naming an axis dimension.
func (pos *position) isLabel() bool {
	return pos.region == iface.RegionCorner && pos.hasDim
}

// isHeader reports a header cell, including those of the empty row and
// column.
func (pos *position) isHeader() bool {
	return pos.region != iface.RegionCorner && pos.hasDim
}

func (pos *position) isEmptyHeader() bool {
	return pos.isHeader() && (pos.region == iface.RegionEmptyRow || pos.region == iface.RegionEmptyColumn)
}

func (p *Projector) RowCount() int {
	return p.layout().rowCount()
}

func (p *Projector) ColumnCount() int {
	return p.layout().columnCount()
}

func (p *Projector) HeaderRowCount() int {
	return p.layout().headerRows
}

func (p *Projector) HeaderColumnCount() int {
	return p.layout().headerColumns
}

// TopLeftID returns the dimension owning a header or label cell.
func (p *Projector) TopLeftID(row, column int) (common.DimID, bool) {
	pos, err := p.layout().classify(row, column)
	if err != nil {
		return 0, false
	}
	return pos.dim, pos.hasDim
}

// Region classifies a grid position.
func (p *Projector) Region(row, column int) (iface.Region, error) {
	pos, err := p.layout().classify(row, column)
	return pos.region, err
}
