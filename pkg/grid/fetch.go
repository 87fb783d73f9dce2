package grid

import (
	"pivot/pkg/iface"
)

// FetchMore materializes the next chunk of axis, up to its header length.
func (p *Projector) FetchMore(axis iface.Axis) {
	if p.dimCount(axis) == 0 {
		return
	}
	length := p.headerLength(axis)
	p.Lock()
	old := p.fetched[axis]
	n := old + int(p.opts.ChunkSize)
	if n > length {
		n = length
	}
	p.fetched[axis] = n
	p.Unlock()
	if n > old {
		p.events.push(insertEvent(axis, old, n-1))
	}
}

func (p *Projector) CanFetchMore(axis iface.Axis) bool {
	if p.dimCount(axis) == 0 {
		return false
	}
	length := p.headerLength(axis)
	p.RLock()
	defer p.RUnlock()
	return p.fetched[axis] < length
}

// Fetched is the number of data slots of axis. An axis without dimensions
// always has one.
func (p *Projector) Fetched(axis iface.Axis) int {
	if p.dimCount(axis) == 0 {
		return 1
	}
	p.RLock()
	defer p.RUnlock()
	return p.fetched[axis]
}

func (p *Projector) dimCount(axis iface.Axis) int {
	spec := p.index.Spec()
	if axis == iface.AxisRows {
		return len(spec.Rows)
	}
	return len(spec.Columns)
}

func (p *Projector) headerLength(axis iface.Axis) int {
	if axis == iface.AxisRows {
		return p.index.RowCount()
	}
	return p.index.ColumnCount()
}

// advance grows the window of axis by delta after new values were appended
// to its header.
func (p *Projector) advance(axis iface.Axis, delta int) {
	if delta <= 0 || p.dimCount(axis) == 0 {
		return
	}
	length := p.headerLength(axis)
	p.Lock()
	old := p.fetched[axis]
	n := old + delta
	if n > length {
		n = length
	}
	p.fetched[axis] = n
	p.Unlock()
	if n > old {
		p.events.push(insertEvent(axis, old, n-1))
	}
}

func (p *Projector) clamp() {
	rows, columns := p.index.RowCount(), p.index.ColumnCount()
	p.Lock()
	defer p.Unlock()
	if p.fetched[iface.AxisRows] > rows {
		p.fetched[iface.AxisRows] = rows
	}
	if p.fetched[iface.AxisColumns] > columns {
		p.fetched[iface.AxisColumns] = columns
	}
}

// resetFetched restarts both windows. When only one axis has dimensions it
// starts with one slot so the single data row or column shows at once.
func (p *Projector) resetFetched() {
	spec := p.index.Spec()
	var fetched [2]int
	if len(spec.Rows) > 0 && len(spec.Columns) == 0 && p.index.RowCount() > 0 {
		fetched[iface.AxisRows] = 1
	}
	if len(spec.Columns) > 0 && len(spec.Rows) == 0 && p.index.ColumnCount() > 0 {
		fetched[iface.AxisColumns] = 1
	}
	p.Lock()
	defer p.Unlock()
	p.fetched = fetched
}
