package filter

import (
	"pivot/pkg/common"
	"pivot/pkg/grid"
	"pivot/pkg/iface"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// stamp identifies the source state a visibility set was built from.
type stamp struct {
	recomputes uint64
	fetched    [2]int
}

// Proxy hides data rows and columns of a projector whose header values fall
// outside per-dimension accepted sets. Header, corner and empty cells are
// never hidden.
type Proxy struct {
	sync.RWMutex
	source  *grid.Projector
	filters map[common.DimID]*roaring64.Bitmap
	visible [2]*roaring.Bitmap
	built   stamp
	valid   bool
}

var _ iface.Grid = (*Proxy)(nil)

func NewProxy(source *grid.Projector) *Proxy {
	return &Proxy{
		source:  source,
		filters: make(map[common.DimID]*roaring64.Bitmap),
	}
}

// SetFilter restricts dim to accepted. A nil set lifts the restriction.
func (p *Proxy) SetFilter(dim common.DimID, accepted *roaring64.Bitmap) {
	p.Lock()
	defer p.Unlock()
	if accepted == nil {
		delete(p.filters, dim)
	} else {
		p.filters[dim] = accepted.Clone()
	}
	p.valid = false
}

func (p *Proxy) Filter(dim common.DimID) *roaring64.Bitmap {
	p.RLock()
	defer p.RUnlock()
	if accepted, ok := p.filters[dim]; ok {
		return accepted.Clone()
	}
	return nil
}

func (p *Proxy) ClearFilters() {
	p.Lock()
	defer p.Unlock()
	p.filters = make(map[common.DimID]*roaring64.Bitmap)
	p.valid = false
}

// Candidates lists the values of dim a filter can choose from.
func (p *Proxy) Candidates(dim common.DimID) []common.Value {
	return p.source.Index().DimensionValues(dim)
}

// Invalidate forces the visible sets to be rebuilt on next access.
func (p *Proxy) Invalidate() {
	p.Lock()
	defer p.Unlock()
	p.valid = false
}

func (p *Proxy) currentStamp() stamp {
	return stamp{
		recomputes: p.source.Index().RecomputeCount(),
		fetched: [2]int{
			p.source.Fetched(iface.AxisRows),
			p.source.Fetched(iface.AxisColumns),
		},
	}
}

// refresh returns the visible sets, rebuilding them when filters changed or
// the source moved on since they were built.
func (p *Proxy) refresh() [2]*roaring.Bitmap {
	now := p.currentStamp()
	p.RLock()
	if p.valid && p.built == now {
		visible := p.visible
		p.RUnlock()
		return visible
	}
	p.RUnlock()

	p.Lock()
	defer p.Unlock()
	spec := p.source.Index().Spec()
	p.visible[iface.AxisRows] = p.build(spec.Rows, p.source.Index().RowHeaders(), now.fetched[iface.AxisRows])
	p.visible[iface.AxisColumns] = p.build(spec.Columns, p.source.Index().ColumnHeaders(), now.fetched[iface.AxisColumns])
	p.built = now
	p.valid = true
	return p.visible
}

func (p *Proxy) build(dims []common.DimID, headers []common.Tuple, fetched int) *roaring.Bitmap {
	visible := roaring.New()
	if len(dims) == 0 {
		visible.Add(0)
		return visible
	}
	if fetched > len(headers) {
		logrus.Warnf("filter: %d fetched of %d headers", fetched, len(headers))
		fetched = len(headers)
	}
	for i := 0; i < fetched; i++ {
		if p.accepts(dims, headers[i]) {
			visible.Add(uint32(i))
		}
	}
	return visible
}

func (p *Proxy) accepts(dims []common.DimID, header common.Tuple) bool {
	for j, dim := range dims {
		accepted, ok := p.filters[dim]
		if !ok {
			continue
		}
		v, resolved := header[j].Value()
		if !resolved || !accepted.Contains(uint64(v)) {
			return false
		}
	}
	return true
}

// Visible lists the source data indices of axis that pass the filters.
func (p *Proxy) Visible(axis iface.Axis) []uint32 {
	return p.refresh()[axis].ToArray()
}

func (p *Proxy) RowCount() int {
	visible := p.refresh()
	return p.source.RowCount() - p.source.Fetched(iface.AxisRows) + int(visible[iface.AxisRows].GetCardinality())
}

func (p *Proxy) ColumnCount() int {
	visible := p.refresh()
	return p.source.ColumnCount() - p.source.Fetched(iface.AxisColumns) + int(visible[iface.AxisColumns].GetCardinality())
}

func (p *Proxy) HeaderRowCount() int    { return p.source.HeaderRowCount() }
func (p *Proxy) HeaderColumnCount() int { return p.source.HeaderColumnCount() }

func mapIndex(i, headers, fetched int, visible *roaring.Bitmap) (int, error) {
	if i < headers {
		return i, nil
	}
	k := i - headers
	shown := int(visible.GetCardinality())
	if k >= shown {
		return headers + fetched + k - shown, nil
	}
	at, err := visible.Select(uint32(k))
	if err != nil {
		return 0, errors.Wrapf(grid.ErrInvalidPosition, "%v", err)
	}
	return headers + int(at), nil
}

// MapToSource translates a proxy position into a projector position.
func (p *Proxy) MapToSource(row, column int) (int, int, error) {
	if row < 0 || column < 0 || row >= p.RowCount() || column >= p.ColumnCount() {
		return 0, 0, errors.Wrapf(grid.ErrInvalidPosition, "(%d,%d)", row, column)
	}
	visible := p.refresh()
	sourceRow, err := mapIndex(row, p.source.HeaderRowCount(), p.source.Fetched(iface.AxisRows), visible[iface.AxisRows])
	if err != nil {
		return 0, 0, err
	}
	sourceColumn, err := mapIndex(column, p.source.HeaderColumnCount(), p.source.Fetched(iface.AxisColumns), visible[iface.AxisColumns])
	if err != nil {
		return 0, 0, err
	}
	return sourceRow, sourceColumn, nil
}

func (p *Proxy) Cell(row, column int) (iface.Cell, error) {
	sourceRow, sourceColumn, err := p.MapToSource(row, column)
	if err != nil {
		return iface.Cell{}, err
	}
	return p.source.Cell(sourceRow, sourceColumn)
}

func (p *Proxy) FetchMore(axis iface.Axis) {
	p.source.FetchMore(axis)
	p.Invalidate()
}

func (p *Proxy) CanFetchMore(axis iface.Axis) bool {
	return p.source.CanFetchMore(axis)
}

// BatchEdit maps edits onto the projector. Unmappable positions are
// reported and skipped.
func (p *Proxy) BatchEdit(edits []iface.Edit) (ok bool, errs []error) {
	mapped := make([]iface.Edit, 0, len(edits))
	for _, e := range edits {
		row, column, err := p.MapToSource(e.Row, e.Column)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		mapped = append(mapped, iface.Edit{Row: row, Column: column, Value: e.Value})
	}
	ok, sourceErrs := p.source.BatchEdit(mapped)
	p.Invalidate()
	return ok, append(errs, sourceErrs...)
}
