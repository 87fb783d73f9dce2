package grid

import (
	"pivot/pkg/common"
	"pivot/pkg/config"
	"pivot/pkg/dataio"
	"pivot/pkg/iface"
	"pivot/pkg/pivot"
	"pivot/pkg/relation"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnresolvedKey   = errors.New("pivot: key has unresolved components")
	ErrInvalidPosition = errors.New("pivot: invalid grid position")
)

// Projector presents a pivot index as a chunked 2-D grid. Relation changes
// reach the index only through the Listener methods; edits are sent to the
// store which is expected to notify back.
type Projector struct {
	sync.RWMutex
	opts    *config.Options
	index   *pivot.Index
	store   dataio.Store
	fetched [2]int
	events  *eventRing
}

var (
	_ iface.Grid      = (*Projector)(nil)
	_ dataio.Listener = (*Projector)(nil)
)

func NewProjector(index *pivot.Index, store dataio.Store, opts *config.Options) *Projector {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	copied := *opts
	opts = copied.FillDefaults()
	if store == nil {
		store = new(dataio.NoopStore)
	}
	return &Projector{
		opts:   opts,
		index:  index,
		store:  store,
		events: newEventRing(opts.EventQueueSize),
	}
}

func (p *Projector) Index() *pivot.Index { return p.index }

// Load replaces the relation with the one delivered by source, keeping the
// current pivot when it still fits the new dimensions.
func (p *Projector) Load(source dataio.RelationSource) error {
	snap, err := source.Load()
	if err != nil {
		return err
	}
	return p.reset(snap)
}

func (p *Projector) reset(snap *dataio.Snapshot) error {
	err := p.index.Reset(snap.Dimensions, snap.Entries, p.index.Spec())
	if errors.Is(err, pivot.ErrInvalidPivotSpec) {
		err = p.index.Reset(snap.Dimensions, snap.Entries, pivot.Spec{})
	}
	if err != nil {
		return err
	}
	p.resetFetched()
	p.events.push(Event{Type: EventReset})
	return nil
}

// SetPivot reshapes the grid. The fetched windows restart from zero unless
// the pivot is unchanged.
func (p *Projector) SetPivot(spec pivot.Spec) error {
	return p.reshape(func() error { return p.index.SetPivot(spec) })
}

func (p *Projector) SetFrozenValue(value common.Tuple) error {
	return p.reshape(func() error { return p.index.SetFrozenValue(value) })
}

func (p *Projector) reshape(fn func() error) error {
	before := p.index.RecomputeCount()
	if err := fn(); err != nil {
		return err
	}
	if p.index.RecomputeCount() != before {
		p.resetFetched()
		p.events.push(Event{Type: EventReset})
	}
	return nil
}

func (p *Projector) OnReset(snap *dataio.Snapshot) {
	if err := p.reset(snap); err != nil {
		logrus.Warnf("reset ignored: %v", err)
	}
}

func (p *Projector) OnAdded(entries []relation.Entry) {
	dRows, dColumns, err := p.index.Add(entries)
	if err != nil {
		logrus.Warnf("add ignored: %v", err)
		return
	}
	p.advance(iface.AxisRows, dRows)
	p.advance(iface.AxisColumns, dColumns)
	p.dataChanged()
}

// OnRemoved clamps the fetched windows to the shrunken headers. Surviving
// header values may move, so the whole layout is invalidated.
func (p *Projector) OnRemoved(entries []relation.Entry) {
	dRows, dColumns, err := p.index.Remove(entries)
	if err != nil {
		logrus.Warnf("remove ignored: %v", err)
		return
	}
	p.clamp()
	logrus.WithFields(logrus.Fields{
		"rows":    dRows,
		"columns": dColumns,
	}).Debugf("removed %d entries", len(entries))
	p.events.push(Event{Type: EventLayoutChanged})
}

func (p *Projector) OnUpdated(entries []relation.Entry) {
	if p.index.Update(entries) > 0 {
		p.dataChanged()
	}
}

func (p *Projector) dataChanged() {
	l := p.layout()
	if l.dataRows == 0 || l.dataColumns == 0 {
		return
	}
	p.events.push(Event{
		Type: EventDataChanged,
		Rect: iface.Rect{
			Top:    l.headerRows,
			Left:   l.headerColumns,
			Bottom: l.headerRows + l.dataRows - 1,
			Right:  l.headerColumns + l.dataColumns - 1,
		},
	})
}

// Cell resolves the content at a grid position. Reads past the header
// caches are logged and answered with an empty cell.
func (p *Projector) Cell(row, column int) (cell iface.Cell, err error) {
	pos, err := p.layout().classify(row, column)
	if err != nil {
		return
	}
	cell.Region = pos.region
	cell.Dim, cell.HasDim = pos.dim, pos.hasDim
	cell.Value = common.Unresolved()
	switch {
	case pos.isLabel():
		cell.Label = p.store.DimensionName(pos.dim)
	case pos.isEmptyHeader():
	case pos.isHeader():
		var key common.Tuple
		if pos.region == iface.RegionRowHeader {
			key, err = p.index.RowKey(pos.dataRow)
		} else {
			key, err = p.index.ColumnKey(pos.dataColumn)
		}
		if err != nil {
			logrus.Warnf("header at (%d,%d) out of sync: %v", row, column, err)
			err = nil
			return
		}
		cell.Value = key[pos.part]
		if v, ok := cell.Value.Value(); ok {
			cell.Label = p.store.Resolve(pos.dim, v)
		}
	case pos.region == iface.RegionData:
		var payload interface{}
		var present bool
		if cell.Key, err = p.index.FullKey(pos.dataRow, pos.dataColumn); err == nil {
			payload, present, err = p.index.GetCell(pos.dataRow, pos.dataColumn)
		}
		if err != nil {
			logrus.Warnf("cell at (%d,%d) out of sync: %v", row, column, err)
			cell.Key = nil
			err = nil
			return
		}
		cell.Payload = payload
		cell.Present = present && payload != nil
	}
	return
}
