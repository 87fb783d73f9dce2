package grid

import (
	"fmt"
	"pivot/pkg/common"
	"pivot/pkg/iface"
	"pivot/pkg/relation"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

type dataEdit struct {
	pos      position
	key      common.Tuple
	existing bool
	value    interface{}
}

type headerEdit struct {
	pos   position
	value common.Value
	name  string
}

type createEdit struct {
	pos  position
	name string
}

type editBatch struct {
	data    []dataEdit
	headers []headerEdit
	creates []createEdit
	errs    []error
	rect    iface.Rect
	touched bool
}

func (b *editBatch) touch(pos position) {
	if !b.touched {
		b.rect = iface.Rect{Top: pos.row, Left: pos.column, Bottom: pos.row, Right: pos.column}
		b.touched = true
		return
	}
	b.rect = b.rect.Extend(pos.row, pos.column)
}

func (b *editBatch) fail(err error) {
	logrus.Infof("edit skipped: %v", err)
	b.errs = append(b.errs, err)
}

// dedupe keeps the last value written to each position, in first-seen
// position order.
func dedupe(edits []iface.Edit) []iface.Edit {
	type cellPos struct{ row, column int }
	slots := make(map[cellPos]int, len(edits))
	out := make([]iface.Edit, 0, len(edits))
	for _, e := range edits {
		at := cellPos{e.Row, e.Column}
		if i, ok := slots[at]; ok {
			out[i].Value = e.Value
			continue
		}
		slots[at] = len(out)
		out = append(out, e)
	}
	return out
}

func editName(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// BatchEdit applies edits at grid positions. Data cells create, update or
// delete relation entries, header cells rename the value they show and the
// header cells of the empty row and column create new values. Failed items
// are skipped and returned. ok is true if any item was applied.
func (p *Projector) BatchEdit(edits []iface.Edit) (ok bool, errs []error) {
	batch := p.prepare(dedupe(edits))
	dataOk := p.applyData(batch)
	renameOk := p.applyRenames(batch)
	createOk := p.applyCreates(batch)
	if batch.touched {
		p.events.push(Event{Type: EventDataChanged, Rect: batch.rect})
	}
	return dataOk || renameOk || createOk, batch.errs
}

// prepare resolves every edit against the grid as it is before any change
// is applied.
func (p *Projector) prepare(edits []iface.Edit) *editBatch {
	l := p.layout()
	batch := new(editBatch)
	for _, e := range edits {
		pos, err := l.classify(e.Row, e.Column)
		if err != nil {
			batch.fail(err)
			continue
		}
		batch.touch(pos)
		switch {
		case pos.region == iface.RegionData:
			key, err := p.index.FullKey(pos.dataRow, pos.dataColumn)
			if err != nil {
				batch.fail(err)
				continue
			}
			if !key.IsResolved() {
				batch.fail(errors.Wrapf(ErrUnresolvedKey, "%s at (%d,%d)", key, e.Row, e.Column))
				continue
			}
			payload, present, err := p.index.GetCell(pos.dataRow, pos.dataColumn)
			if err != nil {
				batch.fail(err)
				continue
			}
			batch.data = append(batch.data, dataEdit{
				pos:      pos,
				key:      key,
				existing: present && payload != nil,
				value:    e.Value,
			})
		case pos.isEmptyHeader():
			batch.creates = append(batch.creates, createEdit{pos: pos, name: editName(e.Value)})
		case pos.isHeader():
			var key common.Tuple
			if pos.region == iface.RegionRowHeader {
				key, err = p.index.RowKey(pos.dataRow)
			} else {
				key, err = p.index.ColumnKey(pos.dataColumn)
			}
			if err != nil {
				batch.fail(err)
				continue
			}
			v, ok := key[pos.part].Value()
			if !ok {
				batch.fail(errors.Wrapf(ErrUnresolvedKey, "header at (%d,%d)", e.Row, e.Column))
				continue
			}
			batch.headers = append(batch.headers, headerEdit{pos: pos, value: v, name: editName(e.Value)})
		}
	}
	return batch
}

func (p *Projector) applyData(batch *editBatch) (ok bool) {
	if len(batch.data) == 0 {
		return
	}
	dims := p.index.Dimensions()
	for _, e := range batch.data {
		blank := common.IsBlank(e.value)
		var err error
		switch {
		case e.existing && blank:
			err = p.store.Delete(e.key)
		case e.existing:
			err = p.store.Upsert(e.key, e.value)
		case blank:
			continue
		default:
			if err = p.store.EnsureLeaves(dims, e.key); err == nil {
				err = p.store.Upsert(e.key, e.value)
			}
		}
		if err != nil {
			batch.fail(errors.Wrapf(err, "cell (%d,%d)", e.pos.row, e.pos.column))
			continue
		}
		ok = true
	}
	return
}

func (p *Projector) applyRenames(batch *editBatch) (ok bool) {
	for _, e := range batch.headers {
		if err := p.store.Rename(e.pos.dim, e.value, e.name); err != nil {
			batch.fail(errors.Wrapf(err, "header (%d,%d)", e.pos.row, e.pos.column))
			continue
		}
		ok = true
	}
	return
}

func (p *Projector) applyCreates(batch *editBatch) (ok bool) {
	for _, e := range batch.creates {
		if e.name == "" {
			continue
		}
		v, err := p.store.CreateEntity(e.pos.dim, e.name)
		if err != nil {
			batch.fail(errors.Wrapf(err, "new %s at (%d,%d)", e.name, e.pos.row, e.pos.column))
			continue
		}
		p.addStub(e.pos.dim, v)
		ok = true
	}
	return
}

// addStub makes a freshly created value addressable: the stub key carries v
// at its dimension, the frozen slice on the frozen dimensions and nothing
// elsewhere. Stubs have no payload and never replace an entry.
func (p *Projector) addStub(dim common.DimID, v common.Value) {
	spec := p.index.Spec()
	dims := p.index.Dimensions()
	key := common.UnresolvedTuple(len(dims))
	for i, id := range dims {
		if id == dim {
			key[i] = common.Resolved(v)
			continue
		}
		for j, frozen := range spec.Frozen {
			if frozen == id {
				key[i] = spec.FrozenValue[j]
			}
		}
	}
	if p.index.Contains(key) {
		return
	}
	p.OnAdded([]relation.Entry{{Key: key}})
}
