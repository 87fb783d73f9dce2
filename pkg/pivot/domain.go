package pivot

import (
	"pivot/pkg/common"

	"github.com/RoaringBitmap/roaring/roaring64"
)

// domain tracks the resolved values of one dimension present in the relation.
type domain struct {
	refs   map[common.Value]int
	values *roaring64.Bitmap
}

func newDomain() *domain {
	return &domain{
		refs:   make(map[common.Value]int),
		values: roaring64.NewBitmap(),
	}
}

func (d *domain) ref(c common.Component) {
	v, ok := c.Value()
	if !ok {
		return
	}
	if d.refs[v] == 0 {
		d.values.Add(uint64(v))
	}
	d.refs[v]++
}

func (d *domain) unref(c common.Component) {
	v, ok := c.Value()
	if !ok {
		return
	}
	switch d.refs[v] {
	case 0:
		return
	case 1:
		delete(d.refs, v)
		d.values.Remove(uint64(v))
	default:
		d.refs[v]--
	}
}

func (d *domain) list() []common.Value {
	raw := d.values.ToArray()
	out := make([]common.Value, len(raw))
	for i, v := range raw {
		out[i] = common.Value(v)
	}
	return out
}
