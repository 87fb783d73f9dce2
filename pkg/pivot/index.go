package pivot

import (
	"fmt"
	"pivot/pkg/common"
	"pivot/pkg/config"
	"pivot/pkg/relation"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// snapshot is replaced wholesale on every structural change and never
// modified after it is installed.
type snapshot struct {
	spec    Spec
	perm    *permutation
	rows    []common.Tuple
	columns []common.Tuple
}

func (snap *snapshot) rowKey(i int) (common.Tuple, error) {
	return axisKey(snap.rows, len(snap.spec.Rows), i, "row")
}

func (snap *snapshot) columnKey(i int) (common.Tuple, error) {
	return axisKey(snap.columns, len(snap.spec.Columns), i, "column")
}

// axisKey returns headers[i]. An empty header still answers index 0 with a
// placeholder so a view can offer one blank slot for a brand-new entry.
func axisKey(headers []common.Tuple, arity, i int, axis string) (common.Tuple, error) {
	if i >= 0 && i < len(headers) {
		return headers[i].Clone(), nil
	}
	if i == 0 && len(headers) == 0 {
		return common.UnresolvedTuple(arity), nil
	}
	return nil, errors.Wrapf(ErrIndexOutOfRange, "%s %d of %d", axis, i, len(headers))
}

// Index owns a sparse relation and the pivot spec applied to it.
type Index struct {
	*sync.RWMutex
	opts       *config.Options
	pool       *ants.Pool
	dims       []common.DimID
	positions  map[common.DimID]int
	rel        *relation.Relation
	domains    []*domain
	snap       *snapshot
	recomputes uint64
}

func New(opts *config.Options) *Index {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	copied := *opts
	opts = copied.FillDefaults()
	idx := &Index{
		RWMutex: new(sync.RWMutex),
		opts:    opts,
	}
	if opts.RecomputeWorkers > 1 {
		pool, err := ants.NewPool(opts.RecomputeWorkers)
		if err != nil {
			logrus.Warnf("recompute pool disabled: %v", err)
		} else {
			idx.pool = pool
		}
	}
	idx.clearLocked()
	return idx
}

func (idx *Index) Close() {
	if idx.pool != nil {
		idx.pool.Release()
	}
}

func (idx *Index) clearLocked() {
	idx.dims = nil
	idx.positions = make(map[common.DimID]int)
	idx.rel = relation.New(0)
	idx.domains = nil
	idx.snap = &snapshot{perm: newPermutation(Spec{}, idx.positions)}
}

// Clear drops the relation and the pivot spec.
func (idx *Index) Clear() {
	idx.Lock()
	defer idx.Unlock()
	idx.clearLocked()
}

// Reset replaces the relation and its canonical dimension order, then
// applies spec. An empty spec puts every dimension on the rows.
func (idx *Index) Reset(dims []common.DimID, entries []relation.Entry, spec Spec) error {
	positions := make(map[common.DimID]int, len(dims))
	for i, id := range dims {
		if _, ok := positions[id]; ok {
			return errors.Wrapf(ErrInvalidRelation, "dimension %d listed twice", id)
		}
		positions[id] = i
	}
	if spec.IsEmpty() {
		spec = Spec{Rows: dims}
	}
	if err := spec.validate(positions); err != nil {
		return err
	}
	rel := relation.New(len(dims))
	if err := rel.CheckArity(entries); err != nil {
		return errors.Wrapf(ErrInvalidRelation, "%v", err)
	}
	domains := make([]*domain, len(dims))
	for i := range domains {
		domains[i] = newDomain()
	}
	for _, e := range entries {
		if rel.Upsert(e.Key, e.Payload) {
			refDomains(domains, e.Key)
		}
	}

	idx.Lock()
	defer idx.Unlock()
	idx.dims = cloneDims(dims)
	idx.positions = positions
	idx.rel = rel
	idx.domains = domains
	idx.recomputeLocked(spec)
	return nil
}

func refDomains(domains []*domain, key common.Tuple) {
	for i, c := range key {
		domains[i].ref(c)
	}
}

func unrefDomains(domains []*domain, key common.Tuple) {
	for i, c := range key {
		domains[i].unref(c)
	}
}

// SetPivot validates and applies spec. Applying the current spec again is a
// no-op.
func (idx *Index) SetPivot(spec Spec) error {
	idx.Lock()
	defer idx.Unlock()
	return idx.setPivotLocked(spec)
}

func (idx *Index) setPivotLocked(spec Spec) error {
	if err := spec.validate(idx.positions); err != nil {
		return err
	}
	if idx.snap.spec.Equal(spec) {
		return nil
	}
	idx.recomputeLocked(spec)
	return nil
}

func (idx *Index) SetFrozenValue(value common.Tuple) error {
	idx.Lock()
	defer idx.Unlock()
	spec := idx.snap.spec
	if len(value) != len(spec.Frozen) {
		return errors.Wrapf(ErrFrozenValueLengthMismatch, "%d values for %d frozen dimensions",
			len(value), len(spec.Frozen))
	}
	if spec.FrozenValue.Equal(value) {
		return nil
	}
	spec = spec.Clone()
	spec.FrozenValue = value.Clone()
	return idx.setPivotLocked(spec)
}

// Add merges entries into the relation and returns the change in header
// length per axis. New axis values are appended after the existing ones.
func (idx *Index) Add(entries []relation.Entry) (dRows, dColumns int, err error) {
	idx.Lock()
	defer idx.Unlock()
	if err = idx.rel.CheckArity(entries); err != nil {
		err = errors.Wrapf(ErrInvalidRelation, "%v", err)
		return
	}
	for _, e := range entries {
		if idx.rel.Upsert(e.Key, e.Payload) {
			refDomains(idx.domains, e.Key)
		}
	}
	dRows, dColumns = idx.refreshLocked()
	return
}

// Remove deletes the keys of entries from the relation. Payloads are ignored.
// Unlike Add, the surviving header values may shift.
func (idx *Index) Remove(entries []relation.Entry) (dRows, dColumns int, err error) {
	idx.Lock()
	defer idx.Unlock()
	if err = idx.rel.CheckArity(entries); err != nil {
		err = errors.Wrapf(ErrInvalidRelation, "%v", err)
		return
	}
	for _, e := range entries {
		if idx.rel.Delete(e.Key) {
			unrefDomains(idx.domains, e.Key)
		}
	}
	dRows, dColumns = idx.refreshLocked()
	return
}

// Update overwrites payloads of existing keys only and returns how many were
// updated. Headers are untouched.
func (idx *Index) Update(entries []relation.Entry) int {
	idx.Lock()
	defer idx.Unlock()
	updated := 0
	for _, e := range entries {
		if len(e.Key) != idx.rel.Arity() {
			continue
		}
		if idx.rel.Update(e.Key, e.Payload) {
			updated++
		}
	}
	return updated
}

func (idx *Index) refreshLocked() (dRows, dColumns int) {
	rows, columns := len(idx.snap.rows), len(idx.snap.columns)
	idx.recomputeLocked(idx.snap.spec)
	return len(idx.snap.rows) - rows, len(idx.snap.columns) - columns
}

func (idx *Index) recomputeLocked(spec Spec) {
	now := time.Now()
	snap := &snapshot{
		spec: spec.Clone(),
		perm: newPermutation(spec, idx.positions),
	}
	rowFn := func() {
		snap.rows = uniqueAxisValues(idx.rel, snap.perm.rows, snap.perm.frozen, snap.spec.FrozenValue)
	}
	columnFn := func() {
		snap.columns = uniqueAxisValues(idx.rel, snap.perm.columns, snap.perm.frozen, snap.spec.FrozenValue)
	}
	if idx.pool != nil && len(spec.Rows) > 0 && len(spec.Columns) > 0 {
		var wg sync.WaitGroup
		for _, fn := range []func(){rowFn, columnFn} {
			fn := fn
			wg.Add(1)
			if err := idx.pool.Submit(func() {
				defer wg.Done()
				fn()
			}); err != nil {
				wg.Done()
				fn()
			}
		}
		wg.Wait()
	} else {
		rowFn()
		columnFn()
	}
	idx.snap = snap
	idx.recomputes++
	logrus.WithFields(logrus.Fields{
		"rows":    len(snap.rows),
		"columns": len(snap.columns),
		"entries": idx.rel.Len(),
	}).Debugf("pivot %s recomputed in %s", snap.spec.String(), time.Since(now))
}

// uniqueAxisValues projects every key passing the frozen filter onto axis,
// keeping the first occurrence of each fully resolved projection.
func uniqueAxisValues(rel *relation.Relation, axis, frozen []int, frozenValue common.Tuple) []common.Tuple {
	headers := make([]common.Tuple, 0)
	if len(axis) == 0 {
		return headers
	}
	seen := make(map[string]struct{})
	rel.Loop(func(e *relation.Entry) bool {
		if len(frozen) > 0 && !e.Key.GatherEqual(frozen, frozenValue) {
			return true
		}
		for _, pos := range axis {
			if !e.Key[pos].IsResolved() {
				return true
			}
		}
		projection := e.Key.Gather(axis)
		encoded := projection.Encode()
		if _, ok := seen[encoded]; ok {
			return true
		}
		seen[encoded] = struct{}{}
		headers = append(headers, projection)
		return true
	})
	return headers
}

func (idx *Index) RowKey(i int) (common.Tuple, error) {
	idx.RLock()
	defer idx.RUnlock()
	return idx.snap.rowKey(i)
}

func (idx *Index) ColumnKey(i int) (common.Tuple, error) {
	idx.RLock()
	defer idx.RUnlock()
	return idx.snap.columnKey(i)
}

// FullKey reassembles the relation key addressed by a row and a column.
func (idx *Index) FullKey(row, column int) (common.Tuple, error) {
	idx.RLock()
	defer idx.RUnlock()
	return idx.fullKeyLocked(row, column)
}

func (idx *Index) fullKeyLocked(row, column int) (common.Tuple, error) {
	snap := idx.snap
	rowKey, err := snap.rowKey(row)
	if err != nil {
		return nil, err
	}
	columnKey, err := snap.columnKey(column)
	if err != nil {
		return nil, err
	}
	return snap.perm.assemble(rowKey, columnKey, snap.spec.FrozenValue), nil
}

func (idx *Index) GetCell(row, column int) (payload interface{}, present bool, err error) {
	idx.RLock()
	defer idx.RUnlock()
	key, err := idx.fullKeyLocked(row, column)
	if err != nil {
		return
	}
	payload, present = idx.rel.Get(key)
	return
}

func (idx *Index) Spec() Spec {
	idx.RLock()
	defer idx.RUnlock()
	return idx.snap.spec.Clone()
}

func (idx *Index) Dimensions() []common.DimID {
	idx.RLock()
	defer idx.RUnlock()
	return cloneDims(idx.dims)
}

func (idx *Index) RowCount() int {
	idx.RLock()
	defer idx.RUnlock()
	return len(idx.snap.rows)
}

func (idx *Index) ColumnCount() int {
	idx.RLock()
	defer idx.RUnlock()
	return len(idx.snap.columns)
}

// RowHeaders returns the row header cache. The tuples must not be modified.
func (idx *Index) RowHeaders() []common.Tuple {
	idx.RLock()
	defer idx.RUnlock()
	return idx.snap.rows
}

func (idx *Index) ColumnHeaders() []common.Tuple {
	idx.RLock()
	defer idx.RUnlock()
	return idx.snap.columns
}

// Contains reports whether key is in the relation, whatever its payload.
func (idx *Index) Contains(key common.Tuple) bool {
	idx.RLock()
	defer idx.RUnlock()
	return idx.rel.Has(key)
}

// Len is the number of relation entries.
func (idx *Index) Len() int {
	idx.RLock()
	defer idx.RUnlock()
	return idx.rel.Len()
}

func (idx *Index) RecomputeCount() uint64 {
	idx.RLock()
	defer idx.RUnlock()
	return idx.recomputes
}

// DimensionValues lists the resolved values of dim present in the relation,
// in ascending order.
func (idx *Index) DimensionValues(dim common.DimID) []common.Value {
	idx.RLock()
	defer idx.RUnlock()
	pos, ok := idx.positions[dim]
	if !ok {
		return nil
	}
	return idx.domains[pos].list()
}

func (idx *Index) PPString(level common.PPLevel) string {
	idx.RLock()
	defer idx.RUnlock()
	snap := idx.snap
	s := fmt.Sprintf("INDEX%s[dims=%v][rows=%d][cols=%d]", snap.spec.String(), idx.dims, len(snap.rows), len(snap.columns))
	if level == common.PPL0 {
		return s
	}
	for i, h := range snap.rows {
		s = fmt.Sprintf("%s\n\tROW[%d]%s", s, i, h)
	}
	for i, h := range snap.columns {
		s = fmt.Sprintf("%s\n\tCOL[%d]%s", s, i, h)
	}
	if level == common.PPL2 {
		s = fmt.Sprintf("%s\n%s", s, idx.rel.PPString(level, 1, ""))
	}
	return s
}
