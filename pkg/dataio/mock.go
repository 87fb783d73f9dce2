package dataio

import (
	"fmt"
	"pivot/pkg/common"
	"pivot/pkg/relation"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

type entityNames struct {
	byValue map[common.Value]string
	byName  map[string]common.Value
}

func newEntityNames() *entityNames {
	return &entityNames{
		byValue: make(map[common.Value]string),
		byName:  make(map[string]common.Value),
	}
}

func (en *entityNames) set(v common.Value, name string) {
	if old, ok := en.byValue[v]; ok {
		delete(en.byName, old)
	}
	en.byValue[v] = name
	en.byName[name] = v
}

// MockStore is an in-memory Store. Value lists restrict which names may be
// created in a dimension. Every relation change is pushed to subscribers
// after the store lock is released.
type MockStore struct {
	sync.RWMutex
	dims       []common.DimID
	dimNames   map[common.DimID]string
	entities   map[common.DimID]*entityNames
	valueLists map[common.DimID]map[string]struct{}
	alloc      *common.IdAlloctor
	rel        *relation.Relation
	listeners  []Listener
}

func NewMockStore(dims ...common.DimID) *MockStore {
	store := &MockStore{
		dims:       append([]common.DimID(nil), dims...),
		dimNames:   make(map[common.DimID]string),
		entities:   make(map[common.DimID]*entityNames),
		valueLists: make(map[common.DimID]map[string]struct{}),
		alloc:      common.NewIdAlloctor(1),
		rel:        relation.New(len(dims)),
	}
	for _, dim := range dims {
		store.entities[dim] = newEntityNames()
	}
	return store
}

func (s *MockStore) Subscribe(l Listener) {
	s.Lock()
	defer s.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *MockStore) subscribers() []Listener {
	s.RLock()
	defer s.RUnlock()
	return append([]Listener(nil), s.listeners...)
}

func (s *MockStore) namesLocked(dim common.DimID) *entityNames {
	en := s.entities[dim]
	if en == nil {
		en = newEntityNames()
		s.entities[dim] = en
	}
	return en
}

// AddEntity registers a named value. Ids handed out by CreateEntity never
// collide with it.
func (s *MockStore) AddEntity(dim common.DimID, v common.Value, name string) {
	s.Lock()
	defer s.Unlock()
	s.namesLocked(dim).set(v, name)
	if uint64(v) > s.alloc.Get() {
		s.alloc.SetStart(uint64(v))
	}
}

func (s *MockStore) SetDimensionName(dim common.DimID, name string) {
	s.Lock()
	defer s.Unlock()
	s.dimNames[dim] = name
}

// SetValueList restricts creation in dim to names. No names lifts the
// restriction.
func (s *MockStore) SetValueList(dim common.DimID, names ...string) {
	s.Lock()
	defer s.Unlock()
	if len(names) == 0 {
		delete(s.valueLists, dim)
		return
	}
	list := make(map[string]struct{}, len(names))
	for _, name := range names {
		list[name] = struct{}{}
	}
	s.valueLists[dim] = list
}

// Seed replaces the relation and notifies subscribers with a reset.
func (s *MockStore) Seed(entries []relation.Entry) error {
	s.Lock()
	if err := s.rel.CheckArity(entries); err != nil {
		s.Unlock()
		return errors.Wrapf(ErrRejected, "%v", err)
	}
	s.rel.Reset()
	for _, e := range entries {
		s.rel.Upsert(e.Key, e.Payload)
	}
	s.Unlock()
	snap, _ := s.Load()
	for _, l := range s.subscribers() {
		l.OnReset(snap)
	}
	return nil
}

func (s *MockStore) Payload(key common.Tuple) (interface{}, bool) {
	s.RLock()
	defer s.RUnlock()
	return s.rel.Get(key)
}

func (s *MockStore) Len() int {
	s.RLock()
	defer s.RUnlock()
	return s.rel.Len()
}

func (s *MockStore) Load() (*Snapshot, error) {
	s.RLock()
	defer s.RUnlock()
	return &Snapshot{
		Dimensions: append([]common.DimID(nil), s.dims...),
		Entries:    s.rel.Entries(),
	}, nil
}

func (s *MockStore) Resolve(dim common.DimID, v common.Value) string {
	s.RLock()
	defer s.RUnlock()
	if en := s.entities[dim]; en != nil {
		if name, ok := en.byValue[v]; ok {
			return name
		}
	}
	return fmt.Sprintf("%d", v)
}

func (s *MockStore) DimensionName(dim common.DimID) string {
	s.RLock()
	defer s.RUnlock()
	if name, ok := s.dimNames[dim]; ok {
		return name
	}
	if dim == common.MeasureDimID {
		return "Measure"
	}
	return fmt.Sprintf("dim-%d", dim)
}

func (s *MockStore) Rename(dim common.DimID, v common.Value, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.Wrapf(ErrRejected, "blank name for %d in dimension %d", v, dim)
	}
	s.Lock()
	defer s.Unlock()
	en := s.entities[dim]
	if en == nil {
		return errors.Wrapf(ErrNotFound, "dimension %d", dim)
	}
	if _, ok := en.byValue[v]; !ok {
		return errors.Wrapf(ErrNotFound, "value %d in dimension %d", v, dim)
	}
	if other, ok := en.byName[name]; ok && other != v {
		return errors.Wrapf(ErrRejected, "name %q already used in dimension %d", name, dim)
	}
	en.set(v, name)
	return nil
}

// CreateEntity returns the existing value when name is already taken in dim.
func (s *MockStore) CreateEntity(dim common.DimID, name string) (common.Value, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.Wrapf(ErrRejected, "blank name in dimension %d", dim)
	}
	s.Lock()
	defer s.Unlock()
	if list, ok := s.valueLists[dim]; ok {
		if _, ok := list[name]; !ok {
			return 0, errors.Wrapf(ErrRejected, "%q is not in the value list of dimension %d", name, dim)
		}
	}
	en := s.namesLocked(dim)
	if v, ok := en.byName[name]; ok {
		return v, nil
	}
	v := common.Value(s.alloc.Alloc())
	en.set(v, name)
	return v, nil
}

func (s *MockStore) EnsureLeaves(dims []common.DimID, key common.Tuple) error {
	if len(dims) != len(key) {
		return errors.Wrapf(ErrRejected, "%d dimensions for key %s", len(dims), key)
	}
	s.Lock()
	defer s.Unlock()
	for i, c := range key {
		v, ok := c.Value()
		if !ok {
			return errors.Wrapf(ErrRejected, "unresolved component %d of key %s", i, key)
		}
		en := s.namesLocked(dims[i])
		if _, ok := en.byValue[v]; ok {
			continue
		}
		name := fmt.Sprintf("%d", v)
		if list, ok := s.valueLists[dims[i]]; ok {
			if _, ok := list[name]; !ok {
				return errors.Wrapf(ErrRejected, "%d is not in the value list of dimension %d", v, dims[i])
			}
		}
		en.set(v, name)
	}
	return nil
}

func (s *MockStore) Upsert(key common.Tuple, payload interface{}) error {
	s.Lock()
	if len(key) != s.rel.Arity() {
		s.Unlock()
		return errors.Wrapf(ErrRejected, "key %s for arity %d", key, s.rel.Arity())
	}
	created := s.rel.Upsert(key, payload)
	s.Unlock()
	changed := []relation.Entry{{Key: key.Clone(), Payload: payload}}
	for _, l := range s.subscribers() {
		if created {
			l.OnAdded(changed)
		} else {
			l.OnUpdated(changed)
		}
	}
	return nil
}

func (s *MockStore) Delete(key common.Tuple) error {
	s.Lock()
	deleted := s.rel.Delete(key)
	s.Unlock()
	if !deleted {
		return errors.Wrapf(ErrNotFound, "key %s", key)
	}
	changed := []relation.Entry{{Key: key.Clone()}}
	for _, l := range s.subscribers() {
		l.OnRemoved(changed)
	}
	return nil
}
