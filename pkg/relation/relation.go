package relation

import (
	"fmt"
	"pivot/pkg/common"

	"github.com/cockroachdb/errors"
	"github.com/google/btree"
)

var ErrArityMismatch = errors.New("pivot: key arity mismatch")

const btreeDegree = 32

type Entry struct {
	Key     common.Tuple
	Payload interface{}
}

func (e Entry) String() string {
	return fmt.Sprintf("%s=%v", e.Key.String(), e.Payload)
}

type node struct {
	Entry
	seq uint64
}

func (n *node) Less(item btree.Item) bool {
	return n.seq < item.(*node).seq
}

// Relation is a sparse map from fixed-arity key tuples to payloads. Iteration
// follows first insertion order; overwriting a key keeps its position and a
// re-added key goes to the tail.
type Relation struct {
	arity   int
	seqs    *common.IdAlloctor
	entries map[string]*node
	order   *btree.BTree
}

func New(arity int) *Relation {
	return &Relation{
		arity:   arity,
		seqs:    common.NewIdAlloctor(1),
		entries: make(map[string]*node),
		order:   btree.New(btreeDegree),
	}
}

func (rel *Relation) Arity() int { return rel.arity }
func (rel *Relation) Len() int   { return len(rel.entries) }

func (rel *Relation) CheckArity(entries []Entry) error {
	for i := range entries {
		if len(entries[i].Key) != rel.arity {
			return errors.Wrapf(ErrArityMismatch, "entry %d key %s has arity %d, want %d",
				i, entries[i].Key, len(entries[i].Key), rel.arity)
		}
	}
	return nil
}

func (rel *Relation) Get(key common.Tuple) (payload interface{}, ok bool) {
	n := rel.entries[key.Encode()]
	if n == nil {
		return
	}
	return n.Payload, true
}

func (rel *Relation) Has(key common.Tuple) bool {
	_, ok := rel.entries[key.Encode()]
	return ok
}

// Upsert stores payload under key and reports whether the key is new.
func (rel *Relation) Upsert(key common.Tuple, payload interface{}) (created bool) {
	encoded := key.Encode()
	if n := rel.entries[encoded]; n != nil {
		n.Payload = payload
		return false
	}
	n := &node{
		Entry: Entry{Key: key.Clone(), Payload: payload},
		seq:   rel.seqs.Alloc(),
	}
	rel.entries[encoded] = n
	rel.order.ReplaceOrInsert(n)
	return true
}

// Update overwrites the payload of an existing key only.
func (rel *Relation) Update(key common.Tuple, payload interface{}) bool {
	n := rel.entries[key.Encode()]
	if n == nil {
		return false
	}
	n.Payload = payload
	return true
}

func (rel *Relation) Delete(key common.Tuple) bool {
	encoded := key.Encode()
	n := rel.entries[encoded]
	if n == nil {
		return false
	}
	delete(rel.entries, encoded)
	rel.order.Delete(n)
	return true
}

// Loop visits entries in iteration order until fn returns false. The entry
// must not be modified.
func (rel *Relation) Loop(fn func(e *Entry) bool) {
	rel.order.Ascend(func(item btree.Item) bool {
		return fn(&item.(*node).Entry)
	})
}

func (rel *Relation) Entries() []Entry {
	entries := make([]Entry, 0, rel.Len())
	rel.Loop(func(e *Entry) bool {
		entries = append(entries, Entry{Key: e.Key.Clone(), Payload: e.Payload})
		return true
	})
	return entries
}

func (rel *Relation) Reset() {
	rel.entries = make(map[string]*node)
	rel.order.Clear(false)
	rel.seqs.SetStart(0)
}

func (rel *Relation) PPString(level common.PPLevel, depth int, prefix string) string {
	s := fmt.Sprintf("%s%sRELATION[arity=%d][len=%d]", common.RepeatStr("\t", depth), prefix, rel.arity, rel.Len())
	if level == common.PPL0 {
		return s
	}
	rel.Loop(func(e *Entry) bool {
		s = fmt.Sprintf("%s\n%s%s", s, common.RepeatStr("\t", depth+1), e.String())
		return true
	})
	return s
}
