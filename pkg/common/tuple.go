package common

import (
	"fmt"
	"strings"
)

// DimID identifies one dimension of a relation key.
type DimID int64

// MeasureDimID is the reserved pseudo-dimension whose values name measures
// (parameters) rather than entities.
const MeasureDimID DimID = -1

// Value is an opaque dimension value identifier.
type Value uint64

// Component is one position of a key tuple. An unresolved component stands
// for a value that does not exist yet and never equals a resolved one.
type Component struct {
	value    Value
	resolved bool
}

func Resolved(v Value) Component { return Component{value: v, resolved: true} }
func Unresolved() Component      { return Component{} }

func (c Component) Value() (Value, bool) { return c.value, c.resolved }
func (c Component) IsResolved() bool     { return c.resolved }

func (c Component) String() string {
	if !c.resolved {
		return "?"
	}
	return fmt.Sprintf("%d", c.value)
}

type Tuple []Component

func NewTuple(vals ...Value) Tuple {
	t := make(Tuple, len(vals))
	for i, v := range vals {
		t[i] = Resolved(v)
	}
	return t
}

// UnresolvedTuple returns a placeholder tuple of the given arity.
func UnresolvedTuple(n int) Tuple {
	return make(Tuple, n)
}

func (t Tuple) Equal(o Tuple) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// IsResolved reports whether no component is a placeholder.
func (t Tuple) IsResolved() bool {
	for _, c := range t {
		if !c.resolved {
			return false
		}
	}
	return true
}

// Gather projects t onto the given source positions.
func (t Tuple) Gather(positions []int) Tuple {
	out := make(Tuple, len(positions))
	for i, pos := range positions {
		out[i] = t[pos]
	}
	return out
}

// GatherEqual reports whether t projected onto positions equals o, without
// allocating the projection.
func (t Tuple) GatherEqual(positions []int, o Tuple) bool {
	if len(positions) != len(o) {
		return false
	}
	for i, pos := range positions {
		if t[pos] != o[i] {
			return false
		}
	}
	return true
}

func (t Tuple) Concat(others ...Tuple) Tuple {
	n := len(t)
	for _, o := range others {
		n += len(o)
	}
	out := make(Tuple, 0, n)
	out = append(out, t...)
	for _, o := range others {
		out = append(out, o...)
	}
	return out
}

func (t Tuple) Clone() Tuple {
	if t == nil {
		return nil
	}
	out := make(Tuple, len(t))
	copy(out, t)
	return out
}

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, c := range t {
		parts[i] = c.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ","))
}

// IsBlank reports whether an edited value means "no value".
func IsBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []byte:
		return len(strings.TrimSpace(string(val))) == 0
	}
	return false
}
