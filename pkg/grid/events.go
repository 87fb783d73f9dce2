package grid

import (
	"fmt"
	"pivot/pkg/iface"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	queue "github.com/yireyun/go-queue"
)

type EventType int8

const (
	EventReset EventType = iota
	EventRowsInserted
	EventColumnsInserted
	EventLayoutChanged
	EventDataChanged
)

var EventTypeNames = map[EventType]string{
	EventReset:           "Reset",
	EventRowsInserted:    "RowsInserted",
	EventColumnsInserted: "ColumnsInserted",
	EventLayoutChanged:   "LayoutChanged",
	EventDataChanged:     "DataChanged",
}

func (t EventType) String() string { return EventTypeNames[t] }

// Event tells a viewport what to repaint. First and Last are inclusive data
// indices for inserts. Rect is in grid coordinates for data changes.
type Event struct {
	Type        EventType
	First, Last int
	Rect        iface.Rect
}

func (e Event) String() string {
	switch e.Type {
	case EventRowsInserted, EventColumnsInserted:
		return fmt.Sprintf("%s[%d,%d]", e.Type, e.First, e.Last)
	case EventDataChanged:
		return fmt.Sprintf("%s%s", e.Type, e.Rect)
	}
	return e.Type.String()
}

func insertEvent(axis iface.Axis, first, last int) Event {
	typ := EventRowsInserted
	if axis == iface.AxisColumns {
		typ = EventColumnsInserted
	}
	return Event{Type: typ, First: first, Last: last}
}

// eventRing warns once per overflow episode. An episode ends with the next
// successful push.
type eventRing struct {
	q          *queue.EsQueue
	overflowed atomic.Bool
	dropped    atomic.Uint64
}

func newEventRing(size uint32) *eventRing {
	return &eventRing{q: queue.NewQueue(size)}
}

func (r *eventRing) push(e Event) {
	if ok, _ := r.q.Put(e); ok {
		r.overflowed.Store(false)
		return
	}
	r.dropped.Add(1)
	if r.overflowed.CompareAndSwap(false, true) {
		logrus.Warnf("event queue full, dropping events from %s", e)
		return
	}
	logrus.Debugf("event queue full, dropped %s", e)
}

func (r *eventRing) pop() (Event, bool) {
	v, ok, _ := r.q.Get()
	if !ok {
		return Event{}, false
	}
	return v.(Event), true
}

// PollEvent removes and returns the oldest pending event.
func (p *Projector) PollEvent() (Event, bool) {
	return p.events.pop()
}

func (p *Projector) PendingEvents() int {
	return int(p.events.q.Quantity())
}

// DroppedEvents counts events lost to a full queue.
func (p *Projector) DroppedEvents() uint64 {
	return p.events.dropped.Load()
}
