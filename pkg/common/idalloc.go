package common

import "sync/atomic"

type IdAlloctor struct {
	id uint64
}

func NewIdAlloctor(from uint64) *IdAlloctor {
	if from == 0 {
		panic("should not be 0")
	}
	return &IdAlloctor{id: from - 1}
}

func (alloc *IdAlloctor) Alloc() uint64 {
	return atomic.AddUint64(&alloc.id, 1)
}

func (alloc *IdAlloctor) Get() uint64 {
	return atomic.LoadUint64(&alloc.id)
}

func (alloc *IdAlloctor) SetStart(start uint64) {
	atomic.StoreUint64(&alloc.id, start)
}
