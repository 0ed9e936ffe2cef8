// Package dedupe tracks score event ids so a retried submission is
// ingested at most once.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// DefaultCapacity is the number of ids remembered when no option is given.
const DefaultCapacity = 50000

// Deduper records seen event ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if it was not. The check and the insert happen atomically.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a submission rejected downstream (for example
	// by a full queue) can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// memoryDeduper remembers ids in insertion order. When bounded, the oldest
// id is forgotten first.
type memoryDeduper struct {
	mu       sync.Mutex
	index    map[string]*list.Element
	order    *list.List
	capacity int
}

// NewInMemoryDeduper creates a deduper. A capacity of zero or less keeps
// every id.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &memoryDeduper{
		capacity: DefaultCapacity,
		index:    make(map[string]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *memoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.index[id]; ok {
		return true
	}
	if d.capacity > 0 && d.order.Len() >= d.capacity {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.index, oldest.Value.(string))
	}
	d.index[id] = d.order.PushBack(id)
	return false
}

func (d *memoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.index[id]; ok {
		d.order.Remove(el)
		delete(d.index, id)
	}
}

func (d *memoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
