// Package dedupe tracks idempotency keys for award requests.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10_000

// Deduper records seen idempotency keys so a retried request is applied at most once.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a request that failed after recording can be retried.
	Unrecord(ctx context.Context, key string)

	Size() int
}

// fifoDeduper keeps at most maxSize keys and evicts the oldest first.
// maxSize <= 0 keeps every key.
type fifoDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front is the oldest key
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &fifoDeduper{
		seen:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *fifoDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
	}
	d.seen[key] = d.order.PushBack(key)
	return false
}

func (d *fifoDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
	}
}

func (d *fifoDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
