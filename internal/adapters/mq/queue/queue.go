// Package queue carries advice requests from HTTP handlers to the workers.
// It is a bounded in-memory channel; a full queue rejects instead of blocking.
package queue

import (
	"context"
	"sync"

	"github.com/inourx99/Englishcompition/internal/domain/model"
	"github.com/inourx99/Englishcompition/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 256
)

// Request is the payload type flowing through the queue.
type Request = model.AdviceRequest

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a request to the queue.
	// Returns false if the queue is full or closed and the request was not enqueued.
	Enqueue(ctx context.Context, r Request) bool

	// Dequeue returns the channel requests are delivered on.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Request

	// Len returns the current number of queued requests.
	Len(ctx context.Context) int

	// Close stops accepting requests. Requests already queued can still be drained.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	requests chan Request
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.requests = make(chan Request, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a request to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Request) bool { //nolint:gocritic // hugeParam: Request is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.requests <- r:
		metrics.UpdateQueueSize(len(q.requests))
		return true
	default:
		metrics.RecordQueueEnqueueError()
		return false
	}
}

// Dequeue returns the receive side of the queue. Every caller shares the same
// channel, so each request is delivered to exactly one consumer.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Request {
	return q.requests
}

// Len returns the current number of queued requests.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.requests)
	metrics.UpdateQueueSize(size)
	return size
}

// Capacity returns the maximum number of queued requests.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close stops the queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.requests)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
