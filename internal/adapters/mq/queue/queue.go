// Package queue carries submission events from the service to background
// workers.
//
// The in-memory implementation is a bounded channel. Enqueue never blocks:
// when the buffer is full the event is dropped and counted, since every
// consumer recomputes from the store anyway.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/flowfit/pkg/metrics"
)

const defaultCapacity = 1024

// Event announces that a submission was stored.
type Event struct {
	SubmissionID string
	StoredAt     time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event. It returns false when the queue is full or
	// closed.
	Enqueue(ctx context.Context, e Event) bool

	// Dequeue returns the channel events are delivered on. It is closed
	// once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Event

	Len() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with the given options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds an event to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		metrics.RecordQueueDropped()
		return false
	}
	select {
	case q.events <- e:
		metrics.UpdateQueueSize(len(q.events))
		return true
	default:
		metrics.RecordQueueDropped()
		return false
	}
}

// Dequeue returns the event channel. Only one consumer should call it.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Event {
	return q.events
}

// Len returns the number of buffered events.
func (q *InMemoryQueue) Len() int {
	n := len(q.events)
	metrics.UpdateQueueSize(n)
	return n
}

// Close stops accepting events. Buffered events are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
