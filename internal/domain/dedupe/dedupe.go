// Package dedupe tracks submission idempotency keys so that a survey form
// posted twice is stored once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker maps idempotency keys to the submission stored for them.
type Tracker interface {
	// Claim records key -> id unless key is already known. It returns the
	// previously stored id and true for a repeat, or ("", false) when the
	// claim was recorded.
	Claim(ctx context.Context, key, id string) (string, bool)

	// Release forgets key, e.g. when storing the claimed submission failed.
	Release(ctx context.Context, key string)

	Size() int64
}

// entry is a node of the insertion-ordered list used for eviction.
type entry struct {
	key, id    string
	prev, next *entry
}

// inMemoryTracker keeps keys in a map plus a doubly linked list ordered by
// insertion. In bounded mode the oldest claim is evicted first.
type inMemoryTracker struct {
	mu      sync.Mutex
	byKey   map[string]*entry
	newest  *entry
	oldest  *entry
	maxSize int // 0 or negative = unbounded
	size    atomic.Int64
}

// NewInMemory creates an in-memory tracker.
func NewInMemory(opts ...Option) Tracker {
	t := &inMemoryTracker{maxSize: 50_000}
	for _, opt := range opts {
		opt(t)
	}
	t.byKey = make(map[string]*entry)
	return t
}

func (t *inMemoryTracker) Claim(_ context.Context, key, id string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.byKey[key]; ok {
		return e.id, true
	}
	if t.maxSize > 0 && len(t.byKey) >= t.maxSize {
		t.unlink(t.oldest)
	}

	e := &entry{key: key, id: id, next: t.newest}
	if t.newest != nil {
		t.newest.prev = e
	}
	t.newest = e
	if t.oldest == nil {
		t.oldest = e
	}
	t.byKey[key] = e
	t.size.Add(1)
	return "", false
}

func (t *inMemoryTracker) Release(_ context.Context, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.byKey[key]; ok {
		t.unlink(e)
	}
}

// unlink removes e from the list and the map. Caller holds t.mu.
func (t *inMemoryTracker) unlink(e *entry) {
	if e == nil {
		return
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		t.newest = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		t.oldest = e.prev
	}
	e.prev, e.next = nil, nil
	delete(t.byKey, e.key)
	t.size.Add(-1)
}

func (t *inMemoryTracker) Size() int64 {
	return t.size.Load()
}
