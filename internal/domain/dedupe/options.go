package dedupe

// Option configures the in-memory tracker.
type Option func(*inMemoryTracker)

// WithMaxSize bounds the number of remembered keys.
// If maxSize > 0 the oldest claim is evicted first.
// If maxSize <= 0 the tracker is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(t *inMemoryTracker) {
		t.maxSize = maxSize
	}
}
