// Package worker runs background consumers of submission events.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/flowfit/internal/adapters/mq/queue"
	"github.com/okian/flowfit/pkg/logger"
	"github.com/okian/flowfit/pkg/metrics"
)

const defaultRefreshTimeout = 10 * time.Second

// Refresher recomputes derived state from the whole submission store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context) error

// Refresh calls f.
func (f RefresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

// Queue defines how the worker receives events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Event
}

// Worker processes events until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is
	// called, or the queue is closed.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the current refresh.
	Shutdown(ctx context.Context) error
}

// TeamWorker refreshes the team analysis once per burst of submissions.
// Events already buffered when a refresh starts are folded into it.
type TeamWorker struct {
	queue     Queue
	refresher Refresher
	name      string
	timeout   time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewTeamWorker creates a worker that calls r for every burst of events.
func NewTeamWorker(q Queue, r Refresher, opts ...Option) *TeamWorker {
	w := &TeamWorker{
		queue:     q,
		refresher: r,
		name:      "team-worker",
		timeout:   defaultRefreshTimeout,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *TeamWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			folded, open := drain(events)
			w.process(ctx, e, folded)
			if !open {
				return
			}
		}
	}
}

// drain takes every event already buffered without blocking. open is false
// when the channel was closed while draining.
func drain(events <-chan queue.Event) (n int, open bool) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return n, false
			}
			n++
		default:
			return n, true
		}
	}
}

func (w *TeamWorker) process(ctx context.Context, e queue.Event, folded int) {
	start := time.Now()
	rctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	err := w.refresher.Refresh(rctx)
	metrics.RecordRefresh(float64(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		w.logger.Error(ctx, "team refresh failed",
			logger.String("submission", e.SubmissionID),
			logger.Error(err))
		return
	}
	w.logger.Debug(ctx, "team refreshed",
		logger.String("submission", e.SubmissionID),
		logger.Int("folded", folded),
		logger.String("lag", time.Since(e.StoredAt).String()))
}

// Shutdown gracefully stops the worker.
func (w *TeamWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}
}
