package worker

import (
	"time"

	"github.com/okian/flowfit/pkg/logger"
)

// Option applies a configuration option to the TeamWorker.
type Option func(*TeamWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *TeamWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *TeamWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRefreshTimeout bounds a single refresh.
func WithRefreshTimeout(d time.Duration) Option {
	return func(w *TeamWorker) {
		if d > 0 {
			w.timeout = d
		}
	}
}
