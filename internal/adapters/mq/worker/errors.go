package worker

import "errors"

// ErrShutdownTimeout is returned when the worker does not stop in time.
var ErrShutdownTimeout = errors.New("worker shutdown timed out")
