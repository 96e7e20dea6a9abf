package repository

import "errors"

// Sentinel kinds for submission store errors.
var (
	ErrNotFound          = errors.New("submission not found")
	ErrConflict          = errors.New("submission id already exists")
	ErrDuplicateKey      = errors.New("idempotency key already stored")
	ErrUnsupportedDriver = errors.New("unsupported store driver")
)
