package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrNotStarted          = errors.New("service not started")
)
