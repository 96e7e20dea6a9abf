package seed

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid seed config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrUnexpected    = errors.New("unexpected response")
	ErrVerification  = errors.New("verification failed")
)
