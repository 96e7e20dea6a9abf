package interchange

import (
	"errors"
)

// Sentinel error kinds for this package.
var (
	ErrMalformed         = errors.New("malformed input")
	ErrUnsupportedFormat = errors.New("unsupported format")
)
