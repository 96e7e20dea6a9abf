package catalog

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrUnknownDomain  = errors.New("unknown domain")
	ErrLoadCatalog    = errors.New("load catalog failed")
)
