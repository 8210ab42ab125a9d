package ranking

import "errors"

// Sentinel errors for this package.
var (
	ErrEmptyPopulation = errors.New("no rankable entities")
	ErrUnknownEntity   = errors.New("unknown entity")
	ErrNoDefenders     = errors.New("at least one defending type is required")
)
