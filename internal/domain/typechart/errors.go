package typechart

import "errors"

// Sentinel errors for this package.
var (
	ErrUnknownType  = errors.New("unknown type")
	ErrUnknownScale = errors.New("unknown chart scale")
)
