package battle

import (
	"errors"
	"fmt"
)

// Sentinel errors for this package.
var (
	ErrValidation       = errors.New("validation failed")
	ErrInsufficientData = errors.New("no usable fast/charged move pair")
)

// ValidationError reports an entity or move field the engine cannot use.
type ValidationError struct {
	ID     string
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", e.ID, e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
