package repository

import (
	"errors"
	"fmt"

	"github.com/okian/raidtier/internal/domain/battle"
)

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrUnknownFormat = errors.New("unknown dataset format")
	ErrNoDataset     = errors.New("no dataset loaded")
	ErrStoreClosed   = errors.New("store closed")
)

// ValidationError reports a record rejected at the repository boundary.
// It matches battle.ErrValidation.
type ValidationError struct {
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record %q: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("record %q: %s: %s", e.ID, e.Field, e.Reason)
}

// Unwrap makes the error match battle.ErrValidation.
func (e *ValidationError) Unwrap() error { return battle.ErrValidation }
