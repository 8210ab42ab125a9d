package tier

import "errors"

// Sentinel errors for this package.
var (
	ErrInvalidClassCount = errors.New("number of classes must be positive")
	ErrLabelMismatch     = errors.New("tier labels do not match class count")
	ErrNonFiniteScore    = errors.New("score is NaN or infinite")

	// ErrDegenerateDistribution marks a distribution whose scores are all
	// equal. Classification still succeeds; every score gets the top tier.
	ErrDegenerateDistribution = errors.New("all scores are identical")
)
