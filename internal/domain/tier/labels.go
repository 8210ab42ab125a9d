package tier

import "fmt"

// DefaultLabels are the tier labels, best first.
var DefaultLabels = []string{"S+", "S", "A", "B", "C", "D"}

// DefaultClasses is the number of classes for DefaultLabels.
const DefaultClasses = 6

// ValidateLabels checks that labels has exactly numClasses entries.
func ValidateLabels(labels []string, numClasses int) error {
	if numClasses <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidClassCount, numClasses)
	}
	if len(labels) != numClasses {
		return fmt.Errorf("%w: %d labels for %d classes", ErrLabelMismatch, len(labels), numClasses)
	}
	return nil
}

// Of returns the label of the first break the score reaches. Scores below
// every break, or beyond the label list, get the worst label.
func Of(score float64, breaks []float64, labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	for i, b := range breaks {
		if score >= b {
			if i < len(labels) {
				return labels[i]
			}
			break
		}
	}
	return labels[len(labels)-1]
}
