// Package tier partitions score distributions with Jenks natural breaks
// and maps scores onto ordered tier labels.
package tier

import (
	"fmt"
	"math"
	"sort"
)

// Classification is the outcome of one Jenks run.
type Classification struct {
	// Breaks holds one lower bound per class, best class first.
	Breaks []float64 `json:"breaks"`
	// Degenerate is set when every score was identical.
	Degenerate bool `json:"degenerate"`
}

// Classify partitions scores into at most numClasses contiguous classes
// that minimize total within-class variance. Breaks are descending; each
// is the smallest score of its class. With no more scores than classes,
// each score is its own class. The result depends only on the multiset of
// scores, not their order.
func Classify(scores []float64, numClasses int) (Classification, error) {
	if numClasses <= 0 {
		return Classification{}, fmt.Errorf("%w: %d", ErrInvalidClassCount, numClasses)
	}
	for _, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return Classification{}, ErrNonFiniteScore
		}
	}
	if len(scores) == 0 {
		return Classification{}, nil
	}

	sorted := append([]float64(nil), scores...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	c := Classification{Degenerate: sorted[0] == sorted[len(sorted)-1]}
	if len(sorted) <= numClasses {
		c.Breaks = sorted
		return c, nil
	}
	c.Breaks = jenks(sorted, numClasses)
	return c, nil
}

// jenks runs the optimal partitioning program over x, sorted descending,
// with len(x) > k. Matrices are indexed [1..n][1..k]; row and column zero
// are unused.
func jenks(x []float64, k int) []float64 {
	n := len(x)
	lower := newMatrix[int](n+1, k+1)
	variance := newMatrix[float64](n+1, k+1)

	for l := 1; l <= n; l++ {
		for j := 1; j <= k; j++ {
			variance[l][j] = math.Inf(1)
		}
	}
	lower[1][1] = 1
	variance[1][1] = 0

	for l := 2; l <= n; l++ {
		var sum, sumSq, w float64
		for m := 1; m <= l; m++ {
			// The candidate last class spans x[first-1 .. l-1].
			first := l - m + 1
			v := x[first-1]
			sum += v
			sumSq += v * v
			w++
			ssd := sumSq - sum*sum/w
			if ssd < 0 {
				ssd = 0
			}

			prev := first - 1
			if prev == 0 {
				continue
			}
			for j := 2; j <= k && j <= l; j++ {
				base := variance[prev][j-1]
				if math.IsInf(base, 1) {
					continue
				}
				if cand := ssd + base; cand <= variance[l][j] {
					lower[l][j] = first
					variance[l][j] = cand
				}
			}
		}
		lower[l][1] = 1
		variance[l][1] = sumSq - sum*sum/w
	}

	breaks := make([]float64, k)
	end := n
	for j := k; j >= 1; j-- {
		breaks[j-1] = x[end-1]
		end = lower[end][j] - 1
	}
	return breaks
}

// newMatrix allocates a rows x cols matrix backed by one contiguous slice.
func newMatrix[T int | float64](rows, cols int) [][]T {
	backing := make([]T, rows*cols)
	m := make([][]T, rows)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols]
	}
	return m
}
