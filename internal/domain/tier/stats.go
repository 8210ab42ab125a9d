package tier

import "github.com/okian/raidtier/internal/domain/types"

// LabelStats summarizes one tier.
type LabelStats struct {
	Label        string  `json:"label"`
	Count        int     `json:"count"`
	AverageScore float64 `json:"averageScore"`
}

// Stats summarizes a ranking view by tier.
type Stats struct {
	Tiers        []LabelStats `json:"tiers"`
	Total        int          `json:"total"`
	AverageScore float64      `json:"averageScore"`
}

// Statistics counts entries per label, in label order, with per-label and
// overall average scores. Entries with unknown labels count only in totals.
func Statistics(entries []types.Entry, labels []string) Stats {
	st := Stats{Tiers: make([]LabelStats, len(labels)), Total: len(entries)}
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		st.Tiers[i].Label = l
		index[l] = i
	}

	var total float64
	for _, e := range entries {
		total += e.Score
		if i, ok := index[e.Tier]; ok {
			st.Tiers[i].Count++
			st.Tiers[i].AverageScore += e.Score
		}
	}
	for i := range st.Tiers {
		if st.Tiers[i].Count > 0 {
			st.Tiers[i].AverageScore /= float64(st.Tiers[i].Count)
		}
	}
	if len(entries) > 0 {
		st.AverageScore = total / float64(len(entries))
	}
	return st
}
