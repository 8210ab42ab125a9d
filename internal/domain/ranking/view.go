package ranking

import (
	"github.com/okian/raidtier/internal/domain/tier"
	"github.com/okian/raidtier/internal/domain/types"
)

// Kind names a ranking view.
type Kind string

// Ranking views.
const (
	Overall  Kind = "overall"
	ByType   Kind = "by_type"
	Counters Kind = "counters"
	PVP      Kind = "pvp"
)

// View is one ranking over one population. Tiers are relative to this
// view's score distribution only.
type View struct {
	RunID      string          `json:"runId"`
	Kind       Kind            `json:"view"`
	Param      string          `json:"param,omitempty"`
	Count      int             `json:"count"`
	Degenerate bool            `json:"degenerate"`
	Breaks     []float64       `json:"breakpoints"`
	Labels     []string        `json:"labels"`
	Entries    []types.Entry   `json:"entries"`
	Skipped    []types.Skipped `json:"skipped"`
	Summary    tier.Stats      `json:"summary"`
	Cached     bool            `json:"cached"`
}

// Entry returns the entry for a species id.
func (v *View) Entry(speciesID string) (types.Entry, bool) {
	for _, e := range v.Entries {
		if e.SpeciesID == speciesID {
			return e, true
		}
	}
	return types.Entry{}, false
}

// Percentile maps a 1-based rank onto 0-100, best rank first.
func Percentile(rank, count int) int {
	if count <= 0 || rank <= 0 {
		return 0
	}
	p := int(roundHalfUp((1 - float64(rank-1)/float64(count)) * 100))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
