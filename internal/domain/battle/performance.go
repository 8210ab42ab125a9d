package battle

import (
	"math"

	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/internal/domain/typechart"
)

// Performance is the derived result for one entity against one defender
// type set. It is recomputed per query and never stored.
type Performance struct {
	SpeciesID string           `json:"speciesId"`
	Defenders []typechart.Type `json:"defenders"`
	DPS       float64          `json:"dps"`
	EPS       float64          `json:"eps"`
	DPE       float64          `json:"dpe"`
	TDO       float64          `json:"tdo"`
	EDPS      float64          `json:"edps"`
	Best      *Moveset         `json:"bestMoveset"`
	Estimated bool             `json:"estimated"`
}

// Unranked is the composite score of an entity with no qualifying league.
const Unranked = -1.0

// PVPResult is the composite of per-league scores.
type PVPResult struct {
	Composite  float64      `json:"composite"`
	Leagues    int          `json:"leagues"`
	BestLeague model.League `json:"bestLeague,omitempty"`
}

// Ranked reports whether at least one league qualified.
func (r PVPResult) Ranked() bool { return r.Leagues > 0 }

// PVPComposite averages the 0-100 league scores that are present. Scores
// that are not finite or fall outside 0-100 do not qualify. The best league
// is the highest scoring one; earlier leagues in canonical order win ties.
func PVPComposite(scores []model.LeagueScore) PVPResult {
	var (
		sum       float64
		n         int
		best      model.League
		bestScore = math.Inf(-1)
	)
	for _, league := range model.Leagues() {
		for _, s := range scores {
			if s.League != league || !qualifies(s.Score) {
				continue
			}
			sum += s.Score
			n++
			if s.Score > bestScore {
				bestScore = s.Score
				best = league
			}
			break
		}
	}
	if n == 0 {
		return PVPResult{Composite: Unranked}
	}
	return PVPResult{Composite: sum / float64(n), Leagues: n, BestLeague: best}
}

func qualifies(score float64) bool {
	return !math.IsNaN(score) && !math.IsInf(score, 0) && score >= 0 && score <= 100
}
