package battle

import (
	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/internal/domain/typechart"
)

// MoveResult is one move evaluated for one attacker and defender set.
type MoveResult struct {
	Move           model.Move `json:"move"`
	Damage         int        `json:"damage"`
	DPS            float64    `json:"dps"`
	EPS            float64    `json:"eps"`
	STAB           bool       `json:"stab"`
	WeatherBoosted bool       `json:"weatherBoosted"`
	Effectiveness  float64    `json:"effectiveness"`
}

// Moveset is the best fast/charged pair and its cycle metrics.
type Moveset struct {
	Fast    MoveResult `json:"fast"`
	Charged MoveResult `json:"charged"`
	DPS     float64    `json:"dps"`
	TDO     float64    `json:"tdo"`
	EDPS    float64    `json:"edps"`
}

// BestMoveset evaluates every fast/charged pair and returns the one with
// the highest cycle DPS. The first pair in input order wins ties. When
// either list is empty the result is nil with ErrInsufficientData.
func (c *Calculator) BestMoveset(e model.Entity, fast, charged []model.Move, defenders []typechart.Type) (*Moveset, error) {
	s, err := c.stats(e)
	if err != nil {
		return nil, err
	}
	if len(fast) == 0 || len(charged) == 0 {
		return nil, ErrInsufficientData
	}
	for _, m := range fast {
		if err := ValidateMove(m); err != nil {
			return nil, err
		}
	}
	for _, m := range charged {
		if err := ValidateMove(m); err != nil {
			return nil, err
		}
	}

	// Each move is evaluated once; pairs only combine the cached results.
	fr := make([]MoveResult, len(fast))
	for i, m := range fast {
		fr[i] = c.evaluate(s, e, m, defenders)
	}
	cr := make([]MoveResult, len(charged))
	for i, m := range charged {
		cr[i] = c.evaluate(s, e, m, defenders)
	}

	var best *Moveset
	for _, f := range fr {
		for _, ch := range cr {
			dps := CycleDPS(f.DPS, f.EPS, ch.DPS, ch.EPS)
			if best != nil && dps <= best.DPS {
				continue
			}
			best = &Moveset{Fast: f, Charged: ch, DPS: dps}
		}
	}

	best.TDO = c.tdo(s, best.DPS)
	best.EDPS = c.EDPS(best.DPS, best.TDO)
	return best, nil
}
