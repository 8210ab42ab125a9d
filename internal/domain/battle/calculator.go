package battle

import (
	"context"

	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/internal/domain/typechart"
	"github.com/okian/raidtier/pkg/logger"
)

// Calculator evaluates movesets and derives DPS, TDO and eDPS. It holds
// only configuration and is safe for concurrent use.
type Calculator struct {
	chart            *typechart.Chart
	enemyDPS         float64
	relobby          float64
	referenceDefense float64
	weather          Weather
	shadowAttack     float64
	shadowDefense    float64
	log              logger.Logger
}

// NewCalculator builds a Calculator with reference defaults.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		chart:            typechart.Default(),
		enemyDPS:         DefaultEnemyDPS,
		relobby:          DefaultRelobbySeconds,
		referenceDefense: DefaultReferenceDefense,
		shadowAttack:     DefaultShadowAttack,
		shadowDefense:    DefaultShadowDefense,
		log:              logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chart returns the effectiveness chart in use.
func (c *Calculator) Chart() *typechart.Chart { return c.chart }

// Relobby returns the relobby constant in seconds.
func (c *Calculator) Relobby() float64 { return c.relobby }

// EnemyDPS returns the reference incoming damage rate.
func (c *Calculator) EnemyDPS() float64 { return c.enemyDPS }

// Weather returns the configured weather.
func (c *Calculator) Weather() Weather { return c.weather }

// Settings are the parameters that change a Calculator's output.
type Settings struct {
	Scale            string  `json:"scale"`
	EnemyDPS         float64 `json:"enemyDps"`
	Relobby          float64 `json:"relobby"`
	ReferenceDefense float64 `json:"referenceDefense"`
	Weather          Weather `json:"weather"`
	ShadowAttack     float64 `json:"shadowAttack"`
	ShadowDefense    float64 `json:"shadowDefense"`
}

// Settings returns the calculator's parameters.
func (c *Calculator) Settings() Settings {
	return Settings{
		Scale:            c.chart.Scale().Name,
		EnemyDPS:         c.enemyDPS,
		Relobby:          c.relobby,
		ReferenceDefense: c.referenceDefense,
		Weather:          c.weather,
		ShadowAttack:     c.shadowAttack,
		ShadowDefense:    c.shadowDefense,
	}
}

// combatStats are the effective stats after variant scaling.
type combatStats struct {
	attack, defense, stamina float64
}

// ValidateEntity rejects entities whose stats cannot be used in ratios.
func ValidateEntity(e model.Entity) error {
	switch {
	case e.Stats.Attack <= 0:
		return &ValidationError{ID: e.SpeciesID, Field: "attack", Value: e.Stats.Attack, Reason: "must be positive"}
	case e.Stats.Defense <= 0:
		return &ValidationError{ID: e.SpeciesID, Field: "defense", Value: e.Stats.Defense, Reason: "must be positive"}
	case e.Stats.Stamina <= 0:
		return &ValidationError{ID: e.SpeciesID, Field: "stamina", Value: e.Stats.Stamina, Reason: "must be positive"}
	case len(e.Types) == 0 || len(e.Types) > 2:
		return &ValidationError{ID: e.SpeciesID, Field: "types", Value: len(e.Types), Reason: "must have one or two types"}
	}
	for _, t := range e.Types {
		if !t.Valid() {
			return &ValidationError{ID: e.SpeciesID, Field: "types", Value: t, Reason: "unknown type"}
		}
	}
	return nil
}

// ValidateMove rejects moves the damage model cannot evaluate.
func ValidateMove(m model.Move) error {
	switch {
	case m.Power < 0:
		return &ValidationError{ID: m.ID, Field: "power", Value: m.Power, Reason: "must not be negative"}
	case m.CooldownMs <= 0:
		return &ValidationError{ID: m.ID, Field: "cooldown", Value: m.CooldownMs, Reason: "must be positive"}
	case !m.Type.Valid():
		return &ValidationError{ID: m.ID, Field: "type", Value: m.Type, Reason: "unknown type"}
	}
	return nil
}

func (c *Calculator) stats(e model.Entity) (combatStats, error) {
	if err := ValidateEntity(e); err != nil {
		return combatStats{}, err
	}
	s := combatStats{
		attack:  float64(e.Stats.Attack),
		defense: float64(e.Stats.Defense),
		stamina: float64(e.Stats.Stamina),
	}
	if e.Tags.Shadow {
		s.attack *= c.shadowAttack
		s.defense *= c.shadowDefense
	}
	return s, nil
}

// EvaluateMove computes one move's damage and rates for an entity against
// a defender type set.
func (c *Calculator) EvaluateMove(e model.Entity, m model.Move, defenders []typechart.Type) (MoveResult, error) {
	s, err := c.stats(e)
	if err != nil {
		return MoveResult{}, err
	}
	if err := ValidateMove(m); err != nil {
		return MoveResult{}, err
	}
	return c.evaluate(s, e, m, defenders), nil
}

func (c *Calculator) evaluate(s combatStats, e model.Entity, m model.Move, defenders []typechart.Type) MoveResult {
	eff := c.chart.Effectiveness(m.Type, defenders...)
	stab := e.HasType(m.Type)
	weather := c.weather.Boosts(m.Type)
	dmg := Damage(s.attack, c.referenceDefense, m.Power, eff, stab, weather)

	energy := float64(m.Energy)
	if m.Category() == model.Charged && energy < 0 {
		energy = -energy
	}

	return MoveResult{
		Move:           m,
		Damage:         dmg,
		DPS:            PerSecond(float64(dmg), m.CooldownMs),
		EPS:            PerSecond(energy, m.CooldownMs),
		STAB:           stab,
		WeatherBoosted: weather,
		Effectiveness:  eff,
	}
}

// TDO returns the damage an entity deals before fainting at the reference
// incoming rate: dps * hp / (enemyDPS * (200/def)).
func (c *Calculator) TDO(e model.Entity, dps float64) (float64, error) {
	s, err := c.stats(e)
	if err != nil {
		return 0, err
	}
	return c.tdo(s, dps), nil
}

func (c *Calculator) tdo(s combatStats, dps float64) float64 {
	return dps * s.stamina / (c.enemyDPS * (tdoDefenseReference / s.defense))
}

// EDPS blends dps with tdo against the relobby time:
// dps * tdo / (tdo + relobby).
func (c *Calculator) EDPS(dps, tdo float64) float64 {
	denom := tdo + c.relobby
	if denom <= 0 {
		return 0
	}
	return dps * tdo / denom
}

// Performance evaluates the entity's best moveset against defenders and
// derives every aggregate metric from it.
func (c *Calculator) Performance(ctx context.Context, e model.Entity, fast, charged []model.Move, defenders []typechart.Type) (*Performance, error) {
	best, err := c.BestMoveset(e, fast, charged, defenders)
	if err != nil {
		c.log.Debug(ctx, "performance unavailable",
			logger.String("speciesId", e.SpeciesID),
			logger.Error(err))
		return nil, err
	}

	p := &Performance{
		SpeciesID: e.SpeciesID,
		Defenders: append([]typechart.Type(nil), defenders...),
		DPS:       best.DPS,
		EPS:       best.Fast.EPS,
		TDO:       best.TDO,
		EDPS:      best.EDPS,
		Best:      best,
		Estimated: e.Estimated,
	}
	if energy := best.Charged.Move.Energy; energy != 0 {
		if energy < 0 {
			energy = -energy
		}
		p.DPE = float64(best.Charged.Damage) / float64(energy)
	}
	return p, nil
}
