package battle

import (
	"github.com/okian/raidtier/internal/domain/typechart"
	"github.com/okian/raidtier/pkg/logger"
)

// Reference constants used when no option overrides them.
const (
	DefaultEnemyDPS         = 15.0
	DefaultRelobbySeconds   = 20.0
	DefaultReferenceDefense = 180.0
	DefaultShadowAttack     = 1.2
	DefaultShadowDefense    = 5.0 / 6.0

	// tdoDefenseReference normalizes the attacker's defense in TDO.
	tdoDefenseReference = 200.0
)

// Option configures a Calculator.
type Option func(*Calculator)

// WithChart sets the effectiveness chart.
func WithChart(c *typechart.Chart) Option {
	return func(calc *Calculator) {
		if c != nil {
			calc.chart = c
		}
	}
}

// WithEnemyDPS sets the reference incoming damage rate used by TDO.
func WithEnemyDPS(v float64) Option {
	return func(c *Calculator) {
		if v > 0 {
			c.enemyDPS = v
		}
	}
}

// WithRelobby sets the eDPS relobby time in seconds.
func WithRelobby(seconds float64) Option {
	return func(c *Calculator) {
		if seconds >= 0 {
			c.relobby = seconds
		}
	}
}

// WithReferenceDefense sets the defender defense stat used for damage.
func WithReferenceDefense(v float64) Option {
	return func(c *Calculator) {
		if v > 0 {
			c.referenceDefense = v
		}
	}
}

// WithWeather applies a weather boost to every computation.
func WithWeather(w Weather) Option {
	return func(c *Calculator) { c.weather = w }
}

// WithShadowMultipliers overrides the attack and defense scaling of shadow
// variants.
func WithShadowMultipliers(attack, defense float64) Option {
	return func(c *Calculator) {
		if attack > 0 && defense > 0 {
			c.shadowAttack = attack
			c.shadowDefense = defense
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.log = l
		}
	}
}
