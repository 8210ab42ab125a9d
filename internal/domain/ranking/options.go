package ranking

import (
	"github.com/okian/raidtier/internal/domain/battle"
	"github.com/okian/raidtier/internal/domain/tier"
	"github.com/okian/raidtier/pkg/logger"
	"github.com/okian/raidtier/pkg/metrics"
)

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCalculator sets the performance calculator.
func WithCalculator(c *battle.Calculator) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.calc = c
		}
	}
}

// WithClasses sets the number of tiers and their labels, best first.
func WithClasses(numClasses int, labels []string) Option {
	return func(a *Aggregator) {
		a.numClasses = numClasses
		a.labels = append([]string(nil), labels...)
	}
}

// WithRunner sets the per-entity fan-out strategy.
func WithRunner(r Runner) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.runner = r
		}
	}
}

// WithMemo enables view memoization.
func WithMemo(m Memo) Option {
	return func(a *Aggregator) { a.memo = m }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(a *Aggregator) {
		if m != nil {
			a.metrics = m
		}
	}
}

func defaults() *Aggregator {
	return &Aggregator{
		calc:       battle.NewCalculator(),
		numClasses: tier.DefaultClasses,
		labels:     append([]string(nil), tier.DefaultLabels...),
		runner:     Sequential{},
		log:        logger.Nop(),
		metrics:    metrics.Default(),
	}
}
