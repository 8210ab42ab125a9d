// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"time"
)

// Chart scale names accepted by ChartScale.
const (
	ChartScaleGo   = "go"
	ChartScaleMain = "main"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: json or text.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// NumClasses is the number of tiers produced per ranking view.
	NumClasses int `koanf:"num_classes"`

	// TierLabels are ordered best to worst; len must equal NumClasses.
	TierLabels []string `koanf:"tier_labels"`

	// RelobbySeconds is the time cost of fainting used by eDPS.
	RelobbySeconds float64 `koanf:"relobby_seconds"`

	// EnemyDPS is the reference incoming damage rate used by TDO.
	EnemyDPS float64 `koanf:"enemy_dps"`

	// ReferenceDefense is the defender's defense stat used in raid damage.
	ReferenceDefense float64 `koanf:"reference_defense"`

	// ChartScale selects the effectiveness multipliers: go or main.
	ChartScale string `koanf:"chart_scale"`

	// Weather applies a weather boost to every computation; empty means none.
	Weather string `koanf:"weather"`

	// WorkerCount and WorkerQueueSize size the per-entity fan-out pool.
	WorkerCount     int `koanf:"worker_count"`
	WorkerQueueSize int `koanf:"worker_queue_size"`

	// SubstituteMissingStats fills missing base stats with defaults and
	// flags the entity as estimated instead of rejecting it.
	SubstituteMissingStats bool `koanf:"substitute_missing_stats"`

	// DatasetPath points at a JSON or YAML dataset file.
	DatasetPath string `koanf:"dataset_path"`

	// SQLitePath points at a SQLite database holding entities and moves.
	SQLitePath string `koanf:"sqlite_path"`

	// CacheSize and CacheTTL bound the in-process view cache.
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	// RedisAddr switches the view cache to Redis when set.
	RedisAddr string `koanf:"redis_addr"`

	// MetricsEnabled toggles Prometheus recording.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "json",
		Addr:             ":9080",
		NumClasses:       6,
		TierLabels:       []string{"S+", "S", "A", "B", "C", "D"},
		RelobbySeconds:   20,
		EnemyDPS:         15,
		ReferenceDefense: 180,
		ChartScale:       ChartScaleGo,
		WorkerCount:      4,
		WorkerQueueSize:  256,
		CacheSize:        128,
		CacheTTL:         10 * time.Minute,
		MetricsEnabled:   true,
	}
}

// Validate checks values that would make rankings meaningless.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.NumClasses <= 0:
		return fmt.Errorf("%w: num_classes must be positive, got %d", ErrInvalidConfig, c.NumClasses)
	case len(c.TierLabels) != c.NumClasses:
		return fmt.Errorf("%w: %d tier_labels for %d classes", ErrInvalidConfig, len(c.TierLabels), c.NumClasses)
	case c.RelobbySeconds < 0:
		return fmt.Errorf("%w: relobby_seconds must not be negative", ErrInvalidConfig)
	case c.EnemyDPS <= 0:
		return fmt.Errorf("%w: enemy_dps must be positive", ErrInvalidConfig)
	case c.ReferenceDefense <= 0:
		return fmt.Errorf("%w: reference_defense must be positive", ErrInvalidConfig)
	case c.ChartScale != ChartScaleGo && c.ChartScale != ChartScaleMain:
		return fmt.Errorf("%w: unknown chart_scale %q", ErrInvalidConfig, c.ChartScale)
	}
	return nil
}
