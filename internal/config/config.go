// Package config defines the service configuration and how it is loaded.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabaseURL selects the PostgreSQL store when set; otherwise the
	// in-memory store is used.
	DatabaseURL string `koanf:"database_url"`

	// EventQueueSize bounds the in-memory ingestion queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many event ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// BoardConcurrency bounds parallel composite computations.
	BoardConcurrency int `koanf:"board_concurrency"`

	// MaxLeaderboardLimit caps GET /api/v1/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// HalfDayWeight is how much a half day counts toward attendance
	// percentage, in [0,1].
	HalfDayWeight float64 `koanf:"half_day_weight"`

	// StrictCatalog fails composites whose events reference unknown KPIs.
	StrictCatalog bool `koanf:"strict_catalog"`

	// RankTieBreak orders equal leaderboard values: stable or staff_id.
	RankTieBreak string `koanf:"rank_tie_break"`

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// SeedDemoData fills the in-memory store with a synthetic data set.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		EventQueueSize:      10_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          50_000,
		BoardConcurrency:    8,
		MaxLeaderboardLimit: 500,
		HalfDayWeight:       1.0,
		RankTieBreak:        "stable",
		CORSOrigins:         []string{"*"},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.EventQueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.BoardConcurrency <= 0:
		return fmt.Errorf("%w: board_concurrency must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.HalfDayWeight < 0 || c.HalfDayWeight > 1:
		return fmt.Errorf("%w: half_day_weight %v outside [0,1]", ErrInvalidConfig, c.HalfDayWeight)
	case c.RankTieBreak != "stable" && c.RankTieBreak != "staff_id":
		return fmt.Errorf("%w: rank_tie_break %q must be stable or staff_id", ErrInvalidConfig, c.RankTieBreak)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
