package config

import (
	"github.com/kleereach/reachsched/pkg/searcher"
	"github.com/kleereach/reachsched/pkg/telemetry"
)

// Config is the complete configuration of a reachsched process.
type Config struct {
	// Searcher configures state selection.
	Searcher searcher.Config `yaml:"searcher"`

	// Exploration configures the driving loop.
	Exploration ExplorationConfig `yaml:"exploration"`

	// Store configures run persistence.
	Store StoreConfig `yaml:"store"`

	// Telemetry configures logging, tracing and metrics.
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ExplorationConfig bounds an exploration run.
type ExplorationConfig struct {
	// MaxSteps is the number of steps after which a run is cut off.
	MaxSteps int `yaml:"max_steps" validate:"min=1"`

	// StopAtTarget ends the run as soon as a state reaches the target.
	StopAtTarget bool `yaml:"stop_at_target"`
}

// StoreConfig configures the SQLite run store.
type StoreConfig struct {
	// Path is the database file. Empty disables recording.
	Path string `yaml:"path"`

	// BusyTimeoutMS is how long a writer waits on a locked database.
	BusyTimeoutMS int `yaml:"busy_timeout_ms" validate:"min=0"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Searcher: searcher.Config{
			Strategy: searcher.StrategyAStar,
		},
		Exploration: ExplorationConfig{
			MaxSteps:     10000,
			StopAtTarget: true,
		},
		Store: StoreConfig{
			BusyTimeoutMS: 5000,
		},
		Telemetry: *telemetry.DefaultConfig(),
	}
}
