// Package config loads the YAML configuration file that seeds
// cmd/walksat's flag defaults, adapted from the chaos-utils example's
// pkg/config (itself the pack's only YAML-config precedent): defaults
// first, then an optional file overlaid on top via yaml.Unmarshal into
// the already-populated struct.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of the YAML document.
type Config struct {
	Search   SearchConfig   `yaml:"search"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Logging  LoggingConfig  `yaml:"logging"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// SearchConfig mirrors internal/search.Config's tunables.
type SearchConfig struct {
	Seed        int64         `yaml:"seed"`
	MaxTime     time.Duration `yaml:"max_time"`
	RandVarProb float64       `yaml:"rand_var_prob"`
	MaxFlips    int           `yaml:"max_flips"`
}

// DispatchConfig controls worker-pool shape.
type DispatchConfig struct {
	Workers         int `yaml:"workers"`
	TrialsPerWorker int `yaml:"trials_per_worker"`
}

// LoggingConfig controls the zerolog setup.
type LoggingConfig struct {
	Level  string `yaml:"level"` // debug, info, warn, error
	Pretty bool   `yaml:"pretty"`
}

// HTTPConfig controls cmd/walksat's serve subcommand.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			MaxTime:     5 * time.Second,
			RandVarProb: 0.3,
		},
		Dispatch: DispatchConfig{
			Workers:         4,
			TrialsPerWorker: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a YAML file at path and overlays it on Default(). An
// empty path returns the defaults unchanged, matching the teacher's
// "missing file is not an error" leniency.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
