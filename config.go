package taskflow

import (
	"os"

	yaml "github.com/goccy/go-yaml"
	"github.com/pkg/errors"

	"github.com/Y-Gwork/taskflow/internal/logging"
)

// Config mirrors the scheduler section of a host's YAML configuration.
type Config struct {
	Workers     int    `yaml:"workers"`      // worker goroutines; 0 routes everything to the main queue
	StealFactor int    `yaml:"steal_factor"` // probe-window scale, 10 by default
	LogLevel    string `yaml:"log_level"`    // debug, info, warn, error
	LogFormat   string `yaml:"log_format"`   // text or json
}

// DefaultConfig returns the worker count and steal factor New would use
// without options, with info-level text logging. New itself discards all
// log output unless it is given a logger.
func DefaultConfig() Config {
	return Config{
		Workers:     defaultWorkers(),
		StealFactor: defaultStealFactor,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// LoadConfig reads YAML and overrides defaults; an empty path yields the
// defaults only.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}

	// sanity clamps
	if cfg.Workers < 0 {
		cfg.Workers = 0
	}
	if cfg.StealFactor < 1 {
		cfg.StealFactor = defaultStealFactor
	}

	return cfg, nil
}

// NewFromConfig builds a system from a configuration. Explicit options are
// applied after the configuration and take precedence.
func NewFromConfig(cfg Config, options ...Option) *TaskSystem {
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	opts := append([]Option{
		WithWorkers(cfg.Workers),
		WithStealFactor(cfg.StealFactor),
		WithLogger(logger),
	}, options...)

	return New(opts...)
}
