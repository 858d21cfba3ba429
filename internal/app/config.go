package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string // hcl file or directory

	LogFormat string
	LogLevel  string

	// Until bounds virtual time; zero runs until the simulation is idle.
	Until time.Duration

	// Trace stream; disabled when TraceURL is empty.
	TraceURL       string
	TraceNamespace string
	TraceEvent     string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.Until < 0 {
		return nil, errors.New("Until cannot be negative")
	}
	return &cfg, nil
}
