package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string // hcl file or directory

	LogFormat string
	LogLevel  string
	// Workers selects the pool executor when positive. Zero defers to the
	// graph file's run block, which defaults to the sequential executor.
	Workers int
	SaveAll bool

	DiagramPath     string
	EventsURL       string
	EventsNamespace string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.EventsNamespace != "" && cfg.EventsURL == "" {
		return nil, errors.New("events namespace requires an events URL")
	}
	return &cfg, nil
}
