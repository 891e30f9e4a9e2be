package app

import (
	"errors"
	"fmt"

	"github.com/vk/trainconf/internal/loader"
)

// Output formats for the finished configuration.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// DefaultRoot is the schema used when none is named.
const DefaultRoot = "TrainingConfig"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath  string        // file to load
	Format      loader.Format // FormatAuto detects from the extension
	SchemaPaths []string      // HCL manifests, files or directories
	Root        string        // schema the file is loaded against

	// WorldSize overrides detection when positive.
	WorldSize    int
	AllowUnknown bool
	Output       string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.WorldSize < 0 {
		return nil, fmt.Errorf("world size must not be negative, got %d", cfg.WorldSize)
	}
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}
	switch cfg.Output {
	case "":
		cfg.Output = OutputText
	case OutputText, OutputJSON, OutputYAML:
	default:
		return nil, fmt.Errorf("invalid output %q: must be 'text', 'json' or 'yaml'", cfg.Output)
	}
	return &cfg, nil
}
