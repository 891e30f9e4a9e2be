package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vk/trainconf/internal/config"
	"github.com/vk/trainconf/internal/ctxlog"
	"github.com/vk/trainconf/internal/dist"
	"github.com/vk/trainconf/internal/loader"
)

// report is what the json and yaml outputs contain.
type report struct {
	Schema      string         `json:"schema" yaml:"schema"`
	WorldSize   int            `json:"world_size" yaml:"world_size"`
	Fingerprint string         `json:"fingerprint" yaml:"fingerprint"`
	Config      map[string]any `json:"config" yaml:"config"`
}

// Run loads, resolves and validates the configuration file and prints it.
func (a *App) Run(ctx context.Context) error {
	logger := a.logger.With("run_id", uuid.Must(uuid.NewV7()).String())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.", "config", a.config.ConfigPath)

	var opts []config.NewOption
	if a.config.AllowUnknown {
		opts = append(opts, config.AllowUnknown())
	}
	c, err := loader.FromFile(ctx, a.schema, a.config.ConfigPath, a.config.Format, opts...)
	if err != nil {
		return err
	}

	rt, err := a.runtime(ctx)
	if err != nil {
		return err
	}
	if err := c.Validate(ctx, rt); err != nil {
		return fmt.Errorf("invalid configuration %s: %w", a.config.ConfigPath, err)
	}

	fingerprint, err := c.Fingerprint()
	if err != nil {
		return err
	}
	logger.Info("Configuration is valid.", "schema", a.schema.Name(), "world_size", config.WorldSize(rt), "fingerprint", fingerprint)

	return a.print(c, config.WorldSize(rt), fingerprint)
}

func (a *App) runtime(ctx context.Context) (config.Runtime, error) {
	if a.config.WorldSize > 0 {
		return dist.Static(a.config.WorldSize), nil
	}
	rt, err := dist.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to detect world size: %w", err)
	}
	return rt, nil
}

func (a *App) print(c *config.Config, worldSize int, fingerprint string) error {
	r := report{
		Schema:      a.schema.Name(),
		WorldSize:   worldSize,
		Fingerprint: fingerprint,
		Config:      c.ToDict(),
	}

	switch a.config.Output {
	case OutputJSON:
		enc := json.NewEncoder(a.outW)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case OutputYAML:
		enc := yaml.NewEncoder(a.outW)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintf(a.outW, "%s\nworld_size: %d\nfingerprint: %s\n", c.Render(0), worldSize, fingerprint)
		return err
	}
}
