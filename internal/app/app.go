package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/trainconf/internal/config"
	"github.com/vk/trainconf/internal/ctxlog"
	"github.com/vk/trainconf/internal/manifest"
	"github.com/vk/trainconf/internal/registry"
	"github.com/vk/trainconf/internal/training"
)

// coreModules is the list of modules compiled into the binary.
var coreModules = []registry.Module{
	training.Module{},
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
	schema   *config.Schema
}

// New builds an App. Results are written to outW and logs to logW. Manifests
// named in cfg are loaded here, so a broken schema fails before any
// configuration file is read.
func New(outW, logW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.NewWith(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	if len(cfg.SchemaPaths) > 0 {
		schemas, err := manifest.Load(ctx, reg, cfg.SchemaPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema manifests: %w", err)
		}
		for _, s := range schemas {
			reg.RegisterSchema(s)
		}
	}

	schema, ok := reg.Schema(cfg.Root)
	if !ok {
		return nil, fmt.Errorf("%w: unknown root schema %q, known schemas: %v", config.ErrDefinition, cfg.Root, reg.SchemaNames())
	}
	logger.Debug("Root schema selected.", "schema", schema.Name())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
		schema:   schema,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
