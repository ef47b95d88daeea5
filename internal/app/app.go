package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/dynaform/internal/config"
	"github.com/specialistvlad/dynaform/internal/ctxlog"
	"github.com/specialistvlad/dynaform/internal/ext"
	"github.com/specialistvlad/dynaform/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App with its own logger, writing logs to logW, and its own
// registry holding the built-in extensions, the given modules (the stock
// modules when none are given) and the loaded configuration. Configuration
// that cannot be loaded or does not validate is a fatal startup error and
// panics.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := ext.NewRegistry()
	reg.SetLogger(logger)
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Use(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	if len(cfg.ConfigPaths) > 0 {
		configs, err := loader.Load(ctx, cfg.ConfigPaths...)
		if err != nil {
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		for _, c := range configs {
			reg.RegisterConfig(c)
		}
		logger.Debug("Registry configuration loaded.", "sources", len(configs))
	}

	if err := reg.Validate(ctx); err != nil {
		// A mismatch between modules and configuration cannot be recovered.
		panic(err)
	}
	logger.Debug("Registry validation passed.", "types", len(reg.Types()))

	return &App{
		outW:     outW,
		logW:     logW,
		logger:   logger,
		registry: reg,
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
