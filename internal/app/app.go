package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/registry"
	"github.com/vk/dagstream/modules/arith"
	"github.com/vk/dagstream/modules/env_vars"
	"github.com/vk/dagstream/modules/http_request"
	prnt "github.com/vk/dagstream/modules/print"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
}

// NewApp is the constructor for the main application. Without modules the
// built-in catalog is registered. A registry that fails validation is a
// programming error and panics.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "functions", reg.Names())

	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
	}
}

// coreModules is the list of modules compiled into the binary.
func coreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&arith.Module{},
		&env_vars.Module{},
		&http_request.Module{},
		&prnt.Module{Out: outW},
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
