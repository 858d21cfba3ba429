package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/dfsim/internal/builder"
	"github.com/specialistvlad/dfsim/internal/config"
	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/trace"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	sim     *builder.Simulation
	emitter *trace.Emitter
}

// NewApp is the constructor for the main application. It loads the
// simulation description and assembles the simulation with its own isolated
// logger. Configuration errors are fatal and panic.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load all configuration into the format-agnostic model first.
	model, err := loader.Load(ctx, appConfig.GridPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	reporters := trace.Fanout{trace.LogReporter{}}
	var emitter *trace.Emitter
	if appConfig.TraceURL != "" {
		emitter, err = trace.Dial(ctx, trace.Options{
			URL:       appConfig.TraceURL,
			Namespace: appConfig.TraceNamespace,
			Event:     appConfig.TraceEvent,
		})
		if err != nil {
			panic(fmt.Errorf("failed to connect trace stream: %w", err))
		}
		reporters = append(reporters, emitter)
	}

	sim, err := builder.Build(ctx, model, reporters)
	if err != nil {
		if emitter != nil {
			_ = emitter.Close()
		}
		panic(fmt.Errorf("failed to build simulation: %w", err))
	}
	logger.Debug("Simulation assembled.", "units", len(sim.Units), "memories", len(sim.Memories))

	return &App{
		outW:    outW,
		logger:  logger,
		config:  appConfig,
		sim:     sim,
		emitter: emitter,
	}
}

// Simulation returns the assembled simulation. This is primarily for testing.
func (a *App) Simulation() *builder.Simulation {
	return a.sim
}
