package app

import (
	"context"
	"fmt"

	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/executor"
	"github.com/vk/dagstream/internal/graph"
	"github.com/vk/dagstream/internal/graphfile"
	"github.com/vk/dagstream/internal/inmemorystore"
	"github.com/vk/dagstream/internal/mermaid"
	"github.com/vk/dagstream/internal/observer"
	"github.com/vk/dagstream/modules/socketio"
)

// Run loads the graph file, compiles it and executes it. The result map is
// written to the output as a single JSON line.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	def, err := graphfile.NewLoader().Load(ctx, a.config.GraphPath)
	if err != nil {
		return fmt.Errorf("failed to load graph definition: %w", err)
	}
	builder, mandatory, err := def.Assemble(ctx, a.registry)
	if err != nil {
		return fmt.Errorf("failed to assemble stream: %w", err)
	}
	g, err := builder.Construct(ctx, mandatory...)
	if err != nil {
		return fmt.Errorf("failed to construct graph: %w", err)
	}
	a.logger.Info("Graph compiled.", "runID", g.ID(), "nodes", g.Len(), "registered", builder.Len())

	if a.config.DiagramPath != "" {
		if err := mermaid.WriteFile(g, a.config.DiagramPath); err != nil {
			return err
		}
		a.logger.Info("Diagram written.", "path", a.config.DiagramPath)
	}

	obs := observer.Observer(observer.Logger{})
	if a.config.EventsURL != "" {
		pub, err := socketio.Dial(ctx, socketio.Config{
			URL:       a.config.EventsURL,
			Namespace: a.config.EventsNamespace,
		})
		if err != nil {
			return fmt.Errorf("failed to connect event publisher: %w", err)
		}
		defer func() {
			if cerr := pub.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		obs = observer.Multi(obs, pub)
	}

	opts := def.Run.Options()
	if a.config.SaveAll {
		opts.SaveAll = true
	}
	workers := a.config.Workers
	if workers == 0 {
		workers = def.Run.Workers
	}

	ex, err := a.newExecutor(g, workers, obs)
	if err != nil {
		return err
	}

	if g.Len() == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
	}
	a.logger.Info("Starting execution...", "workers", workers)
	results, err := ex.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("Execution finished.", "results", len(results))

	data, err := encodeResults(results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if _, err := fmt.Fprintf(a.outW, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) newExecutor(g *graph.Graph, workers int, obs observer.Observer) (executor.Executor, error) {
	opts := []executor.Option{
		executor.WithObserver(obs),
		executor.WithStore(inmemorystore.New()),
	}
	if workers > 0 {
		return executor.NewPool(g, workers, opts...)
	}
	return executor.NewSequential(g, opts...)
}
