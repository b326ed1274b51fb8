package executor

import (
	"context"
	"fmt"

	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/graph"
	"github.com/vk/dagstream/internal/node"
	"golang.org/x/sync/errgroup"
)

// message is what the driver sends to workers: either runTask or stopSignal.
type message interface {
	isMessage()
}

// runTask carries everything a worker needs to run one node.
type runTask struct {
	node     *node.Node
	received []any
	args     []any
	kwargs   node.Kwargs
}

// stopSignal tells a worker to exit.
type stopSignal struct{}

func (runTask) isMessage()    {}
func (stopSignal) isMessage() {}

type taskResult struct {
	id    string
	value any
	err   error
}

// Pool runs ready nodes on a fixed number of worker goroutines. Workers
// only run functions; the driving goroutine alone updates the graph.
type Pool struct {
	*base
	workers int
}

var _ Executor = (*Pool)(nil)

// NewPool creates a pool executor with the given number of workers.
func NewPool(g *graph.Graph, workers int, opts ...Option) (*Pool, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be > 0, got %d", ErrInvalidArgument, workers)
	}
	b, err := newBase(g, opts)
	if err != nil {
		return nil, err
	}
	return &Pool{base: b, workers: workers}, nil
}

// Workers returns the size of the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// Run drives the graph to completion. The first node failure cancels the
// run context, so queued tasks are skipped, and is returned wrapped with
// the node id. Workers are joined before Run returns.
func (p *Pool) Run(ctx context.Context, opts Options) (results Results, err error) {
	if err := p.claim(); err != nil {
		return nil, err
	}
	g := p.graph
	logger := ctxlog.FromContext(ctx).With("runID", g.ID(), "executor", "pool", "workers", p.workers)
	logger.Info("Run started.", "nodes", g.Len())

	// Every node is dispatched at most once and yields at most one result,
	// so neither channel ever blocks a sender.
	tasks := make(chan message, g.Len()+p.workers)
	done := make(chan taskResult, g.Len())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, egCtx := errgroup.WithContext(runCtx)
	for i := 1; i <= p.workers; i++ {
		workerID := i
		eg.Go(func() error {
			return p.work(egCtx, workerID, tasks, done)
		})
	}

	defer func() {
		if err != nil {
			cancel()
		}
		for i := 0; i < p.workers; i++ {
			tasks <- stopSignal{}
		}
		if werr := eg.Wait(); werr != nil {
			logger.Debug("Workers skipped tasks after cancellation.", "error", werr)
		}
		logger.Debug("All workers stopped.")
	}()

	results, err = p.drive(runCtx, opts, tasks, done)
	if err != nil {
		logger.Error("Run failed.", "error", err)
		return nil, err
	}
	logger.Info("Run finished.", "results", len(results))
	return results, nil
}

// drive dispatches ready nodes and applies results until the graph is done.
func (p *Pool) drive(ctx context.Context, opts Options, tasks chan<- message, done <-chan taskResult) (Results, error) {
	g := p.graph
	results := make(Results)
	inFlight := 0

	for g.IsActive() {
		for _, n := range g.GetReady() {
			tasks <- runTask{
				node:     n,
				received: g.Received(n.ID()),
				args:     p.argsFor(n, opts),
				kwargs:   opts.Kwargs,
			}
			inFlight++
		}
		if inFlight == 0 {
			return nil, fmt.Errorf("%w: %d of %d nodes finished", ErrStalled, g.Finished(), g.Len())
		}

		var batch []taskResult
		select {
		case r := <-done:
			batch = append(batch, r)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		// Apply everything that is already available before dispatching again.
	drain:
		for {
			select {
			case r := <-done:
				batch = append(batch, r)
			default:
				break drain
			}
		}

		for _, r := range batch {
			inFlight--
			if r.err != nil {
				return nil, fmt.Errorf("node %q failed: %w", r.id, r.err)
			}
			if err := p.complete(results, r.id, r.value, opts.SaveAll); err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

// work runs tasks until it receives a stop signal. Tasks picked up after
// the run was cancelled are reported as failed without running, and the
// cancellation error is returned once the worker stops.
func (p *Pool) work(ctx context.Context, workerID int, tasks <-chan message, done chan<- taskResult) error {
	logger := ctxlog.FromContext(ctx).With("workerID", workerID)
	logger.Debug("Worker started.")

	var skipped error
	for msg := range tasks {
		switch m := msg.(type) {
		case stopSignal:
			logger.Debug("Worker received stop signal.")
			return skipped
		case runTask:
			id := m.node.ID()
			if err := ctx.Err(); err != nil {
				logger.Debug("Skipping node, run cancelled.", "nodeID", id)
				skipped = err
				done <- taskResult{id: id, err: err}
				continue
			}
			logger.Debug("Worker picked up node for execution.", "nodeID", id)
			out, err := p.execute(ctx, workerID, m.node, m.received, m.args, m.kwargs)
			done <- taskResult{id: id, value: out, err: err}
		}
	}
	return skipped
}
