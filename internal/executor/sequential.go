package executor

import (
	"context"
	"fmt"

	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/graph"
)

// Sequential runs every node on the calling goroutine, one at a time.
type Sequential struct {
	*base
}

var _ Executor = (*Sequential)(nil)

// NewSequential creates a sequential executor for a compiled graph.
func NewSequential(g *graph.Graph, opts ...Option) (*Sequential, error) {
	b, err := newBase(g, opts)
	if err != nil {
		return nil, err
	}
	return &Sequential{base: b}, nil
}

// Run drives the graph to completion. The first node failure aborts the
// run and is returned wrapped with the node id.
func (s *Sequential) Run(ctx context.Context, opts Options) (Results, error) {
	if err := s.claim(); err != nil {
		return nil, err
	}
	g := s.graph
	logger := ctxlog.FromContext(ctx).With("runID", g.ID(), "executor", "sequential")
	logger.Info("Run started.", "nodes", g.Len())

	results := make(Results)
	for g.IsActive() {
		ready := g.GetReady()
		if len(ready) == 0 {
			return nil, fmt.Errorf("%w: %d of %d nodes finished", ErrStalled, g.Finished(), g.Len())
		}
		for _, n := range ready {
			if err := ctx.Err(); err != nil {
				logger.Warn("Run cancelled.", "error", err)
				return nil, err
			}
			id := n.ID()
			out, err := s.execute(ctx, 0, n, g.Received(id), s.argsFor(n, opts), opts.Kwargs)
			if err != nil {
				return nil, fmt.Errorf("node %q failed: %w", id, err)
			}
			if err := s.complete(results, id, out, opts.SaveAll); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("Run finished.", "results", len(results))
	return results, nil
}
