// Package executor drives a compiled graph to completion, either on the
// calling goroutine or on a fixed pool of workers.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/graph"
	"github.com/vk/dagstream/internal/inmemorystore"
	"github.com/vk/dagstream/internal/node"
	"github.com/vk/dagstream/internal/nodestore"
	"github.com/vk/dagstream/internal/observer"
)

var (
	// ErrInvalidArgument is returned by the constructors for a nil or
	// uncompiled graph and for a non-positive worker count.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrGraphConsumed is returned when running a graph a second time.
	ErrGraphConsumed = errors.New("graph has already been executed")
	// ErrStalled is returned if the graph is still active but nothing is
	// ready or running.
	ErrStalled = errors.New("graph stalled")
)

// Options are the per-run inputs.
type Options struct {
	// FirstArgs are passed only to nodes without predecessors in the graph,
	// ahead of Args.
	FirstArgs []any
	// Args are passed to every node after its received values.
	Args []any
	// Kwargs are passed to every node that declares a node.Kwargs parameter.
	Kwargs node.Kwargs
	// SaveAll keeps every node's result instead of only terminal ones.
	SaveAll bool
}

// Results maps node ids to the values their functions returned.
type Results map[string]any

// Executor runs a compiled graph.
type Executor interface {
	Run(ctx context.Context, opts Options) (Results, error)
}

type config struct {
	observer observer.Observer
	store    nodestore.Store
}

// Option configures an executor.
type Option func(*config)

// WithObserver sets the observer notified about every node execution.
// The default logs through the context logger.
func WithObserver(o observer.Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}

// WithStore sets the store that records node status, output and error.
// The default is a fresh in-memory store.
func WithStore(s nodestore.Store) Option {
	return func(c *config) {
		c.store = s
	}
}

// base holds what both executors share.
type base struct {
	graph *graph.Graph
	cfg   config

	mu   sync.Mutex
	used bool
}

func newBase(g *graph.Graph, opts []Option) (*base, error) {
	if !g.IsCompiled() {
		return nil, fmt.Errorf("%w: graph is nil or not compiled", ErrInvalidArgument)
	}
	cfg := config{
		observer: observer.Logger{},
		store:    inmemorystore.New(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.observer == nil {
		cfg.observer = observer.Nop{}
	}
	if cfg.store == nil {
		cfg.store = inmemorystore.New()
	}
	return &base{graph: g, cfg: cfg}, nil
}

// Store returns the store the executor records node state into.
func (b *base) Store() nodestore.Store {
	return b.cfg.store
}

// claim marks the graph as owned by one run.
func (b *base) claim() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used || b.graph.Finished() > 0 {
		return ErrGraphConsumed
	}
	b.used = true
	return nil
}

// argsFor returns the positional arguments for n, without received values.
func (b *base) argsFor(n *node.Node, opts Options) []any {
	if len(opts.FirstArgs) == 0 || !b.graph.IsRoot(n.ID()) {
		return opts.Args
	}
	args := make([]any, 0, len(opts.FirstArgs)+len(opts.Args))
	args = append(args, opts.FirstArgs...)
	return append(args, opts.Args...)
}

// execute runs one node and records its lifecycle. It never touches the
// graph, so pool workers may call it.
func (b *base) execute(ctx context.Context, worker int, n *node.Node, received, args []any, kwargs node.Kwargs) (any, error) {
	id := n.ID()
	ev := observer.Event{
		RunID:       b.graph.ID(),
		NodeID:      id,
		DisplayName: n.DisplayName(),
		Worker:      worker,
	}
	b.setStatus(ctx, id, node.StatusRunning)
	b.cfg.observer.NodeStarted(ctx, ev)

	start := time.Now()
	out, err := n.Run(ctx, received, args, kwargs)
	ev.Elapsed = time.Since(start)
	ev.Err = err
	b.cfg.observer.NodeFinished(ctx, ev)

	if err != nil {
		b.setStatus(ctx, id, node.StatusFailed)
		if serr := b.cfg.store.SetError(ctx, id, err); serr != nil {
			ctxlog.FromContext(ctx).Warn("Failed to record node error.", "nodeID", id, "error", serr)
		}
		return nil, err
	}
	b.setStatus(ctx, id, node.StatusCompleted)
	if serr := b.cfg.store.SetOutput(ctx, id, out); serr != nil {
		ctxlog.FromContext(ctx).Warn("Failed to record node output.", "nodeID", id, "error", serr)
	}
	return out, nil
}

func (b *base) setStatus(ctx context.Context, id string, status node.Status) {
	if err := b.cfg.store.SetStatus(ctx, id, status); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to record node status.", "nodeID", id, "status", status, "error", err)
	}
}

// complete forwards a finished node's result through the graph and keeps
// it if it belongs in the results. Only the driving goroutine calls it.
func (b *base) complete(results Results, id string, value any, saveAll bool) error {
	if err := b.graph.Send(id, value); err != nil {
		return err
	}
	if err := b.graph.Done(id); err != nil {
		return err
	}
	if saveAll || b.graph.CheckLast(id) {
		results[id] = value
	}
	return nil
}
