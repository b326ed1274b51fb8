// Package observer reports node lifecycle events of a run.
package observer

import (
	"context"
	"time"

	"github.com/vk/dagstream/internal/ctxlog"
)

// Event describes one node execution.
type Event struct {
	RunID       string
	NodeID      string
	DisplayName string
	// Worker is the pool worker that ran the node, 0 for sequential runs.
	Worker  int
	Elapsed time.Duration
	Err     error
}

// Observer receives node lifecycle events. Pool workers call it
// concurrently, so implementations must be safe for concurrent use.
type Observer interface {
	NodeStarted(ctx context.Context, ev Event)
	NodeFinished(ctx context.Context, ev Event)
}

// Nop ignores every event.
type Nop struct{}

func (Nop) NodeStarted(context.Context, Event)  {}
func (Nop) NodeFinished(context.Context, Event) {}

// Logger writes events to the logger carried by the context.
type Logger struct{}

// NodeStarted implements Observer.
func (Logger) NodeStarted(ctx context.Context, ev Event) {
	ctxlog.FromContext(ctx).Debug("Node started.",
		"runID", ev.RunID, "nodeID", ev.NodeID, "name", ev.DisplayName, "workerID", ev.Worker)
}

// NodeFinished implements Observer.
func (Logger) NodeFinished(ctx context.Context, ev Event) {
	logger := ctxlog.FromContext(ctx).With(
		"runID", ev.RunID, "nodeID", ev.NodeID, "name", ev.DisplayName, "workerID", ev.Worker, "elapsed", ev.Elapsed)
	if ev.Err != nil {
		logger.Error("Node failed.", "error", ev.Err)
		return
	}
	logger.Debug("Node finished.")
}

type multi []Observer

// Multi fans every event out to each observer in order.
func Multi(observers ...Observer) Observer {
	return multi(observers)
}

func (m multi) NodeStarted(ctx context.Context, ev Event) {
	for _, o := range m {
		o.NodeStarted(ctx, ev)
	}
}

func (m multi) NodeFinished(ctx context.Context, ev Event) {
	for _, o := range m {
		o.NodeFinished(ctx, ev)
	}
}
