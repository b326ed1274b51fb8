// Package nodestore defines the interface for recording the execution state
// of nodes during a run.
//
// The store keeps mutable per-run state (status, outputs, errors) apart from
// the compiled graph, which only tracks readiness. Executors write to it as
// nodes move through their lifecycle:
//
//	Pending → Running → Completed (with output) OR Failed (with error)
//
// A store is created once per run and discarded afterwards.
package nodestore

import (
	"context"

	"github.com/vk/dagstream/internal/node"
)

// Store manages the execution state of nodes, keyed by node id.
//
// Implementations must be safe for concurrent use: pool workers report
// status while the driver records outputs.
type Store interface {
	// SetStatus updates the execution status of a node.
	SetStatus(ctx context.Context, id string, status node.Status) error

	// GetStatus returns the current status, or StatusPending if none was set.
	GetStatus(ctx context.Context, id string) (node.Status, error)

	// SetOutput records the result of a node that completed successfully.
	SetOutput(ctx context.Context, id string, output any) error

	// GetOutput returns the recorded result, or nil if there is none.
	GetOutput(ctx context.Context, id string) (any, error)

	// SetError records the failure of a node.
	SetError(ctx context.Context, id string, nodeErr error) error

	// GetError returns the recorded failure, or nil if the node did not fail.
	GetError(ctx context.Context, id string) (error, error)
}
