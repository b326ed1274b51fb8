package inmemorystore

import (
	"context"
	"sync"

	"github.com/vk/dagstream/internal/node"
	"github.com/vk/dagstream/internal/nodestore"
)

// Store is an in-memory nodestore.Store. Each kind of state lives in its own
// sync.Map, keyed by node id.
type Store struct {
	states  sync.Map // node id -> node.Status
	outputs sync.Map // node id -> any
	errors  sync.Map // node id -> error
}

var _ nodestore.Store = (*Store)(nil)

// New creates a new, empty in-memory node state store.
func New() *Store {
	return &Store{}
}

// SetStatus updates the execution status of a specific node.
func (s *Store) SetStatus(_ context.Context, id string, status node.Status) error {
	s.states.Store(id, status)
	return nil
}

// GetStatus retrieves the execution status of a specific node.
// If a status has not been set, it returns StatusPending.
func (s *Store) GetStatus(_ context.Context, id string) (node.Status, error) {
	status, ok := s.states.Load(id)
	if !ok {
		return node.StatusPending, nil
	}
	return status.(node.Status), nil
}

// SetOutput records the successful output of a node.
func (s *Store) SetOutput(_ context.Context, id string, output any) error {
	s.outputs.Store(id, output)
	return nil
}

// GetOutput retrieves the recorded output of a completed node.
func (s *Store) GetOutput(_ context.Context, id string) (any, error) {
	output, ok := s.outputs.Load(id)
	if !ok {
		return nil, nil
	}
	return output, nil
}

// SetError records the failure error of a node.
func (s *Store) SetError(_ context.Context, id string, nodeErr error) error {
	s.errors.Store(id, nodeErr)
	return nil
}

// GetError retrieves the recorded error of a failed node.
func (s *Store) GetError(_ context.Context, id string) (error, error) {
	err, ok := s.errors.Load(id)
	if !ok {
		return nil, nil
	}
	return err.(error), nil
}

// Snapshot returns the status of every node that has one.
func (s *Store) Snapshot() map[string]node.Status {
	out := make(map[string]node.Status)
	s.states.Range(func(k, v any) bool {
		out[k.(string)] = v.(node.Status)
		return true
	})
	return out
}
