// Package stream registers functions as nodes and compiles them into
// executable graphs.
package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/graph"
	"github.com/vk/dagstream/internal/node"
)

// Builder holds the registered nodes of a stream. Edges are wired directly
// on the nodes it returns. A Builder is safe for concurrent use.
type Builder struct {
	mu    sync.RWMutex
	nodes map[string]*node.Node
	order []string
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{nodes: make(map[string]*node.Node)}
}

// Emplace registers one node per function and returns them in input order.
// Each id is derived from the function's name and made unique with a
// numeric suffix, so the same function registered twice yields two nodes.
func (b *Builder) Emplace(fns ...any) ([]*node.Node, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*node.Node, 0, len(fns))
	for i, fn := range fns {
		n, err := b.emplaceLocked(node.FuncName(fn), fn)
		if err != nil {
			return nil, fmt.Errorf("emplace function %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// EmplaceNamed registers fn under name, or under the first free suffixed
// variant of name.
func (b *Builder) EmplaceNamed(name string, fn any) (*node.Node, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.emplaceLocked(name, fn)
}

func (b *Builder) emplaceLocked(base string, fn any) (*node.Node, error) {
	id := node.NextID(func(id string) bool {
		_, ok := b.nodes[id]
		return ok
	}, base)
	n, err := node.New(id, fn)
	if err != nil {
		return nil, err
	}
	b.nodes[id] = n
	b.order = append(b.order, id)
	return n, nil
}

// Node returns the registered node with the given id.
func (b *Builder) Node(id string) (*node.Node, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, ok := b.nodes[id]
	return n, ok
}

// Contains reports whether a node with the given id is registered.
func (b *Builder) Contains(id string) bool {
	_, ok := b.Node(id)
	return ok
}

// Successors returns the current outgoing edges of id.
func (b *Builder) Successors(id string) []node.Edge {
	n, ok := b.Node(id)
	if !ok {
		return nil
	}
	return n.Successors()
}

// Nodes returns every registered node in registration order.
func (b *Builder) Nodes() []*node.Node {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*node.Node, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.nodes[id])
	}
	return out
}

// Len returns the number of registered nodes.
func (b *Builder) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// Construct checks the whole stream for cycles and compiles a graph. With
// no mandatory nodes the graph holds every registered node; otherwise it
// holds the mandatory nodes and all of their transitive predecessors.
func (b *Builder) Construct(ctx context.Context, mandatory ...*node.Node) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)

	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.validateEdgesLocked(); err != nil {
		return nil, err
	}
	if err := b.detectCyclesLocked(); err != nil {
		logger.Debug("Stream construction failed.", "error", err)
		return nil, err
	}

	var nodes []*node.Node
	if len(mandatory) == 0 {
		nodes = make([]*node.Node, 0, len(b.order))
		for _, id := range b.order {
			nodes = append(nodes, b.nodes[id])
		}
	} else {
		var err error
		nodes, err = b.closureLocked(mandatory)
		if err != nil {
			return nil, err
		}
	}
	logger.Debug("Stream constructed.", "registered", len(b.order), "selected", len(nodes), "mandatory", len(mandatory))
	return graph.Compile(ctx, nodes), nil
}

// validateEdgesLocked ensures every edge endpoint is registered here, so
// nodes from another builder cannot leak into a graph.
func (b *Builder) validateEdgesLocked() error {
	for _, id := range b.order {
		n := b.nodes[id]
		for _, e := range n.Successors() {
			if target, ok := b.nodes[e.Target()]; !ok || !target.HasPredecessor(id) {
				return fmt.Errorf("edge %q -> %q: %w", id, e.Target(), ErrUnknownNode)
			}
		}
		for _, p := range n.Predecessors() {
			if _, ok := b.nodes[p]; !ok {
				return fmt.Errorf("edge %q -> %q: %w", p, id, ErrUnknownNode)
			}
		}
	}
	return nil
}
