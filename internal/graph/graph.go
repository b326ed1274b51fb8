package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/node"
)

var (
	// ErrUnknownNode is returned for ids that are not part of the graph.
	ErrUnknownNode = errors.New("node is not part of the graph")
	// ErrNotRunnable is returned when marking a node done that is not ready.
	ErrNotRunnable = errors.New("node is not ready")
)

// Graph is a compiled, executable view over a set of nodes. It owns the
// readiness state of one run and the values received over pipe edges.
//
// A Graph is not safe for concurrent use; executors drive it from a single
// goroutine. The zero value is an uncompiled graph.
type Graph struct {
	id       string
	compiled bool

	order    []string
	nodes    map[string]*node.Node
	succs    map[string][]node.Edge
	preds    map[string]int
	states   map[string]*node.State
	received map[string][]any

	ready    []*node.Node
	finished int
}

// Compile builds a graph over exactly the given nodes. The in-graph edges
// are copied, so wiring added to the nodes afterwards does not affect the
// graph. Edges to nodes outside the set are dropped.
func Compile(ctx context.Context, nodes []*node.Node) *Graph {
	g := &Graph{
		id:       uuid.New().String(),
		compiled: true,
		order:    make([]string, 0, len(nodes)),
		nodes:    make(map[string]*node.Node, len(nodes)),
		succs:    make(map[string][]node.Edge, len(nodes)),
		preds:    make(map[string]int, len(nodes)),
		states:   make(map[string]*node.State, len(nodes)),
		received: make(map[string][]any, len(nodes)),
	}
	for _, n := range nodes {
		if _, ok := g.nodes[n.ID()]; ok {
			continue
		}
		g.order = append(g.order, n.ID())
		g.nodes[n.ID()] = n
	}

	for _, id := range g.order {
		for _, e := range g.nodes[id].Successors() {
			if _, ok := g.nodes[e.Target()]; ok {
				g.succs[id] = append(g.succs[id], e)
				g.preds[e.Target()]++
			}
		}
	}
	for _, id := range g.order {
		count := g.preds[id]
		g.states[id] = node.NewState(count)
		if count == 0 {
			g.ready = append(g.ready, g.nodes[id])
		}
	}

	ctxlog.FromContext(ctx).Debug("Graph compiled.", "graphID", g.id, "nodes", len(g.order), "roots", len(g.ready))
	return g
}

// ID returns the unique id of this compiled run.
func (g *Graph) ID() string { return g.id }

// IsCompiled reports whether g was produced by Compile.
func (g *Graph) IsCompiled() bool { return g != nil && g.compiled }

// IsActive reports whether some node has not been marked done yet.
func (g *Graph) IsActive() bool {
	return g.IsCompiled() && g.finished < len(g.order)
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.order) }

// Finished returns the number of nodes marked done.
func (g *Graph) Finished() int { return g.finished }

// GetReady drains the ready queue.
func (g *Graph) GetReady() []*node.Node {
	ready := g.ready
	g.ready = nil
	return ready
}

// Done marks each node as completed and forwards its in-graph successors.
// Successors whose last predecessor completed are queued as ready.
func (g *Graph) Done(ids ...string) error {
	if !g.IsCompiled() {
		return node.ErrNotReady
	}
	for _, id := range ids {
		st, ok := g.states[id]
		if !ok {
			return fmt.Errorf("done %q: %w", id, ErrUnknownNode)
		}
		ready, _ := st.IsReady()
		if !ready {
			return fmt.Errorf("done %q (%s): %w", id, st, ErrNotRunnable)
		}
		if err := st.Forward(); err != nil {
			return fmt.Errorf("done %q: %w", id, err)
		}
		g.finished++

		for _, e := range g.succs[id] {
			succ := g.states[e.Target()]
			if err := succ.Forward(); err != nil {
				return fmt.Errorf("forward %q -> %q: %w", id, e.Target(), err)
			}
			if ready, _ := succ.IsReady(); ready {
				g.ready = append(g.ready, g.nodes[e.Target()])
			}
		}
	}
	return nil
}

// Send delivers value along every in-graph pipe edge leaving id.
func (g *Graph) Send(id string, value any) error {
	if !g.IsCompiled() {
		return node.ErrNotReady
	}
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("send %q: %w", id, ErrUnknownNode)
	}
	for _, e := range g.succs[id] {
		if !e.IsPipe() {
			continue
		}
		g.received[e.Target()] = append(g.received[e.Target()], value)
	}
	return nil
}

// Received returns the values delivered to id so far, in delivery order.
func (g *Graph) Received(id string) []any {
	vals := g.received[id]
	out := make([]any, len(vals))
	copy(out, vals)
	return out
}

// CheckLast reports whether id has no successors inside the graph.
func (g *Graph) CheckLast(id string) bool {
	_, ok := g.nodes[id]
	return ok && len(g.succs[id]) == 0
}

// IsRoot reports whether id has no predecessors inside the graph.
func (g *Graph) IsRoot(id string) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}
	return g.preds[id] == 0
}

// Successors returns the edges leaving id inside the graph, as they were
// when the graph was compiled.
func (g *Graph) Successors(id string) []node.Edge {
	return append([]node.Edge(nil), g.succs[id]...)
}

// State returns the readiness state of id.
func (g *Graph) State(id string) (*node.State, bool) {
	st, ok := g.states[id]
	return st, ok
}

// Contains reports whether id is part of the graph.
func (g *Graph) Contains(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*node.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns the graph's nodes in compile order.
func (g *Graph) Nodes() []*node.Node {
	out := make([]*node.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}
