// Package node defines a single unit of work in a stream: a wrapped Go
// function, its identity, and the dependency edges to other nodes.
package node

import (
	"context"
	"sync"
)

// Node is a single vertex of a stream. It wraps one function and records
// its predecessors and outgoing edges.
type Node struct {
	// id is assigned once at creation and never changes.
	id string
	fn *invoker

	mu          sync.RWMutex
	displayName string
	// preds holds predecessor ids; predOrder keeps insertion order for
	// deterministic iteration.
	preds     map[string]struct{}
	predOrder []string
	succs     map[string]Edge
	succOrder []string
}

// New wraps fn in a node with the given id. fn must be a function or a
// Callable, see Func for the accepted signatures.
func New(id string, fn any) (*Node, error) {
	iv, err := newInvoker(fn)
	if err != nil {
		return nil, err
	}
	return &Node{
		id:          id,
		fn:          iv,
		displayName: FuncName(fn),
		preds:       make(map[string]struct{}),
		succs:       make(map[string]Edge),
	}, nil
}

// ID returns the node's unique, immutable identifier.
func (n *Node) ID() string {
	return n.id
}

// DisplayName returns the presentation name of the node.
func (n *Node) DisplayName() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.displayName
}

// SetDisplayName changes the presentation name. It has no effect on identity.
func (n *Node) SetDisplayName(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.displayName = name
}

// Predecessors returns the ids of the nodes this node depends on, in the
// order the edges were added.
func (n *Node) Predecessors() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.predOrder))
	copy(out, n.predOrder)
	return out
}

// NumPredecessors returns the number of distinct predecessors.
func (n *Node) NumPredecessors() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.predOrder)
}

// HasPredecessor reports whether id is a direct predecessor of n.
func (n *Node) HasPredecessor(id string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.preds[id]
	return ok
}

// Successors returns the outgoing edges of the node in insertion order.
func (n *Node) Successors() []Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Edge, 0, len(n.succOrder))
	for _, id := range n.succOrder {
		out = append(out, n.succs[id])
	}
	return out
}

// Edge returns the outgoing edge to the node with the given id.
func (n *Node) Edge(to string) (Edge, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	e, ok := n.succs[to]
	return e, ok
}

// Precede adds plain edges from n to every target.
func (n *Node) Precede(targets ...*Node) {
	for _, t := range targets {
		Link(n, t, false)
	}
}

// PipeTo adds pipe edges from n to every target, so each target receives
// n's result as a positional argument.
func (n *Node) PipeTo(targets ...*Node) {
	for _, t := range targets {
		Link(n, t, true)
	}
}

// Succeed adds plain edges from every source to n.
func (n *Node) Succeed(sources ...*Node) {
	for _, s := range sources {
		Link(s, n, false)
	}
}

// PipeFrom adds pipe edges from every source to n.
func (n *Node) PipeFrom(sources ...*Node) {
	for _, s := range sources {
		Link(s, n, true)
	}
}

// Run invokes the wrapped function. Values received over pipe edges come
// first, in delivery order, followed by args.
func (n *Node) Run(ctx context.Context, received, args []any, kwargs Kwargs) (any, error) {
	all := make([]any, 0, len(received)+len(args))
	all = append(all, received...)
	all = append(all, args...)
	return n.fn.call(ctx, all, kwargs)
}

// String returns the node id.
func (n *Node) String() string {
	return n.id
}
