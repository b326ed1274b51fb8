package stream

import (
	"fmt"

	"github.com/vk/dagstream/internal/node"
)

type visitState int

const (
	unvisited visitState = iota
	inProgress
	visited
)

// detectCyclesLocked runs a three-colour depth-first search over successor
// edges, restarting from every unvisited node so each node is expanded once.
func (b *Builder) detectCyclesLocked() error {
	state := make(map[string]visitState, len(b.order))
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visited:
			return nil
		case inProgress:
			// Back edge: the cycle is the stack suffix starting at id.
			start := len(stack) - 1
			for start > 0 && stack[start] != id {
				start--
			}
			path := append(append([]string(nil), stack[start:]...), id)
			return &CycleError{Path: path}
		}

		state[id] = inProgress
		stack = append(stack, id)
		for _, e := range b.nodes[id].Successors() {
			if err := visit(e.Target()); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = visited
		return nil
	}

	for _, id := range b.order {
		if state[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// closureLocked returns the mandatory nodes plus every transitive
// predecessor, in registration order. Successors are never pulled in.
func (b *Builder) closureLocked(mandatory []*node.Node) ([]*node.Node, error) {
	selected := make(map[string]struct{}, len(mandatory))
	queue := make([]string, 0, len(mandatory))
	for _, m := range mandatory {
		if m == nil {
			return nil, fmt.Errorf("mandatory node is nil: %w", ErrUnknownNode)
		}
		if registered, ok := b.nodes[m.ID()]; !ok || registered != m {
			return nil, fmt.Errorf("mandatory node %q: %w", m.ID(), ErrUnknownNode)
		}
		if _, ok := selected[m.ID()]; !ok {
			selected[m.ID()] = struct{}{}
			queue = append(queue, m.ID())
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, p := range b.nodes[id].Predecessors() {
			if _, ok := selected[p]; ok {
				continue
			}
			selected[p] = struct{}{}
			queue = append(queue, p)
		}
	}

	out := make([]*node.Node, 0, len(selected))
	for _, id := range b.order {
		if _, ok := selected[id]; ok {
			out = append(out, b.nodes[id])
		}
	}
	return out, nil
}
