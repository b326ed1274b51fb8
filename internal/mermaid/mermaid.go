// Package mermaid renders a stream or a compiled graph as a Mermaid state
// diagram.
package mermaid

import (
	"fmt"
	"os"
	"strings"

	"github.com/vk/dagstream/internal/node"
)

// Drawable is the read-only view the renderer needs. Both stream.Builder
// and graph.Graph satisfy it.
type Drawable interface {
	Nodes() []*node.Node
	Contains(id string) bool
	Successors(id string) []node.Edge
}

const (
	direction = "LR"
	separator = "\n    "
)

// Render returns the diagram text. Each node becomes a state; nodes with no
// predecessors in d get an initial transition and nodes with no successors
// in d a final one. Pipe edges are labelled.
func Render(d Drawable) string {
	nodes := d.Nodes()
	lines := []string{"stateDiagram", "direction " + direction}

	succs := make(map[string][]node.Edge, len(nodes))
	indegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		for _, e := range d.Successors(n.ID()) {
			if d.Contains(e.Target()) {
				succs[n.ID()] = append(succs[n.ID()], e)
				indegree[e.Target()]++
			}
		}
	}

	states := make(map[string]string, len(nodes))
	for i, n := range nodes {
		state := fmt.Sprintf("state_%d", i)
		states[n.ID()] = state
		lines = append(lines, fmt.Sprintf(`state "%s" as %s`, escape(n.DisplayName()), state))
	}

	for _, n := range nodes {
		state := states[n.ID()]
		if indegree[n.ID()] == 0 {
			lines = append(lines, "[*] --> "+state)
		}

		edges := succs[n.ID()]
		if len(edges) == 0 {
			lines = append(lines, state+" --> [*]")
			continue
		}
		for _, e := range edges {
			line := state + " --> " + states[e.Target()]
			if e.IsPipe() {
				line += ": Pipe"
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, separator)
}

// WriteFile renders d and writes the diagram to path.
func WriteFile(d Drawable, path string) error {
	if err := os.WriteFile(path, []byte(Render(d)), 0o644); err != nil {
		return fmt.Errorf("failed to write diagram %s: %w", path, err)
	}
	return nil
}

// escape keeps display names from terminating the quoted state label.
func escape(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
