package stream

import (
	"errors"
	"strings"
)

var (
	// ErrCycle is matched by every CycleError.
	ErrCycle = errors.New("cycle detected")
	// ErrUnknownNode is returned when an edge or a mandatory node refers to
	// a node that is not registered in the builder.
	ErrUnknownNode = errors.New("node is not registered in this stream")
)

// CycleError reports a dependency cycle found while constructing a graph.
// Path starts and ends with the same node id.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "cycle detected: " + strings.Join(e.Path, " -> ")
}

// Unwrap lets errors.Is match ErrCycle.
func (e *CycleError) Unwrap() error {
	return ErrCycle
}
