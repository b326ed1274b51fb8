package node

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned when a readiness state is read before the
	// stream has been compiled into a graph.
	ErrNotReady = errors.New("state is not compiled")
	// ErrFinished is returned when forwarding a state that was already consumed.
	ErrFinished = errors.New("state is already finished")
)

// State counts the predecessors a node is still waiting on within one
// compiled graph. The zero value is not compiled.
type State struct {
	remaining int
	compiled  bool
}

// NewState returns a compiled state waiting on n predecessors.
func NewState(n int) *State {
	return &State{remaining: n, compiled: true}
}

// IsReady reports whether every predecessor has completed and the node has
// not run yet.
func (s *State) IsReady() (bool, error) {
	if !s.compiled {
		return false, ErrNotReady
	}
	return s.remaining == 0, nil
}

// IsFinished reports whether the node was ready and has since been consumed.
func (s *State) IsFinished() (bool, error) {
	if !s.compiled {
		return false, ErrNotReady
	}
	return s.remaining < 0, nil
}

// Remaining returns the number of outstanding predecessors.
func (s *State) Remaining() (int, error) {
	if !s.compiled {
		return 0, ErrNotReady
	}
	return s.remaining, nil
}

// Forward decrements the counter by one. Forwarding a ready state marks it
// finished.
func (s *State) Forward() error {
	if !s.compiled {
		return ErrNotReady
	}
	if s.remaining < 0 {
		return ErrFinished
	}
	s.remaining--
	return nil
}

// String implements fmt.Stringer.
func (s *State) String() string {
	switch {
	case !s.compiled:
		return "uncompiled"
	case s.remaining < 0:
		return "finished"
	case s.remaining == 0:
		return "ready"
	default:
		return fmt.Sprintf("waiting(%d)", s.remaining)
	}
}
