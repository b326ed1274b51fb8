package testutil

import (
	"sync"
	"time"
)

// Sleeper produces node functions that sleep for a fixed duration and
// record when they ran, so tests can check for overlapping execution.
type Sleeper struct {
	mu             sync.Mutex
	ExecutionTimes map[string]*ExecutionRecord
	sleepDuration  time.Duration
}

// NewSleeper creates a Sleeper whose functions block for sleep.
func NewSleeper(sleep time.Duration) *Sleeper {
	return &Sleeper{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
	}
}

// Func returns a node function that records its execution under id and
// returns id.
func (s *Sleeper) Func(id string) func() string {
	return func() string {
		start := time.Now()
		time.Sleep(s.sleepDuration)
		end := time.Now()

		s.mu.Lock()
		s.ExecutionTimes[id] = &ExecutionRecord{Start: start, End: end}
		s.mu.Unlock()
		return id
	}
}

// Record returns the execution record for id.
func (s *Sleeper) Record(id string) (*ExecutionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.ExecutionTimes[id]
	return r, ok
}

// Overlaps reports whether the two executions ran at the same time.
func (r *ExecutionRecord) Overlaps(other *ExecutionRecord) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}
