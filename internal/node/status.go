package node

// Status is the execution status of a node within one run.
type Status int32

const (
	// StatusPending indicates the node has not started.
	StatusPending Status = iota
	// StatusRunning indicates the node's function is executing.
	StatusRunning
	// StatusCompleted indicates the function returned without error.
	StatusCompleted
	// StatusFailed indicates the function returned an error or panicked.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
