package model

// ExecutionStatus is the lifecycle state of an execution unit.
//
// Transitions are monotonic: Pending -> Running -> {Completed, Failed, Incomplete}.
type ExecutionStatus uint32

const (
	ExecutionStatusPending ExecutionStatus = iota
	ExecutionStatusRunning
	ExecutionStatusCompleted
	ExecutionStatusFailed
	// ExecutionStatusIncomplete is set by the runtime when a work function returns (or
	// times out) without writing a terminal status itself.
	ExecutionStatusIncomplete
)

// IsTerminal returns true when no further transitions can happen.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusIncomplete:
		return true
	}
	return false
}

// IsFailure returns true for the terminal states that halt a run.
func (s ExecutionStatus) IsFailure() bool {
	return s == ExecutionStatusFailed || s == ExecutionStatusIncomplete
}

func (s ExecutionStatus) String() string {
	switch s {
	case ExecutionStatusPending:
		return "pending"
	case ExecutionStatusRunning:
		return "running"
	case ExecutionStatusCompleted:
		return "completed"
	case ExecutionStatusFailed:
		return "failed"
	case ExecutionStatusIncomplete:
		return "incomplete"
	}
	return "unknown"
}
