package scheduler

// State is the lifecycle state of the scheduler loop.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time view of the scheduler's bookkeeping.
type Stats struct {
	State State
	// Queued is the depth of the admission queue.
	Queued int
	// Running is the size of the running set.
	Running int
	// PendingFinish counts finish signals not yet consumed by a trigger evaluation.
	PendingFinish int
	Triggers      uint64
	Started       uint64
	Succeeded     uint64
	Failed        uint64
}
