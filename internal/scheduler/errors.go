package scheduler

import "errors"

var (
	// ErrNilTask is returned when registering a nil task.
	ErrNilTask = errors.New("task is nil")
	// ErrNoProducedLabel is returned for a task that does not name the label it produces.
	ErrNoProducedLabel = errors.New("task has no produced label")
	// ErrNoDriver is returned for a task without a driver to execute it.
	ErrNoDriver = errors.New("task has no driver")
	// ErrAlreadyStarted is returned when registering or starting after Start.
	ErrAlreadyStarted = errors.New("scheduler already started")
	// ErrNotRunning is returned by Tick outside the Running state.
	ErrNotRunning = errors.New("scheduler is not running")
	// ErrUnresolvedLabel is returned by Start when a consumed label has no producer.
	ErrUnresolvedLabel = errors.New("consumed label has no producer")
	// ErrTaskPanicked wraps a panic recovered from a running task.
	ErrTaskPanicked = errors.New("task panicked")
)
