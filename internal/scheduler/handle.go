package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/task"
)

// Runner executes a task. It is the execution capability injected into the
// scheduler; out is bound to the task's produced label and ids is the batch
// that triggered a dependent task (nil for independent tasks).
type Runner interface {
	Run(ctx context.Context, t *task.Task, out *labels.Emitter, ids []labels.ID) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, t *task.Task, out *labels.Emitter, ids []labels.ID) error

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, t *task.Task, out *labels.Emitter, ids []labels.ID) error {
	return f(ctx, t, out, ids)
}

// handle pairs a task with one execution of it. It moves from the admission
// queue to the running set and is dropped once reaped.
type handle struct {
	id      uuid.UUID
	task    *task.Task
	ids     []labels.ID
	emitter *labels.Emitter

	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	started time.Time
}

func newHandle(t *task.Task, acc labels.Adder, ids []labels.ID) *handle {
	return &handle{
		id:      uuid.New(),
		task:    t,
		ids:     ids,
		emitter: labels.NewEmitter(acc, t.ProducedLabel),
		done:    make(chan struct{}),
	}
}

// start launches the task on its own goroutine. A timeout of zero means the
// task may run for as long as it likes.
func (h *handle) start(ctx context.Context, r Runner, timeout time.Duration) {
	var runCtx context.Context
	if timeout > 0 {
		runCtx, h.cancel = context.WithTimeout(ctx, timeout)
	} else {
		runCtx, h.cancel = context.WithCancel(ctx)
	}
	h.started = time.Now()

	go func() {
		defer h.cancel()
		defer close(h.done)
		defer func() {
			if rec := recover(); rec != nil {
				h.err = fmt.Errorf("%w: %v", ErrTaskPanicked, rec)
			}
		}()
		h.err = r.Run(runCtx, h.task, h.emitter, h.ids)
	}()
}

// alive reports whether the task goroutine has not returned yet. The done
// channel is the only liveness signal the scheduler consults.
func (h *handle) alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// terminate asks the task to stop. It does not wait.
func (h *handle) terminate() {
	if h.cancel != nil {
		h.cancel()
	}
}

// outcome classifies a finished handle. Only valid once alive returns false.
func (h *handle) outcome() string {
	switch {
	case h.err == nil:
		return outcomeSucceeded
	case errors.Is(h.err, context.DeadlineExceeded):
		return outcomeTimedOut
	case errors.Is(h.err, context.Canceled):
		return outcomeCanceled
	default:
		return outcomeFailed
	}
}

const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeTimedOut  = "timed_out"
	outcomeCanceled  = "canceled"
)
