package scheduler

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vk/petal/internal/ctxlog"
	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/metrics"
	"github.com/vk/petal/internal/task"
)

// Config holds the scheduler's tunables.
type Config struct {
	// AccumulateThreshold is the identifier count a label must exceed to fire.
	AccumulateThreshold int
	// MaxRunning caps the number of simultaneously executing tasks.
	MaxRunning int
	// Tick is the pause between two loop iterations.
	Tick time.Duration
	// TaskTimeout bounds a single task execution. Zero disables it.
	TaskTimeout time.Duration
	// ExitWhenIdle makes Run return once nothing is queued, running or pending.
	ExitWhenIdle bool
}

// DefaultConfig returns the default tunables.
func DefaultConfig() Config {
	return Config{
		AccumulateThreshold: 1000,
		MaxRunning:          30,
		Tick:                100 * time.Millisecond,
	}
}

// Option configures optional collaborators of a Scheduler.
type Option func(*Scheduler)

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Scheduler) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// Scheduler tracks the dependency index, the admission queue, the running set
// and the finished-label signals. All bookkeeping is guarded by mu; the
// accumulator synchronizes itself.
type Scheduler struct {
	cfg     Config
	runner  Runner
	acc     *labels.Accumulator
	metrics *metrics.Scheduler

	mu         sync.Mutex
	state      State
	dependents map[labels.Label][]*task.Task
	producers  map[labels.Label]int
	queue      []*handle
	running    []*handle
	finished   map[labels.Label]struct{}

	triggers  uint64
	started   uint64
	succeeded uint64
	failed    uint64
}

// New creates an idle scheduler that executes tasks through runner and
// tracks identifiers in acc.
func New(cfg Config, runner Runner, acc *labels.Accumulator, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:        cfg,
		runner:     runner,
		acc:        acc,
		dependents: make(map[labels.Label][]*task.Task),
		producers:  make(map[labels.Label]int),
		finished:   make(map[labels.Label]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the tunables the scheduler was created with.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Accumulator returns the label accumulator the scheduler polls.
func (s *Scheduler) Accumulator() *labels.Accumulator {
	return s.acc
}

// Register adds a task to the graph. Independent tasks are queued right
// away; dependent tasks are indexed under the label they consume.
func (s *Scheduler) Register(ctx context.Context, t *task.Task) error {
	if t == nil {
		return ErrNilTask
	}
	if t.ProducedLabel == "" {
		return fmt.Errorf("registering %q: %w", t.Name, ErrNoProducedLabel)
	}
	if t.Driver == "" {
		return fmt.Errorf("registering %q: %w", t.Name, ErrNoDriver)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("registering %q: %w", t.Name, ErrAlreadyStarted)
	}

	logger := ctxlog.FromContext(ctx)
	if t.Independent() {
		s.queue = append(s.queue, newHandle(t, s.acc, nil))
		logger.Debug("Registered independent module.", "task", t.Name, "produces", t.ProducedLabel)
	} else {
		s.dependents[t.SourceLabel] = append(s.dependents[t.SourceLabel], t)
		logger.Debug("Registered dependent module.", "task", t.Name, "consumes", t.SourceLabel, "produces", t.ProducedLabel)
	}
	s.producers[t.ProducedLabel]++
	return nil
}

// Start ends the registration phase and admits the first independent tasks.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrAlreadyStarted
	}
	if err := s.checkProducersLocked(); err != nil {
		return err
	}

	s.state = StateRunning
	ctxlog.FromContext(ctx).Info("Scheduler started.",
		"independent", len(s.queue),
		"dependent_labels", len(s.dependents),
		"threshold", s.cfg.AccumulateThreshold,
		"max_running", s.cfg.MaxRunning,
	)
	s.admit(ctx)
	s.observeLocked(nil)
	return nil
}

func (s *Scheduler) checkProducersLocked() error {
	var missing []string
	for label, deps := range s.dependents {
		if s.producers[label] > 0 {
			continue
		}
		names := make([]string, 0, len(deps))
		for _, d := range deps {
			names = append(names, d.Name)
		}
		missing = append(missing, fmt.Sprintf("%q (consumed by %s)", label, strings.Join(names, ", ")))
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrUnresolvedLabel, strings.Join(missing, "; "))
}

// Tick runs one loop iteration: trigger evaluation, reaping, admission.
func (s *Scheduler) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return ErrNotRunning
	}

	snapshot := s.evaluateTriggers(ctx)
	s.reap(ctx)
	s.admit(ctx)
	s.observeLocked(snapshot)
	return nil
}

// evaluateTriggers fires every label whose count exceeds the threshold or
// whose producer finished, queues its dependents and clears it. It returns
// the snapshot it evaluated.
func (s *Scheduler) evaluateTriggers(ctx context.Context) map[labels.Label][]labels.ID {
	logger := ctxlog.FromContext(ctx)
	snapshot := s.acc.Snapshot()

	keys := make([]labels.Label, 0, len(snapshot))
	for label := range snapshot {
		keys = append(keys, label)
	}
	slices.Sort(keys)

	for _, label := range keys {
		_, finished := s.finished[label]
		triggered := len(snapshot[label]) > s.cfg.AccumulateThreshold || finished
		if finished {
			delete(s.finished, label)
		}
		if !triggered {
			continue
		}

		// Drain rather than reuse the snapshot so identifiers added since
		// the snapshot travel with this batch instead of being cleared.
		batch := s.acc.Drain(label)
		deps := s.dependents[label]
		if len(deps) == 0 {
			logger.Debug("Label fired with no dependents, cleared.", "label", label, "ids", len(batch))
			continue
		}

		s.triggers++
		s.metrics.Triggered(string(label))
		for _, dep := range deps {
			logger.Info("Scheduled dependent module.", "task", dep.Name, "label", label, "ids", len(batch), "finished", finished)
			s.queue = append(s.queue, newHandle(dep, s.acc, slices.Clone(batch)))
		}
	}
	return snapshot
}

// reap removes every running handle whose goroutine returned and raises the
// finish signal for the label it produced.
func (s *Scheduler) reap(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	kept := s.running[:0]
	for _, h := range s.running {
		if h.alive() {
			kept = append(kept, h)
			continue
		}
		s.finished[h.task.ProducedLabel] = struct{}{}

		outcome := h.outcome()
		s.metrics.FinishedTask(outcome)
		attrs := []any{
			"task", h.task.Name,
			"run", h.id.String(),
			"label", h.task.ProducedLabel,
			"emitted", h.emitter.Emitted(),
			"duration", time.Since(h.started).Round(time.Millisecond),
			"outcome", outcome,
		}
		if h.err != nil {
			s.failed++
			logger.Warn("Finished module.", append(attrs, "error", h.err)...)
		} else {
			s.succeeded++
			logger.Info("Finished module.", attrs...)
		}
	}
	for i := len(kept); i < len(s.running); i++ {
		s.running[i] = nil
	}
	s.running = kept
}

// admit starts queued handles in FIFO order until the running set is full.
func (s *Scheduler) admit(ctx context.Context) {
	toStart := min(s.cfg.MaxRunning-len(s.running), len(s.queue))
	if toStart <= 0 {
		return
	}

	ctxlog.FromContext(ctx).Info("Starting modules.",
		"running", len(s.running),
		"starting", toStart,
		"queued", len(s.queue)-toStart,
	)
	for _, h := range s.queue[:toStart] {
		h.start(ctx, s.runner, s.cfg.TaskTimeout)
		s.running = append(s.running, h)
	}
	s.queue = slices.Clone(s.queue[toStart:])
	s.started += uint64(toStart)
	s.metrics.StartedTasks(toStart)
}

// Stop signals every running task to terminate and moves to Stopped. It does
// not wait for the tasks to return.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return
	}

	s.state = StateDraining
	ctxlog.FromContext(ctx).Info("Stopping scheduler.", "running", len(s.running), "abandoned_queue", len(s.queue))
	for _, h := range s.running {
		h.terminate()
	}
	s.state = StateStopped
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a point-in-time view of the bookkeeping.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		State:         s.state,
		Queued:        len(s.queue),
		Running:       len(s.running),
		PendingFinish: len(s.finished),
		Triggers:      s.triggers,
		Started:       s.started,
		Succeeded:     s.succeeded,
		Failed:        s.failed,
	}
}

// idleLocked reports whether no further work can start: nothing queued,
// nothing running, and no finish signal waiting on a label with dependents.
func (s *Scheduler) idleLocked() bool {
	if len(s.queue) > 0 || len(s.running) > 0 {
		return false
	}
	snapshot := s.acc.Snapshot()
	for label := range s.finished {
		if _, present := snapshot[label]; present && len(s.dependents[label]) > 0 {
			return false
		}
	}
	return true
}

func (s *Scheduler) observeLocked(snapshot map[labels.Label][]labels.ID) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveQueue(len(s.queue), len(s.running))
	for label := range snapshot {
		s.metrics.ObserveAccumulated(string(label), s.acc.Len(label))
	}
}
