package scheduler

import (
	"context"
	"time"

	"github.com/vk/petal/internal/ctxlog"
)

// Run starts the scheduler and ticks until ctx is cancelled, then stops it.
// Termination is operator driven: cancellation is a normal exit and Run
// returns nil. With ExitWhenIdle set, Run also returns once the scheduler has
// nothing left to do.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Stop(ctx)

	logger := ctxlog.FromContext(ctx)
	tick := s.cfg.Tick
	if tick <= 0 {
		tick = DefaultConfig().Tick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler loop interrupted.", "reason", context.Cause(ctx))
			return nil
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				return err
			}
			if s.cfg.ExitWhenIdle && s.idle() {
				logger.Info("Scheduler idle, exiting loop.")
				return nil
			}
		}
	}
}

func (s *Scheduler) idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idleLocked()
}
