package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/petal/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Run drives the scheduler loop until ctx is cancelled (or, with exit when
// idle, until nothing is left to do) and serves health checks alongside it.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	g, gctx := errgroup.WithContext(ctx)
	loopDone := make(chan struct{})

	g.Go(func() error {
		defer close(loopDone)
		if err := a.scheduler.Run(gctx); err != nil {
			return fmt.Errorf("scheduler failed: %w", err)
		}
		return nil
	})

	if a.config.HealthcheckPort > 0 {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", a.config.HealthcheckPort),
			Handler:           a.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			a.logger.Info("Health check server starting.", "address", fmt.Sprintf("http://localhost%s/health", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("health check server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-loopDone:
			case <-gctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			a.logger.Info("Shutting down health check server.")
			return srv.Shutdown(shutdownCtx)
		})
	} else {
		a.logger.Debug("Health check server disabled.")
	}

	err := g.Wait()
	stats := a.scheduler.Stats()
	a.logger.Info("Run finished.",
		"state", stats.State.String(),
		"started", stats.Started,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"abandoned_queue", stats.Queued,
	)
	return err
}
