// Package synthetic provides a driver that emits freshly generated UUIDs. It
// stands in for a real source when exercising a plan's wiring or load.
package synthetic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vk/petal/internal/ctxlog"
	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of the synthetic driver.
type Input struct {
	Count    int    `petal:"count"`
	Prefix   string `petal:"prefix,optional"`
	Interval string `petal:"interval,optional"`
	// PerID multiplies Count by the size of the trigger batch.
	PerID bool `petal:"per_id,optional"`
}

// OnRunSynthetic emits Count identifiers, pausing Interval between them.
func OnRunSynthetic(ctx context.Context, input *Input, batch *registry.Batch) error {
	if input.Count < 0 {
		return fmt.Errorf("count must be >= 0, got %d", input.Count)
	}
	var interval time.Duration
	if input.Interval != "" {
		d, err := time.ParseDuration(input.Interval)
		if err != nil {
			return fmt.Errorf("invalid interval: %w", err)
		}
		interval = d
	}

	total := input.Count
	if input.PerID {
		total *= len(batch.IDs)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Generating synthetic identifiers.", "count", total, "interval", interval)
	for i := 0; i < total; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		batch.Out.Emit(labels.ID(input.Prefix + uuid.NewString()))
	}
	return nil
}

// Register registers the driver with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDriver("synthetic", &registry.RegisteredDriver{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunSynthetic,
	})
}
