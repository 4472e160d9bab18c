// Package seed provides a driver that emits a literal list of identifiers,
// optionally read from an environment variable. Used as a dependent module it
// forwards the batch it was triggered with as well.
package seed

import (
	"context"
	"os"
	"strings"

	"github.com/vk/petal/internal/ctxlog"
	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of the seed driver.
type Input struct {
	IDs       []string `petal:"ids,optional"`
	FromEnv   string   `petal:"from_env,optional"`
	Separator string   `petal:"separator,optional"`
}

// OnRunSeed emits the configured identifiers and any it was triggered with.
func OnRunSeed(ctx context.Context, input *Input, batch *registry.Batch) error {
	logger := ctxlog.FromContext(ctx)

	for _, id := range batch.IDs {
		batch.Out.Emit(id)
	}
	for _, id := range input.IDs {
		batch.Out.Emit(labels.ID(strings.TrimSpace(id)))
	}

	if input.FromEnv != "" {
		raw, ok := os.LookupEnv(input.FromEnv)
		if !ok {
			logger.Warn("Environment variable not set, nothing to seed from it.", "variable", input.FromEnv)
		}
		sep := input.Separator
		if sep == "" {
			sep = ","
		}
		for _, id := range strings.Split(raw, sep) {
			batch.Out.Emit(labels.ID(strings.TrimSpace(id)))
		}
	}

	logger.Debug("Seeded identifiers.", "emitted", batch.Out.Emitted(), "forwarded", len(batch.IDs))
	return nil
}

// Register registers the driver with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDriver("seed", &registry.RegisteredDriver{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunSeed,
	})
}
