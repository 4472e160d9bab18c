// Package print provides a sink driver that logs the identifier batch it was
// triggered with. With forward set it also re-emits the batch under its own
// produced label.
package print

import (
	"context"

	"github.com/vk/petal/internal/ctxlog"
	"github.com/vk/petal/internal/registry"
)

const defaultMax = 20

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of the print driver.
type Input struct {
	Message string `petal:"message,optional"`
	// Max caps how many identifiers are written to the log record.
	Max     int  `petal:"max,optional"`
	Forward bool `petal:"forward,optional"`
}

// OnRunPrint is the handler for the print driver.
func OnRunPrint(ctx context.Context, input *Input, batch *registry.Batch) error {
	logger := ctxlog.FromContext(ctx)

	limit := input.Max
	if limit <= 0 {
		limit = defaultMax
	}
	shown := batch.IDs
	if len(shown) > limit {
		shown = shown[:limit]
	}

	msg := input.Message
	if msg == "" {
		msg = "Received identifier batch."
	}
	logger.Info(msg, "module", batch.Module, "count", len(batch.IDs), "ids", shown, "truncated", len(batch.IDs) > len(shown))

	if input.Forward {
		for _, id := range batch.IDs {
			batch.Out.Emit(id)
		}
	}
	return nil
}

// Register registers the driver with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDriver("print", &registry.RegisteredDriver{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunPrint,
	})
}
