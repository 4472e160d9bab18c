// Package driver executes scheduler tasks in-process by calling the Go
// function registered for the task's driver.
package driver

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/vk/petal/internal/config"
	"github.com/vk/petal/internal/ctxlog"
	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/registry"
	"github.com/vk/petal/internal/task"
)

// ErrUnknownDriver is returned for a task whose driver is not registered.
var ErrUnknownDriver = errors.New("unknown driver")

// Runner implements scheduler.Runner on top of a driver registry.
type Runner struct {
	registry  *registry.Registry
	converter config.Converter
}

// New creates a Runner. The registry should already be validated.
func New(reg *registry.Registry, conv config.Converter) *Runner {
	return &Runner{registry: reg, converter: conv}
}

// Prepare checks up front that every task names a registered driver and
// that its arguments decode into the driver's input. All problems are
// reported together.
func (r *Runner) Prepare(ctx context.Context, tasks []*task.Task) error {
	var errs []error
	for _, t := range tasks {
		d, err := r.lookup(t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := r.converter.DecodeArguments(ctx, d.NewInput(), t.Arguments); err != nil {
			errs = append(errs, fmt.Errorf("module %q (driver %q): %w", t.Name, t.Driver, err))
		}
	}
	return errors.Join(errs...)
}

// Run decodes the task's arguments into a fresh input and calls its driver.
func (r *Runner) Run(ctx context.Context, t *task.Task, out *labels.Emitter, ids []labels.ID) error {
	logger := ctxlog.FromContext(ctx).With("task", t.Name, "driver", t.Driver)
	ctx = ctxlog.WithLogger(ctx, logger)

	d, err := r.lookup(t)
	if err != nil {
		return err
	}
	input := d.NewInput()
	if err := r.converter.DecodeArguments(ctx, input, t.Arguments); err != nil {
		return fmt.Errorf("failed to decode arguments for module %q: %w", t.Name, err)
	}

	logger.Debug("Calling driver.", "ids", len(ids))
	batch := &registry.Batch{Module: t.Name, IDs: ids, Out: out}
	results := reflect.ValueOf(d.Fn).Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(input),
		reflect.ValueOf(batch),
	})
	if errResult := results[0].Interface(); errResult != nil {
		return errResult.(error)
	}
	return nil
}

func (r *Runner) lookup(t *task.Task) (*registry.RegisteredDriver, error) {
	d, ok := r.registry.Driver(t.Driver)
	if !ok {
		return nil, fmt.Errorf("module %q: %w %q", t.Name, ErrUnknownDriver, t.Driver)
	}
	return d, nil
}
