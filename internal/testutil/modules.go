package testutil

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/registry"
)

// SimpleModule registers a single driver under a fixed name.
type SimpleModule struct {
	Name   string
	Driver *registry.RegisteredDriver
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Name != "" && m.Driver != nil {
		r.RegisterDriver(m.Name, m.Driver)
	}
}

// RecordInput configures one execution of the "record" driver.
type RecordInput struct {
	Emit  []string `petal:"emit,optional"`
	Fail  string   `petal:"fail,optional"`
	Panic bool     `petal:"panic,optional"`
	Sleep string   `petal:"sleep,optional"`
	// Forward re-emits the trigger batch.
	Forward bool `petal:"forward,optional"`
}

// Execution is one recorded call of the "record" driver.
type Execution struct {
	Module string
	IDs    []labels.ID
	Start  time.Time
	End    time.Time
}

// Recorder is a test module registering the "record" driver. Every call is
// recorded. A call emits first, then sleeps, then fails or panics if asked.
type Recorder struct {
	mu         sync.Mutex
	executions []Execution
	active     int
	maxActive  int
}

// Register implements the registry.Module interface.
func (rec *Recorder) Register(r *registry.Registry) {
	r.RegisterDriver("record", &registry.RegisteredDriver{
		NewInput: func() any { return new(RecordInput) },
		Fn:       rec.run,
	})
}

func (rec *Recorder) run(ctx context.Context, in *RecordInput, b *registry.Batch) error {
	rec.mu.Lock()
	rec.active++
	rec.maxActive = max(rec.maxActive, rec.active)
	rec.mu.Unlock()

	exec := Execution{Module: b.Module, IDs: slices.Clone(b.IDs), Start: time.Now()}
	defer func() {
		exec.End = time.Now()
		rec.mu.Lock()
		rec.active--
		rec.executions = append(rec.executions, exec)
		rec.mu.Unlock()
	}()

	if in.Forward {
		for _, id := range b.IDs {
			b.Out.Emit(id)
		}
	}
	for _, id := range in.Emit {
		b.Out.Emit(labels.ID(id))
	}
	if in.Sleep != "" {
		d, err := time.ParseDuration(in.Sleep)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	if in.Panic {
		panic("record driver asked to panic")
	}
	if in.Fail != "" {
		return errors.New(in.Fail)
	}
	return nil
}

// Executions returns the recorded calls of module in completion order.
func (rec *Recorder) Executions(module string) []Execution {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var out []Execution
	for _, e := range rec.executions {
		if e.Module == module {
			out = append(out, e)
		}
	}
	return out
}

// MaxConcurrent returns the highest number of simultaneous calls observed.
func (rec *Recorder) MaxConcurrent() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.maxActive
}
