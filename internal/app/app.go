package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/petal/internal/config"
	"github.com/vk/petal/internal/ctxlog"
	"github.com/vk/petal/internal/driver"
	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/metrics"
	"github.com/vk/petal/internal/registry"
	"github.com/vk/petal/internal/scheduler"
	"github.com/vk/petal/internal/task"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	registry  *registry.Registry
	plan      *config.Model
	tasks     []*task.Task
	scheduler *scheduler.Scheduler
	gatherer  *prometheus.Registry
}

// NewApp loads the plan, registers the drivers and the plan's modules, and
// returns an App ready to Run. A malformed driver registration is a
// programming error and panics; every plan problem is returned as an error.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	plan, converter, err := loader.Load(ctx, cfg.PlanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	schedCfg, err := mergeSettings(cfg.Scheduler, cfg.Explicit, plan.Scheduler)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "drivers", reg.Names())

	tasks := buildTasks(plan)
	runner := driver.New(reg, converter)
	if err := runner.Prepare(ctx, tasks); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	gatherer := prometheus.NewRegistry()
	gatherer.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sched := scheduler.New(schedCfg, runner, labels.New(), scheduler.WithMetrics(metrics.New(gatherer)))
	for _, t := range tasks {
		if err := sched.Register(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to register module %q: %w", t.Name, err)
		}
	}

	logger.Debug("Application assembled.",
		"modules", len(tasks),
		"threshold", schedCfg.AccumulateThreshold,
		"max_running", schedCfg.MaxRunning,
		"tick", schedCfg.Tick,
	)
	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		plan:      plan,
		tasks:     tasks,
		scheduler: sched,
		gatherer:  gatherer,
	}, nil
}

func buildTasks(plan *config.Model) []*task.Task {
	tasks := make([]*task.Task, 0, len(plan.Modules))
	for _, m := range plan.Modules {
		tasks = append(tasks, &task.Task{
			Name:          m.Name,
			Driver:        m.Driver,
			SourceLabel:   labels.Label(m.Consumes),
			ProducedLabel: labels.Label(m.Produces),
			Arguments:     m.Arguments,
		})
	}
	return tasks
}

// Registry returns the application's driver registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Scheduler returns the application's scheduler.
func (a *App) Scheduler() *scheduler.Scheduler {
	return a.scheduler
}

// Tasks returns the tasks built from the plan, in declaration order.
func (a *App) Tasks() []*task.Task {
	return a.tasks
}
