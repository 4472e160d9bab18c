package hcl

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/petal/internal/config"
)

// translateScheduler converts a `scheduler` block into the agnostic model.
func translateScheduler(b *schedulerBlock) (*config.SchedulerSettings, error) {
	s := &config.SchedulerSettings{
		AccumulateThreshold: b.AccumulateThreshold,
		MaxRunning:          b.MaxRunning,
		ExitWhenIdle:        b.ExitWhenIdle,
	}
	var err error
	if s.Tick, err = parseDuration("tick", b.Tick); err != nil {
		return nil, err
	}
	if s.TaskTimeout, err = parseDuration("task_timeout", b.TaskTimeout); err != nil {
		return nil, err
	}
	return s, nil
}

func parseDuration(attr string, raw *string) (*time.Duration, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := time.ParseDuration(*raw)
	if err != nil {
		return nil, fmt.Errorf("scheduler.%s: %w", attr, err)
	}
	return &d, nil
}

// translateModule converts a `module` block into the agnostic model.
func translateModule(b *moduleBlock, source string) (*config.Module, error) {
	if b.Produces == "" {
		return nil, fmt.Errorf("%s: module %q: produces must not be empty", source, b.Name)
	}
	if b.Driver == "" {
		return nil, fmt.Errorf("%s: module %q: driver must not be empty", source, b.Name)
	}
	args, err := extractArguments(b.Arguments)
	if err != nil {
		return nil, fmt.Errorf("%s: module %q: %w", source, b.Name, err)
	}
	return &config.Module{
		Name:      b.Name,
		Driver:    b.Driver,
		Consumes:  b.Consumes,
		Produces:  b.Produces,
		Arguments: args,
		Source:    source,
	}, nil
}

func extractArguments(block *argumentsBlock) (map[string]hcl.Expression, error) {
	if block == nil || block.Body == nil {
		return nil, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	exprs := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprs[name] = attr.Expr
	}
	return exprs, nil
}
