package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a plan file may contain.
type fileRoot struct {
	Schedulers []*schedulerBlock `hcl:"scheduler,block"`
	Modules    []*moduleBlock    `hcl:"module,block"`
}

// schedulerBlock is the `scheduler` block. Durations are Go duration strings.
type schedulerBlock struct {
	AccumulateThreshold *int    `hcl:"accumulate_threshold,optional"`
	MaxRunning          *int    `hcl:"max_running,optional"`
	Tick                *string `hcl:"tick,optional"`
	TaskTimeout         *string `hcl:"task_timeout,optional"`
	ExitWhenIdle        *bool   `hcl:"exit_when_idle,optional"`
}

// moduleBlock is a `module "name"` block.
type moduleBlock struct {
	Name      string          `hcl:"name,label"`
	Driver    string          `hcl:"driver"`
	Consumes  string          `hcl:"consumes,optional"`
	Produces  string          `hcl:"produces"`
	Arguments *argumentsBlock `hcl:"arguments,block"`
}

// argumentsBlock keeps the raw body of a module's `arguments` block.
type argumentsBlock struct {
	Body hcl.Body `hcl:",remain"`
}
