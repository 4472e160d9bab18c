package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of a harvesting plan.
type Model struct {
	Scheduler *SchedulerSettings
	Modules   []*Module
}

// SchedulerSettings holds the values of a plan's `scheduler` block. A nil
// field means the plan did not set it.
type SchedulerSettings struct {
	AccumulateThreshold *int
	MaxRunning          *int
	Tick                *time.Duration
	TaskTimeout         *time.Duration
	ExitWhenIdle        *bool
}

// Module is the format-agnostic representation of a `module` block.
type Module struct {
	Name      string
	Driver    string
	Consumes  string
	Produces  string
	Arguments map[string]hcl.Expression
	// Source is the file the block was declared in, for error messages.
	Source string
}
