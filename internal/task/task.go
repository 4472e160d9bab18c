// Package task defines the descriptor of a harvesting task as the scheduler
// sees it. A Task carries only label wiring and the name of the driver that
// executes it; execution state lives in the scheduler's handles.
package task

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/petal/internal/labels"
)

// Task is a harvesting module declared in a plan. Identity is by pointer.
type Task struct {
	// Name is the plan-level name of the module, used in logs.
	Name string

	// Driver names the registered driver that executes the task.
	Driver string

	// SourceLabel is the label the task depends on. Empty means independent.
	SourceLabel labels.Label

	// ProducedLabel is the label the task contributes identifiers to.
	ProducedLabel labels.Label

	// Arguments holds the raw, unevaluated driver arguments.
	Arguments map[string]hcl.Expression
}

// Independent reports whether the task can run without waiting on a label.
func (t *Task) Independent() bool {
	return t.SourceLabel == ""
}

func (t *Task) String() string {
	if t.Independent() {
		return fmt.Sprintf("%s(%s -> %s)", t.Name, t.Driver, t.ProducedLabel)
	}
	return fmt.Sprintf("%s(%s: %s -> %s)", t.Name, t.Driver, t.SourceLabel, t.ProducedLabel)
}
