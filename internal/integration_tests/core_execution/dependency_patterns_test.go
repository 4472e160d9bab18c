package core_execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/testutil"
)

// Test for: fan-out to two dependents of one label and a chain through a
// second label. Every dependent runs exactly once with the full batch.
func TestCoreExecution_FanOutAndChain(t *testing.T) {
	files := map[string]string{
		"sources.hcl": `
module "backbone" {
  driver   = "record"
  produces = "species"
  arguments {
    emit = ["Quercus", "Betula", "Quercus"]
  }
}
`,
		"consumers.hcl": `
module "wikipedia" {
  driver   = "record"
  consumes = "species"
  produces = "pages"
  arguments {
    forward = true
    emit    = ["extra"]
  }
}
module "inaturalist" {
  driver   = "record"
  consumes = "species"
  produces = "observations"
}
module "archive" {
  driver   = "record"
  consumes = "pages"
  produces = "archived"
}
`,
	}
	rec := &testutil.Recorder{}
	result := testutil.RunPlan(t, files, testutil.Options{}, rec)
	require.NoError(t, result.Err)

	for _, name := range []string{"wikipedia", "inaturalist"} {
		execs := rec.Executions(name)
		require.Len(t, execs, 1, name)
		assert.Equal(t, []labels.ID{"Betula", "Quercus"}, execs[0].IDs, name)
	}
	archive := rec.Executions("archive")
	require.Len(t, archive, 1)
	assert.Equal(t, []labels.ID{"Betula", "Quercus", "extra"}, archive[0].IDs)

	stats := result.App.Scheduler().Stats()
	assert.Equal(t, uint64(4), stats.Succeeded)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, uint64(2), stats.Triggers, "species and pages fired once each")
}

// Test for: a module whose producer emitted nothing is never triggered.
func TestCoreExecution_EmptyProducerNeverTriggers(t *testing.T) {
	plan := `
module "quiet" {
  driver   = "record"
  produces = "x"
}
module "listener" {
  driver   = "record"
  consumes = "x"
  produces = "y"
}
`
	rec := &testutil.Recorder{}
	result := testutil.RunPlan(t, map[string]string{"main.hcl": plan}, testutil.Options{}, rec)
	require.NoError(t, result.Err)

	assert.Len(t, rec.Executions("quiet"), 1)
	assert.Empty(t, rec.Executions("listener"))
}
