package core_execution

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/petal/internal/testutil"
)

// Test for: the number of simultaneously running modules never exceeds
// max_running, including the initial burst of independent modules.
func TestCoreExecution_MaxRunningIsRespected(t *testing.T) {
	var b strings.Builder
	b.WriteString("scheduler {\n  max_running = 2\n}\n")
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, `
module "worker_%d" {
  driver   = "record"
  produces = "out"
  arguments {
    sleep = "40ms"
  }
}
`, i)
	}

	rec := &testutil.Recorder{}
	result := testutil.RunPlan(t, map[string]string{"main.hcl": b.String()}, testutil.Options{}, rec)
	require.NoError(t, result.Err)

	for i := 0; i < 6; i++ {
		assert.Len(t, rec.Executions(fmt.Sprintf("worker_%d", i)), 1)
	}
	assert.LessOrEqual(t, rec.MaxConcurrent(), 2)
	assert.Contains(t, result.LogOutput, "Starting modules.")
}
