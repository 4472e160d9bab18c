package error_handling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/petal/internal/registry"
	"github.com/vk/petal/internal/scheduler"
	"github.com/vk/petal/internal/testutil"
)

func TestErrorHandling_InvalidPlans(t *testing.T) {
	tests := []struct {
		name    string
		plan    string
		wantErr string
	}{
		{
			name:    "syntax error",
			plan:    `module "a" {`,
			wantErr: "failed to parse plan file",
		},
		{
			name: "unknown driver",
			plan: `module "a" {
  driver   = "teleport"
  produces = "x"
}`,
			wantErr: `unknown driver "teleport"`,
		},
		{
			name: "unsupported argument",
			plan: `module "a" {
  driver   = "record"
  produces = "x"
  arguments {
    colour = "red"
  }
}`,
			wantErr: "unsupported argument(s): colour",
		},
		{
			name: "missing produces",
			plan: `module "a" {
  driver = "record"
}`,
			wantErr: `Missing required argument`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := testutil.RunPlan(t, map[string]string{"main.hcl": tt.plan}, testutil.Options{}, &testutil.Recorder{})
			require.Error(t, result.Err)
			assert.Nil(t, result.App)
			assert.Contains(t, result.Err.Error(), tt.wantErr)
		})
	}
}

// Test for: a consumed label nobody produces is rejected when the scheduler
// starts, before any module runs.
func TestErrorHandling_UnresolvedLabel(t *testing.T) {
	plan := `
module "producer" {
  driver   = "record"
  produces = "x"
}
module "typo" {
  driver   = "record"
  consumes = "xx"
  produces = "y"
}
`
	rec := &testutil.Recorder{}
	result := testutil.RunPlan(t, map[string]string{"main.hcl": plan}, testutil.Options{}, rec)

	require.ErrorIs(t, result.Err, scheduler.ErrUnresolvedLabel)
	assert.Contains(t, result.Err.Error(), `"xx" (consumed by typo)`)
	assert.Empty(t, rec.Executions("producer"))
}

// Test for: a driver registered with a bad signature stops startup.
func TestErrorHandling_MalformedDriverPanicsAtStartup(t *testing.T) {
	bad := &testutil.SimpleModule{
		Name: "bad",
		Driver: &registry.RegisteredDriver{
			NewInput: func() any { return new(struct{}) },
			Fn:       func(ctx context.Context) error { return nil },
		},
	}
	plan := `module "a" {
  driver   = "bad"
  produces = "x"
}`
	result := testutil.RunPlan(t, map[string]string{"main.hcl": plan}, testutil.Options{}, bad)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "driver 'bad'")
}
