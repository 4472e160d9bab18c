package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_SchedulerAndModules(t *testing.T) {
	dir := t.TempDir()
	path := writePlan(t, dir, "plan.hcl", `
scheduler {
  accumulate_threshold = 2
  max_running          = 4
  tick                 = "250ms"
  task_timeout         = "1m"
  exit_when_idle       = true
}

module "backbone" {
  driver   = "seed"
  produces = "species"
  arguments {
    ids = ["a", "b"]
  }
}

module "pages" {
  driver   = "print"
  consumes = "species"
  produces = "pages"
}
`)

	model, conv, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, conv)

	s := model.Scheduler
	require.NotNil(t, s)
	assert.Equal(t, 2, *s.AccumulateThreshold)
	assert.Equal(t, 4, *s.MaxRunning)
	assert.Equal(t, 250*time.Millisecond, *s.Tick)
	assert.Equal(t, time.Minute, *s.TaskTimeout)
	assert.True(t, *s.ExitWhenIdle)

	require.Len(t, model.Modules, 2)
	backbone := model.Modules[0]
	assert.Equal(t, "backbone", backbone.Name)
	assert.Equal(t, "seed", backbone.Driver)
	assert.Empty(t, backbone.Consumes)
	assert.Equal(t, "species", backbone.Produces)
	assert.Contains(t, backbone.Arguments, "ids")
	assert.Equal(t, path, backbone.Source)

	pages := model.Modules[1]
	assert.Equal(t, "species", pages.Consumes)
	assert.Nil(t, pages.Arguments)
}

func TestLoad_PartialSchedulerBlock(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "plan.hcl", `
scheduler {
  max_running = 3
}
module "a" {
  driver   = "seed"
  produces = "x"
}
`)

	model, _, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.NotNil(t, model.Scheduler)
	assert.Equal(t, 3, *model.Scheduler.MaxRunning)
	assert.Nil(t, model.Scheduler.AccumulateThreshold)
	assert.Nil(t, model.Scheduler.Tick)
	assert.Nil(t, model.Scheduler.TaskTimeout)
	assert.Nil(t, model.Scheduler.ExitWhenIdle)
}

func TestLoad_DirectoryIsWalkedInOrder(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "b.hcl", `module "second" {
  driver   = "seed"
  produces = "y"
}`)
	writePlan(t, dir, "a.hcl", `module "first" {
  driver   = "seed"
  produces = "x"
}`)
	writePlan(t, dir, "nested/c.hcl", `module "third" {
  driver   = "seed"
  produces = "z"
}`)
	writePlan(t, dir, "README.md", "not a plan")

	model, _, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	var names []string
	for _, m := range model.Modules {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
	assert.Nil(t, model.Scheduler)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"plan.hcl": `module "a" {`},
			wantErr: "failed to parse plan file",
		},
		{
			name:    "unknown block",
			files:   map[string]string{"plan.hcl": `step "a" "b" {}`},
			wantErr: "failed to decode plan file",
		},
		{
			name: "missing produces",
			files: map[string]string{"plan.hcl": `module "a" {
  driver = "seed"
}`},
			wantErr: "failed to decode plan file",
		},
		{
			name: "empty produces",
			files: map[string]string{"plan.hcl": `module "a" {
  driver   = "seed"
  produces = ""
}`},
			wantErr: "produces must not be empty",
		},
		{
			name: "duplicate module",
			files: map[string]string{
				"a.hcl": `module "dup" {
  driver   = "seed"
  produces = "x"
}`,
				"b.hcl": `module "dup" {
  driver   = "seed"
  produces = "y"
}`,
			},
			wantErr: `module "dup" already declared`,
		},
		{
			name: "two scheduler blocks",
			files: map[string]string{
				"a.hcl": `scheduler {}`,
				"b.hcl": `scheduler {}`,
			},
			wantErr: "scheduler block declared more than once",
		},
		{
			name:    "bad duration",
			files:   map[string]string{"plan.hcl": `scheduler { tick = "soon" }`},
			wantErr: "scheduler.tick",
		},
		{
			name:    "no plan files",
			files:   map[string]string{"notes.txt": "nothing"},
			wantErr: ErrNoPlanFiles.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writePlan(t, dir, name, content)
			}
			_, _, err := NewLoader().Load(context.Background(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	_, _, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error accessing path")
}
