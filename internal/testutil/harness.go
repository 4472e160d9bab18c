package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/petal/internal/app"
	"github.com/vk/petal/internal/hcl"
	"github.com/vk/petal/internal/registry"
	"github.com/vk/petal/internal/scheduler"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// Options tweaks a harness run. The zero value runs with a 5ms tick, exit
// when idle, and a 10s deadline.
type Options struct {
	Scheduler *scheduler.Config
	Timeout   time.Duration
}

// RunPlan writes files into a temporary plan directory, builds the app with
// the given modules and runs it to completion.
func RunPlan(t *testing.T, files map[string]string, opts Options, modules ...registry.Module) *HarnessResult {
	t.Helper()

	planDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(planDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	schedCfg := scheduler.DefaultConfig()
	schedCfg.Tick = 5 * time.Millisecond
	schedCfg.ExitWhenIdle = true
	if opts.Scheduler != nil {
		schedCfg = *opts.Scheduler
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	cfg, err := app.NewConfig(app.Config{
		PlanPath:  planDir,
		LogLevel:  "debug",
		LogFormat: "text",
		Scheduler: schedCfg,
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("PETAL_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	var testApp *app.App
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		testApp, err = app.NewApp(logBuffer, cfg, hcl.NewLoader(), modules...)
	}()
	if err != nil {
		return &HarnessResult{LogOutput: logBuffer.String(), Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	runErr := testApp.Run(ctx)

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
