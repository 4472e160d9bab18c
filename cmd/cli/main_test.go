package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/petal/internal/cli"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "failed to set up test file")
	return path
}

func TestRun_InvalidPlan(t *testing.T) {
	t.Parallel()

	path := writePlan(t, `
module "a" {
  driver = "seed"
	// Missing closing brace here
`)
	err := run(context.Background(), &bytes.Buffer{}, []string{path})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load plan")
	require.Contains(t, err.Error(), "failed to parse plan file")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_SeedToPrintUntilIdle(t *testing.T) {
	t.Parallel()

	path := writePlan(t, `
module "backbone" {
  driver   = "seed"
  produces = "species"
  arguments {
    ids = ["Quercus robur", "Betula pendula"]
  }
}
module "sink" {
  driver   = "print"
  consumes = "species"
  produces = "printed"
}
`)
	out := &bytes.Buffer{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := run(ctx, out, []string{"-log-format", "text", "-tick", "5ms", "-exit-when-idle", path})

	require.NoError(t, err)
	require.Contains(t, out.String(), "Received identifier batch.")
	require.Contains(t, out.String(), "Quercus robur")
	require.Contains(t, out.String(), "Scheduler idle, exiting loop.")
}
