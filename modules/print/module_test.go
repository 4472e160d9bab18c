package print

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/petal/internal/ctxlog"
	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/registry"
)

func TestOnRunPrint(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	acc := labels.New()
	batch := &registry.Batch{Module: "sink", IDs: []labels.ID{"a", "b", "c"}, Out: labels.NewEmitter(acc, "out")}

	require.NoError(t, OnRunPrint(ctx, &Input{Max: 2}, batch))

	out := buf.String()
	assert.Contains(t, out, "Received identifier batch.")
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "ids=\"[a b]\"")
	assert.Contains(t, out, "truncated=true")
	assert.Zero(t, acc.Len("out"), "no forwarding unless asked")
}

func TestOnRunPrint_Forward(t *testing.T) {
	acc := labels.New()
	batch := &registry.Batch{Module: "relay", IDs: []labels.ID{"x", "y"}, Out: labels.NewEmitter(acc, "out")}

	require.NoError(t, OnRunPrint(context.Background(), &Input{Forward: true, Message: "relay"}, batch))
	assert.Equal(t, []labels.ID{"x", "y"}, acc.Snapshot()["out"])
}
