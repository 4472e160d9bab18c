package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RecordsValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveQueue(3, 2)
	m.Triggered("species")
	m.Triggered("species")
	m.StartedTasks(4)
	m.FinishedTask("failed")
	m.ObserveAccumulated("pages", 17)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Queued))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Running))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Triggers.WithLabelValues("species")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Started))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Finished.WithLabelValues("failed")))
	assert.Equal(t, 17.0, testutil.ToFloat64(m.Accumulated.WithLabelValues("pages")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestScheduler_NilIsNoop(t *testing.T) {
	var m *Scheduler

	assert.NotPanics(t, func() {
		m.ObserveQueue(1, 1)
		m.Triggered("x")
		m.StartedTasks(1)
		m.FinishedTask("succeeded")
		m.ObserveAccumulated("x", 1)
	})
}
