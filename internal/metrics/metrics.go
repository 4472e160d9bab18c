// Package metrics holds the prometheus collectors exported by the scheduler.
// A nil *Scheduler is valid and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "petal"

const (
	MetricQueued      = "queued_tasks"
	MetricRunning     = "running_tasks"
	MetricTriggers    = "label_triggers_total"
	MetricStarted     = "tasks_started_total"
	MetricFinished    = "tasks_finished_total"
	MetricAccumulated = "accumulated_identifiers"
)

// Scheduler groups the collectors updated by the scheduler loop.
type Scheduler struct {
	Queued      prometheus.Gauge
	Running     prometheus.Gauge
	Triggers    *prometheus.CounterVec
	Started     prometheus.Counter
	Finished    *prometheus.CounterVec
	Accumulated *prometheus.GaugeVec
}

// New creates the scheduler collectors and registers them on reg.
func New(reg prometheus.Registerer) *Scheduler {
	m := &Scheduler{
		Queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      MetricQueued,
			Help:      "Tasks waiting in the admission queue.",
		}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      MetricRunning,
			Help:      "Tasks currently executing.",
		}),
		Triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricTriggers,
			Help:      "Label trigger events delivered to dependents.",
		}, []string{"label"}),
		Started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricStarted,
			Help:      "Tasks admitted from the queue.",
		}),
		Finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricFinished,
			Help:      "Tasks reaped, by outcome.",
		}, []string{"outcome"}),
		Accumulated: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      MetricAccumulated,
			Help:      "Identifiers waiting under a label at the last tick.",
		}, []string{"label"}),
	}
	reg.MustRegister(m.Queued, m.Running, m.Triggers, m.Started, m.Finished, m.Accumulated)
	return m
}

// ObserveQueue records the queue depth and running count.
func (m *Scheduler) ObserveQueue(queued, running int) {
	if m == nil {
		return
	}
	m.Queued.Set(float64(queued))
	m.Running.Set(float64(running))
}

// Triggered counts one trigger event for label.
func (m *Scheduler) Triggered(label string) {
	if m == nil {
		return
	}
	m.Triggers.WithLabelValues(label).Inc()
}

// StartedTasks counts n admitted tasks.
func (m *Scheduler) StartedTasks(n int) {
	if m == nil {
		return
	}
	m.Started.Add(float64(n))
}

// FinishedTask counts one reaped task with the given outcome.
func (m *Scheduler) FinishedTask(outcome string) {
	if m == nil {
		return
	}
	m.Finished.WithLabelValues(outcome).Inc()
}

// ObserveAccumulated records the size of a label's identifier set.
func (m *Scheduler) ObserveAccumulated(label string, n int) {
	if m == nil {
		return
	}
	m.Accumulated.WithLabelValues(label).Set(float64(n))
}
