package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcome and sweep counters. Failed dispatches are not retried
// automatically, so the dead-letter counter is the primary alerting signal.
type Metrics struct {
	DispatchTotal    *prometheus.CounterVec
	DeadLetterTotal  *prometheus.CounterVec
	SweepRuns        prometheus.Counter
	SweepProcessed   prometheus.Counter
	DispatchEnqueued prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		DispatchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "faktura_dispatch_total",
			Help: "Notification dispatch attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		DeadLetterTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "faktura_dispatch_dead_letter_total",
			Help: "Dispatch jobs dropped or failed without retry.",
		}, []string{"reason"}),
		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "faktura_sweep_runs_total",
			Help: "Reminder sweep passes executed.",
		}),
		SweepProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "faktura_sweep_processed_total",
			Help: "Reminder tasks dispatched by sweeps.",
		}),
		DispatchEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "faktura_dispatch_enqueued_total",
			Help: "Dispatch jobs accepted onto the work queue.",
		}),
	}
}

// The increment helpers tolerate a nil receiver so tests can run without a
// prometheus registry.

func (m *Metrics) IncDispatch(kind, outcome string) {
	if m == nil {
		return
	}
	m.DispatchTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) IncDeadLetter(reason string) {
	if m == nil {
		return
	}
	m.DeadLetterTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncSweepRun() {
	if m == nil {
		return
	}
	m.SweepRuns.Inc()
}

func (m *Metrics) AddSweepProcessed(n int) {
	if m == nil {
		return
	}
	m.SweepProcessed.Add(float64(n))
}

func (m *Metrics) IncEnqueued() {
	if m == nil {
		return
	}
	m.DispatchEnqueued.Inc()
}
