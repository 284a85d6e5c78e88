package executor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the executor's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	batches   *prometheus.CounterVec
	renames   *prometheus.CounterVec
	rollbacks prometheus.Counter
	duration  prometheus.Histogram
}

// NewMetrics registers the executor collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		batches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "axon",
			Subsystem: "executor",
			Name:      "batches_total",
			Help:      "Batches executed, by mode and outcome.",
		}, []string{"mode", "outcome"}),
		renames: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "axon",
			Subsystem: "executor",
			Name:      "renames_total",
			Help:      "Rename steps attempted, by step and outcome.",
		}, []string{"step", "outcome"}),
		rollbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: "axon",
			Subsystem: "executor",
			Name:      "rollbacks_total",
			Help:      "Batches that were rolled back after a failure.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "axon",
			Subsystem: "executor",
			Name:      "batch_duration_seconds",
			Help:      "Wall time spent executing a batch.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}

func (m *Metrics) observe(rec *Record, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(rec.Mode.String(), string(rec.Outcome)).Inc()
	for _, e := range rec.Entries {
		if e.Step != StepCheck {
			m.renames.WithLabelValues(string(e.Step), string(e.Outcome)).Inc()
		}
	}
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) rolledBack() {
	if m == nil {
		return
	}
	m.rollbacks.Inc()
}
