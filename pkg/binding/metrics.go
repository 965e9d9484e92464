package binding

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Binding kinds used as metric labels and log attributes.
const (
	KindExplicit  = "explicit"
	KindImplicit  = "implicit"
	KindComposite = "composite"
)

// Binding outcomes used as metric labels.
const (
	OutcomeResolved  = "resolved"
	OutcomeRecovered = "recovered"
	OutcomeFailed    = "failed"
)

// Metrics records binding resolution counters and latencies.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	resolutions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates binding metrics and registers them with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	resolver := binding.NewResolver(registry,
//	    binding.WithMetrics(binding.NewMetrics(reg)),
//	)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "routebind",
				Subsystem: "binding",
				Name:      "resolutions_total",
				Help:      "Total number of binder invocations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "routebind",
				Subsystem: "binding",
				Name:      "duration_seconds",
				Help:      "Duration of binder invocations in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(m.resolutions, m.duration)
	return m
}

func (m *Metrics) observe(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
