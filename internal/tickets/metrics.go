package tickets

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the sink for issuance instrumentation. It is passed to the
// service as an explicit collaborator.
type Metrics interface {
	// RecordDependencyCall counts one verification call against an
	// external service, labelled by outcome.
	RecordDependencyCall(service, outcome string)

	// RecordCreation records the overall duration and outcome of one
	// ticket creation run.
	RecordCreation(outcome string, duration time.Duration)
}

type prometheusMetrics struct {
	dependencyCalls  *prometheus.CounterVec
	creationDuration *prometheus.HistogramVec
}

// NewMetrics creates Prometheus-backed metrics registered on the given
// registerer. Tests pass a private registry to avoid collisions.
func NewMetrics(reg prometheus.Registerer) Metrics {
	m := &prometheusMetrics{
		dependencyCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_dependency_calls_total",
				Help: "Verification calls to external services by outcome",
			},
			[]string{"service", "outcome"},
		),
		creationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticket_creation_duration_seconds",
				Help:    "End-to-end duration of ticket creation runs by outcome",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.dependencyCalls, m.creationDuration)
	return m
}

func (m *prometheusMetrics) RecordDependencyCall(service, outcome string) {
	m.dependencyCalls.WithLabelValues(service, outcome).Inc()
}

func (m *prometheusMetrics) RecordCreation(outcome string, duration time.Duration) {
	m.creationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}
