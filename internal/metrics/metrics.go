// Package metrics holds the Prometheus metrics of the planner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Expansion outcomes.
const (
	ExpansionOK      = "ok"
	ExpansionMaximum = "maximum"
	ExpansionEmpty   = "empty"
	ExpansionError   = "error"
)

// Operation statuses.
const (
	StatusSuccess = "success"
	StatusThawing = "thawing"
	StatusFailure = "failure"
)

// Metrics holds all Prometheus metrics for the planner.
// A nil *Metrics records nothing.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec   // s3copy_operations_total{operation,status}
	OperationDuration *prometheus.HistogramVec // s3copy_operation_duration_seconds{operation}

	ObjectsResolved    prometheus.Counter     // s3copy_objects_resolved_total
	WildcardExpansions *prometheus.CounterVec // s3copy_wildcard_expansions_total{outcome}

	RestoresIssued *prometheus.CounterVec // s3copy_restores_issued_total{tier,speed}
	ObjectsThawing prometheus.Gauge       // s3copy_objects_thawing
}

// New creates the metrics and registers them with registry.
// A nil registry uses prometheus.DefaultRegisterer.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "s3copy_operations_total",
			Help: "Total planner calls by operation and status",
		}, []string{"operation", "status"}),

		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "s3copy_operation_duration_seconds",
			Help:    "Planner call duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		ObjectsResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "s3copy_objects_resolved_total",
			Help: "Total objects resolved into copy instructions",
		}),

		WildcardExpansions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "s3copy_wildcard_expansions_total",
			Help: "Total wildcard expansions by outcome",
		}, []string{"outcome"}),

		RestoresIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "s3copy_restores_issued_total",
			Help: "Total restore requests issued by archive tier and speed",
		}, []string{"tier", "speed"}),

		ObjectsThawing: factory.NewGauge(prometheus.GaugeOpts{
			Name: "s3copy_objects_thawing",
			Help: "Objects still thawing as of the last gate call",
		}),
	}
}

// RecordOperation records a finished planner call.
func (m *Metrics) RecordOperation(operation, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordResolved adds n resolved objects.
func (m *Metrics) RecordResolved(n int) {
	if m == nil {
		return
	}
	m.ObjectsResolved.Add(float64(n))
}

// RecordExpansion records the outcome of one wildcard expansion.
func (m *Metrics) RecordExpansion(outcome string) {
	if m == nil {
		return
	}
	m.WildcardExpansions.WithLabelValues(outcome).Inc()
}

// RecordRestore records one issued restore request.
func (m *Metrics) RecordRestore(tier, speed string) {
	if m == nil {
		return
	}
	m.RestoresIssued.WithLabelValues(tier, speed).Inc()
}

// SetThawing updates the still-thawing gauge.
func (m *Metrics) SetThawing(count int) {
	if m == nil {
		return
	}
	m.ObjectsThawing.Set(float64(count))
}
