package boundary

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts boundary activity. It is process-wide because Contain is a
// free function usable from any entry point.
type Metrics struct {
	registry *prometheus.Registry

	calls           *prometheus.CounterVec
	panics          *prometheus.CounterVec
	marshalFailures *prometheus.CounterVec
	errorObjects    *prometheus.CounterVec
}

func newMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "awbridge",
			Name:      "entry_calls_total",
			Help:      "Boundary entry point invocations.",
		}, []string{"op"}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "awbridge",
			Name:      "contained_panics_total",
			Help:      "Panics recovered at the boundary.",
		}, []string{"op"}),
		marshalFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "awbridge",
			Name:      "marshal_failures_total",
			Help:      "Text conversions across the boundary that failed.",
		}, []string{"direction"}),
		errorObjects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "awbridge",
			Name:      "error_objects_total",
			Help:      "Structured error objects returned to the host.",
		}, []string{"op"}),
	}
	m.registry.MustRegister(m.calls, m.panics, m.marshalFailures, m.errorObjects)
	return m
}

var metrics = newMetrics()

// Gatherer exposes boundary metrics, served by the HTTP service on /metrics.
func Gatherer() prometheus.Gatherer {
	return metrics.registry
}
