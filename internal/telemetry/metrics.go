package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client-side counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	stale    *prometheus.CounterVec
}

// NewMetrics registers the collectors on registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unig",
			Name:      "gateway_requests_total",
			Help:      "Gateway requests by gateway, operation and outcome.",
		}, []string{"gateway", "op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "unig",
			Name:      "gateway_request_duration_seconds",
			Help:      "Gateway request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"gateway", "op"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unig",
			Name:      "stale_completions_total",
			Help:      "Completions discarded because a newer request superseded them.",
		}, []string{"component"}),
	}
	registry.MustRegister(m.requests, m.latency, m.stale)
	return m
}

// ObserveRequest records one finished gateway request
func (m *Metrics) ObserveRequest(gateway, op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(gateway, op, outcome).Inc()
	m.latency.WithLabelValues(gateway, op).Observe(elapsed.Seconds())
}

// StaleCompletion counts a discarded completion for component
func (m *Metrics) StaleCompletion(component string) {
	if m == nil {
		return
	}
	m.stale.WithLabelValues(component).Inc()
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
