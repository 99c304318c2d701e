// Package metrics holds the gateway's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ai_doctor"

type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the gateway metrics on registry, or on a fresh registry
// when nil.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Gateway chat requests by provider and response status.",
		}, []string{"provider", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Gateway chat request latency, including the upstream call.",
			// LLM latencies run from sub-second to tens of seconds.
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider"}),
	}

	registry.MustRegister(m.requests, m.duration)
	return m
}

// ObserveRequest records one finished chat request. provider is empty when
// the request failed before a provider was chosen.
func (m *Metrics) ObserveRequest(provider string, status int, elapsed time.Duration) {
	if provider == "" {
		provider = "none"
	}
	m.requests.WithLabelValues(provider, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RequestCounter returns the request counter for one provider/status pair.
func (m *Metrics) RequestCounter(provider, status string) prometheus.Counter {
	return m.requests.WithLabelValues(provider, status)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
