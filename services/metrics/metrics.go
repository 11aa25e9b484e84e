package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "classroom"

// Metrics holds the collectors shared by the portal and the backend client.
type Metrics struct {
	registry *prometheus.Registry

	backendRequests *prometheus.HistogramVec
	httpRequests    *prometheus.HistogramVec
	gateDecisions   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		backendRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of calls to the classroom REST API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "portal",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of requests served by the portal.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "portal",
			Name:      "gate_decisions_total",
			Help:      "Session gate outcomes.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.backendRequests,
		m.httpRequests,
		m.gateDecisions,
	)
	return m
}

// ObserveBackend records one backend call. A status of 0 means the call never got a response.
func (m *Metrics) ObserveBackend(method, route string, status int, elapsed time.Duration) {
	m.backendRequests.WithLabelValues(method, route, statusLabel(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, statusLabel(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) CountGateDecision(outcome string) {
	m.gateDecisions.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
