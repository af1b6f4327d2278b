// Package metrics exposes Prometheus collectors for the HTTP layer and the
// task domain.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "task_manager"

// Metrics holds every collector on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	accessDenied   *prometheus.CounterVec
	historyEntries *prometheus.CounterVec
	historyPurged  prometheus.Counter
}

// New registers the collectors together with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		accessDenied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_denied_total",
			Help:      "Operations refused by the access policy.",
		}, []string{"operation"}),
		historyEntries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_entries_total",
			Help:      "Task history entries written by field.",
		}, []string{"field"}),
		historyPurged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_purged_total",
			Help:      "Task history entries removed by retention.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Denied counts a policy refusal.
func (m *Metrics) Denied(operation string) {
	m.accessDenied.WithLabelValues(operation).Inc()
}

// HistoryWritten counts n history entries for field.
func (m *Metrics) HistoryWritten(field string, n int) {
	if n <= 0 {
		return
	}
	m.historyEntries.WithLabelValues(field).Add(float64(n))
}

// HistoryPurged counts entries removed by retention.
func (m *Metrics) HistoryPurged(n int64) {
	if n <= 0 {
		return
	}
	m.historyPurged.Add(float64(n))
}
