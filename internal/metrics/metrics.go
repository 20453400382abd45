// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors on their own registry so multiple
// instances (and tests) never collide on the default one.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	MutationsTotal  *prometheus.CounterVec
	SyncRefreshes   prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
}

// New creates the registry and all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "healthvault",
				Name:      "http_requests_total",
				Help:      "Count of HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "healthvault",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		MutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "healthvault",
				Name:      "record_mutations_total",
				Help:      "Count of record writes by collection and action.",
			},
			[]string{"collection", "action"},
		),
		SyncRefreshes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "healthvault",
				Name:      "sync_refreshes_total",
				Help:      "Count of background snapshot refreshes.",
			},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "healthvault",
				Name:      "errors_total",
				Help:      "Count of errors by component.",
			},
			[]string{"component"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
