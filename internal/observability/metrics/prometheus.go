// Package metrics provides Prometheus metrics for the intake service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	RecordsCreated       prometheus.Counter
	RecordsDeleted       prometheus.Counter
	SubmissionsRejected  prometheus.Counter
	DuplicateSubmissions prometheus.Counter
	StatsQueries         prometheus.Counter
	Exports              *prometheus.CounterVec
	CacheFallbacks       prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
	OutboxPending        prometheus.Gauge
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates and registers all metrics.
func New() *Metrics {
	m := &Metrics{
		RecordsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "records_created_total",
			Help: "Total patient records created",
		}),
		RecordsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "records_deleted_total",
			Help: "Total patient records deleted",
		}),
		SubmissionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submissions_rejected_total",
			Help: "Total intake submissions rejected by validation",
		}),
		DuplicateSubmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submissions_duplicate_total",
			Help: "Total intake submissions rejected as duplicates",
		}),
		StatsQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stats_queries_total",
			Help: "Total statistics reports built",
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Total CSV and print exports by kind",
		}, []string{"kind"}),
		CacheFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_fallbacks_total",
			Help: "Total reads served from the local cache because the remote store was unreachable",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"route", "method"}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_pending_entries",
			Help: "Pending outbox entries",
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	prometheus.MustRegister(
		m.RecordsCreated,
		m.RecordsDeleted,
		m.SubmissionsRejected,
		m.DuplicateSubmissions,
		m.StatsQueries,
		m.Exports,
		m.CacheFallbacks,
		m.RequestDuration,
		m.OutboxPending,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
