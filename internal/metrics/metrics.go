// Package metrics registers the ratesmap Prometheus collectors and exposes
// the /metrics handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ratesmap_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "status"})
	HTTPRequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ratesmap_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	FilterEditsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ratesmap_filter_edits_total",
		Help: "Filter edit requests by type (value or category)",
	}, []string{"type"})
	FilterEvalDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ratesmap_filter_eval_duration_ms",
		Help:    "Filter evaluation duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500},
	})
	VisibleProperties = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ratesmap_visible_properties",
		Help: "Number of properties passing the committed filter",
	})
	LoadedProperties = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ratesmap_loaded_properties",
		Help: "Number of property records loaded into the engine",
	})
	SyncRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ratesmap_sync_runs_total",
		Help: "Total source sync runs by source and outcome",
	}, []string{"source", "outcome"})
	SyncRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ratesmap_sync_rows_total",
		Help: "Total rows upserted by source",
	}, []string{"source"})
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDurationMs)
	prometheus.MustRegister(FilterEditsTotal)
	prometheus.MustRegister(FilterEvalDurationMs)
	prometheus.MustRegister(VisibleProperties)
	prometheus.MustRegister(LoadedProperties)
	prometheus.MustRegister(SyncRunsTotal)
	prometheus.MustRegister(SyncRowsTotal)
}

// Handler returns the Prometheus scrape handler for mounting at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
