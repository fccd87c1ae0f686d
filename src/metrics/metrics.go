// Package metrics exposes query counters and latencies for the catalog
// service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the service collectors with their prometheus registry.
type Registry struct {
	reg       *prometheus.Registry
	queries   *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// New builds a registry with the standard Go runtime collectors plus the
// query instruments.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gogreen",
		Name:      "queries_total",
		Help:      "Catalog queries served, by operation.",
	}, []string{"op"})
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gogreen",
		Name:      "query_duration_seconds",
		Help:      "Catalog query latency, by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	reg.MustRegister(queries, durations)

	return &Registry{reg: reg, queries: queries, durations: durations}
}

// ObserveQuery records one served query.
func (r *Registry) ObserveQuery(op string, d time.Duration) {
	r.queries.WithLabelValues(op).Inc()
	r.durations.WithLabelValues(op).Observe(d.Seconds())
}

// Handler serves the scrape endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
