// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	// APIRequests counts finance API calls by request kind and outcome.
	APIRequests *prometheus.CounterVec
	// APILatency observes finance API call duration by request kind.
	APILatency *prometheus.HistogramVec
	// Refreshes counts portfolio refreshes by outcome.
	Refreshes *prometheus.CounterVec
	// PortfolioValue is the last computed total portfolio value.
	PortfolioValue prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		APIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "api_requests_total",
			Help:      "Finance API requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		APILatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "folio",
			Name:      "api_request_duration_seconds",
			Help:      "Finance API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		Refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "refreshes_total",
			Help:      "Portfolio refreshes by outcome.",
		}, []string{"outcome"}),
		PortfolioValue: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "folio",
			Name:      "portfolio_value",
			Help:      "Total portfolio value in the configured currency.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
