package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds the planner's prometheus instruments behind a
// private registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	PlansCreated     prometheus.Counter
	PlansExecuted    prometheus.Counter
	PlansCancelled   prometheus.Counter
	CatalogFallbacks prometheus.Counter
	StoreErrors      *prometheus.CounterVec

	RequestDuration *prometheus.HistogramVec
	StoreDuration   *prometheus.HistogramVec
}

// NewMetrics creates a fresh registry with all planner instruments
// registered.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	registry.MustRegister(collectors.NewGoCollector())

	return &Metrics{
		registry: registry,
		PlansCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "planner_plans_created_total",
			Help: "Planned expenses created.",
		}),
		PlansExecuted: factory.NewCounter(prometheus.CounterOpts{
			Name: "planner_plans_executed_total",
			Help: "Planned expenses executed into realized expenses.",
		}),
		PlansCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "planner_plans_cancelled_total",
			Help: "Planned expenses cancelled.",
		}),
		CatalogFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "planner_catalog_fallbacks_total",
			Help: "Requests served with the built-in default catalog.",
		}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_store_errors_total",
			Help: "Remote store failures by operation.",
		}, []string{"operation"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_store_request_duration_seconds",
			Help:    "Remote store call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CounterValue reads the current value of a counter. Used by the
// JSON metrics endpoint, which reports a snapshot rather than the
// full exposition format.
func CounterValue(c prometheus.Counter) int64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return int64(m.GetCounter().GetValue())
}

// CounterVecTotal sums a counter vec across all label values.
func CounterVecTotal(registry *prometheus.Registry, name string) int64 {
	families, err := registry.Gather()
	if err != nil {
		return 0
	}
	var total float64
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return int64(total)
}

// Registry exposes the private registry for snapshot helpers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
