package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	CatalogLoads *prometheus.CounterVec
	CatalogApps  prometheus.Gauge

	Creations        *prometheus.CounterVec
	DependencyChecks *prometheus.CounterVec
	Notifications    *prometheus.CounterVec

	WSConnections prometheus.Gauge
}

// New creates metrics registered on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates metrics registered on reg. Tests pass a fresh registry to
// avoid duplicate-registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "explore_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "explore_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		CatalogLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "explore_catalog_loads_total",
				Help: "Catalog load attempts by result",
			},
			[]string{"result"},
		),
		CatalogApps: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "explore_catalog_apps",
				Help: "Template apps in the current catalog snapshot",
			},
		),
		Creations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "explore_creations_total",
				Help: "App creation attempts by result",
			},
			[]string{"result"},
		),
		DependencyChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "explore_dependency_checks_total",
				Help: "Plugin dependency checks by result",
			},
			[]string{"result"},
		),
		Notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "explore_notifications_total",
				Help: "Toast notifications by kind",
			},
			[]string{"kind"},
		),
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "explore_ws_connections",
				Help: "Connected notification stream clients",
			},
		),
	}
}
