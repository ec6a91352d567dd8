package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the web API.
type Metrics struct {
	ScenarioCalculations *prometheus.CounterVec   // labels: outcome={success,invalid_class,bad_request,error}
	WeatherRequests      *prometheus.CounterVec   // labels: provider, outcome={success,error}
	RequestDuration      *prometheus.HistogramVec // labels: route
}

// NewMetrics creates and registers all API metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ScenarioCalculations,
		m.WeatherRequests,
		m.RequestDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ScenarioCalculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lcz_planner",
			Name:      "scenario_calculations_total",
			Help:      "Scenario calculations by outcome.",
		}, []string{"outcome"}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lcz_planner",
			Name:      "weather_requests_total",
			Help:      "Weather provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lcz_planner",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"}),
	}
}
