// Package metrics exposes Prometheus instrumentation for the intake pipeline
// and provider health monitoring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Item outcome labels for IntakeItemsTotal.
const (
	OutcomeStored  = "stored"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// Metrics holds all collectors. Construct once at startup and inject - no
// package-level registration.
type Metrics struct {
	// IntakeItemsTotal counts processed documents per provider and outcome.
	IntakeItemsTotal *prometheus.CounterVec

	// IntakeErrorsTotal counts whole-provider intake failures.
	IntakeErrorsTotal *prometheus.CounterVec

	// ProviderUp reports the latest health check result (1=healthy, 0=unhealthy).
	ProviderUp *prometheus.GaugeVec

	// HealthCheckDuration measures health check round trips in seconds.
	HealthCheckDuration *prometheus.HistogramVec
}

// New registers all collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IntakeItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intakehub_intake_items_total",
				Help: "Total number of documents processed by the intake pipeline",
			},
			[]string{"provider", "outcome"},
		),
		IntakeErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intakehub_intake_errors_total",
				Help: "Total number of per-provider intake failures",
			},
			[]string{"provider"},
		),
		ProviderUp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "intakehub_provider_up",
				Help: "Latest provider health check result (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),
		HealthCheckDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intakehub_health_check_duration_seconds",
				Help:    "Duration of provider health checks in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"provider"},
		),
	}
}
