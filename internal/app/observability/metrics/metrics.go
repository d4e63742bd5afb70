package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	AuthRequestsTotal       metric.Int64Counter
	SessionTransitionsTotal metric.Int64Counter
	GuardDecisionsTotal     metric.Int64Counter
	WizardTransitionsTotal  metric.Int64Counter
	WizardSubmissionsTotal  metric.Int64Counter
	BackendRequestDuration  metric.Float64Histogram
	StorageErrorsTotal      metric.Int64Counter
	ActiveClientsGauge      metric.Int64Gauge
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments once, from the globally
// configured MeterProvider. Before the SDK is installed the global provider is a no-op,
// which is what tests get.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("rms-templui")
		m := &AppMetrics{}
		var err error

		m.AuthRequestsTotal, err = meter.Int64Counter(
			"auth_requests_total",
			metric.WithDescription("Total number of sign-in and sign-out requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_requests_total: %v", err)
		}

		m.SessionTransitionsTotal, err = meter.Int64Counter(
			"session_transitions_total",
			metric.WithDescription("Auth state machine transitions"),
			metric.WithUnit("{transition}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create session_transitions_total: %v", err)
		}

		m.GuardDecisionsTotal, err = meter.Int64Counter(
			"guard_decisions_total",
			metric.WithDescription("Route guard decisions by action"),
			metric.WithUnit("{decision}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create guard_decisions_total: %v", err)
		}

		m.WizardTransitionsTotal, err = meter.Int64Counter(
			"wizard_transitions_total",
			metric.WithDescription("Registration wizard step transitions"),
			metric.WithUnit("{transition}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create wizard_transitions_total: %v", err)
		}

		m.WizardSubmissionsTotal, err = meter.Int64Counter(
			"wizard_submissions_total",
			metric.WithDescription("Registration submissions by outcome"),
			metric.WithUnit("{submission}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create wizard_submissions_total: %v", err)
		}

		m.BackendRequestDuration, err = meter.Float64Histogram(
			"backend_request_duration_seconds",
			metric.WithDescription("Duration of REST backend calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create backend_request_duration_seconds: %v", err)
		}

		m.StorageErrorsTotal, err = meter.Int64Counter(
			"storage_errors_total",
			metric.WithDescription("Durable storage read/write failures"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create storage_errors_total: %v", err)
		}

		m.ActiveClientsGauge, err = meter.Int64Gauge(
			"active_clients_current",
			metric.WithDescription("Browser contexts currently held in memory"),
			metric.WithUnit("{client}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create active_clients_current: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing it on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
