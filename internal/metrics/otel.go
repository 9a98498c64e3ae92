package metrics

import (
	"context"
	"log"
	"sync"

	"github.com/ca-srg/websearch/internal/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	otelMetricsOnce       sync.Once
	otelRegistrationError error
)

// InitOTelMetrics registers an observable gauge reporting cumulative search
// counts from SQLite. Call after observability.Init().
func InitOTelMetrics() error {
	otelMetricsOnce.Do(func() {
		meter := otel.Meter("websearch/metrics")

		_, err := meter.Int64ObservableGauge(
			"websearch.searches.total",
			metric.WithDescription("Cumulative total searches by provider"),
			metric.WithUnit("{searches}"),
			metric.WithInt64Callback(searchCountCallback),
		)
		if err != nil {
			log.Printf("metrics: failed to create search gauge: %v", err)
			otelRegistrationError = err
			return
		}
	})
	return otelRegistrationError
}

// searchCountCallback is called by the OTel SDK to collect current values.
func searchCountCallback(_ context.Context, observer metric.Int64Observer) error {
	stats := GetStats()
	if stats == nil {
		// Store not initialized, report zeros
		for _, provider := range types.AllProviders() {
			observer.Observe(0, metric.WithAttributes(
				attribute.String("provider", string(provider)),
			))
		}
		return nil
	}

	for provider, count := range stats {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("provider", provider),
		))
	}

	return nil
}
