package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const alertsMeterName = "github.com/ghuser/emssupply/alerts"

// AlertMetrics counts alert generator outcomes. The Prometheus exporter
// publishes them as alerts_created_total{type} and alert_scan_failures_total.
type AlertMetrics struct {
	created  metric.Int64Counter
	failures metric.Int64Counter
}

// NewAlertMetrics registers the counters on the global meter provider.
func NewAlertMetrics() (*AlertMetrics, error) {
	return NewAlertMetricsFrom(otel.GetMeterProvider())
}

// NewAlertMetricsFrom registers the counters on mp.
func NewAlertMetricsFrom(mp metric.MeterProvider) (*AlertMetrics, error) {
	meter := mp.Meter(alertsMeterName)

	created, err := meter.Int64Counter("alerts_created",
		metric.WithDescription("Alerts inserted by the generator, by type."),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, fmt.Errorf("alerts_created counter: %w", err)
	}
	failures, err := meter.Int64Counter("alert_scan_failures",
		metric.WithDescription("Alert scans that failed, counted per agency."),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return nil, fmt.Errorf("alert_scan_failures counter: %w", err)
	}
	return &AlertMetrics{created: created, failures: failures}, nil
}

func (m *AlertMetrics) AlertCreated(ctx context.Context, alertType string) {
	m.created.Add(ctx, 1, metric.WithAttributes(attribute.String("type", alertType)))
}

func (m *AlertMetrics) ScanFailed(ctx context.Context) {
	m.failures.Add(ctx, 1)
}
