package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string][]metricdata.DataPoint[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string][]metricdata.DataPoint[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum.DataPoints
			}
		}
	}
	return out
}

func TestAlertMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background()) //nolint:errcheck

	m, err := NewAlertMetricsFrom(mp)
	if err != nil {
		t.Fatalf("NewAlertMetricsFrom: %v", err)
	}

	ctx := context.Background()
	m.AlertCreated(ctx, "below_par")
	m.AlertCreated(ctx, "below_par")
	m.AlertCreated(ctx, "expired")
	m.ScanFailed(ctx)

	sums := collectSums(t, reader)

	byType := map[string]int64{}
	for _, dp := range sums["alerts_created"] {
		v, _ := dp.Attributes.Value(attribute.Key("type"))
		byType[v.AsString()] = dp.Value
	}
	if byType["below_par"] != 2 || byType["expired"] != 1 {
		t.Fatalf("alerts_created by type = %v", byType)
	}

	failures := sums["alert_scan_failures"]
	if len(failures) != 1 || failures[0].Value != 1 {
		t.Fatalf("alert_scan_failures = %+v", failures)
	}
}
