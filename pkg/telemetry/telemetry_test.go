package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"

	"github.com/ghuser/emssupply/pkg/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		ServiceName:    "emssupply-test",
		ServiceVersion: "test",
		Environment:    config.EnvTesting,
	}
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	return rr.Body.String()
}

func TestSetup_ServesMetrics(t *testing.T) {
	ctx := context.Background()
	shutdown, handler, err := Setup(ctx, baseConfig())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(ctx) })

	if fields := otel.GetTextMapPropagator().Fields(); len(fields) == 0 {
		t.Error("expected a trace propagator to be installed")
	}

	m, err := NewAlertMetrics()
	if err != nil {
		t.Fatalf("alert metrics: %v", err)
	}
	m.AlertCreated(ctx, "low_stock")
	m.ScanFailed(ctx)

	body := scrape(t, handler)
	for _, want := range []string{"alerts_created", "alert_scan_failures", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestSetup_Twice(t *testing.T) {
	ctx := context.Background()
	for range 2 {
		shutdown, _, err := Setup(ctx, baseConfig())
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := shutdown(ctx); err != nil {
			t.Fatalf("shutdown: %v", err)
		}
	}
}

func TestSetupSentry_NoDSN(t *testing.T) {
	if err := SetupSentry(baseConfig()); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestScrubEvent(t *testing.T) {
	event := &sentry.Event{Request: &sentry.Request{
		Headers: map[string]string{"Authorization": "Bearer abc", "Accept": "application/json"},
		Cookies: "session=1",
	}}

	got := scrubEvent(event, nil)
	if got.Request.Headers["Authorization"] != "[Filtered]" {
		t.Errorf("Authorization not filtered: %q", got.Request.Headers["Authorization"])
	}
	if got.Request.Headers["Accept"] != "application/json" {
		t.Error("unrelated headers must be kept")
	}
	if got.Request.Cookies != "" {
		t.Error("cookies not dropped")
	}
	if scrubEvent(&sentry.Event{}, nil) == nil {
		t.Error("events without a request pass through")
	}
}
