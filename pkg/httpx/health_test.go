package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghuser/emssupply/pkg/httpx"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type blockingPinger struct{}

func (blockingPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func probe(t *testing.T, h http.HandlerFunc) (int, httpx.HealthResponse) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	var resp httpx.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rr.Code, resp
}

func TestHealthHandler_AllHealthy(t *testing.T) {
	code, resp := probe(t, httpx.HealthHandler(time.Second,
		httpx.HealthCheck{Name: "database", Pinger: stubPinger{}},
		httpx.HealthCheck{Name: "redis", Pinger: stubPinger{}},
		httpx.HealthCheck{Name: "event_bus", Pinger: stubPinger{}},
	))

	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.Status != "ok" || len(resp.Checks) != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHealthHandler_Degraded(t *testing.T) {
	code, resp := probe(t, httpx.HealthHandler(time.Second,
		httpx.HealthCheck{Name: "database", Pinger: stubPinger{}},
		httpx.HealthCheck{Name: "redis", Pinger: stubPinger{err: errors.New("connection refused")}},
	))

	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if resp.Status != "degraded" {
		t.Errorf("status: got %q", resp.Status)
	}
	if resp.Checks["redis"] != "unreachable" || resp.Checks["database"] != "ok" {
		t.Errorf("checks: %v", resp.Checks)
	}
}

func TestHealthHandler_Timeout(t *testing.T) {
	code, resp := probe(t, httpx.HealthHandler(10*time.Millisecond,
		httpx.HealthCheck{Name: "event_bus", Pinger: blockingPinger{}},
	))

	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if resp.Checks["event_bus"] != "unreachable" {
		t.Errorf("checks: %v", resp.Checks)
	}
}
