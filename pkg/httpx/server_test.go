package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ghuser/emssupply/pkg/httpx"
)

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(cfg httpx.ServerConfig) http.Handler {
	r := httpx.NewRouter(cfg, passthrough, passthrough, passthrough, passthrough)
	r.Post("/usage", func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/alerts", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestSecurityHeaders(t *testing.T) {
	h := httpx.SecurityHeaders(false)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	checks := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'",
	}
	for header, expected := range checks {
		if got := rr.Header().Get(header); got != expected {
			t.Errorf("%s: got %q, want %q", header, got, expected)
		}
	}
}

func TestRouter_BodyLimit(t *testing.T) {
	r := newTestRouter(httpx.ServerConfig{MaxBodyBytes: 16})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/usage", strings.NewReader(`{"a":1}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("small body: expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/usage", strings.NewReader(strings.Repeat("x", 64))))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("large body: expected 400, got %d", rr.Code)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	r := newTestRouter(httpx.ServerConfig{RequestsPerMinute: 2})

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/alerts", http.NoBody)
		req.RemoteAddr = "10.0.0.7:5000"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes[i] = rr.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("first two requests: got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request: expected 429, got %d", codes[2])
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(httpx.ServerConfig{CORSAllowedOrigins: "https://ops.example.org, http://localhost:3000"})

	req := httptest.NewRequest(http.MethodOptions, "/alerts", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin: got %q", got)
	}
}

func TestNewServer(t *testing.T) {
	srv := httpx.NewServer(httpx.ServerConfig{Addr: ":9090", HandlerTimeout: 10 * time.Second}, http.NotFoundHandler())

	if srv.Addr != ":9090" {
		t.Errorf("Addr: got %q", srv.Addr)
	}
	if srv.WriteTimeout != 15*time.Second {
		t.Errorf("WriteTimeout: got %v", srv.WriteTimeout)
	}

	def := httpx.NewServer(httpx.ServerConfig{}, http.NotFoundHandler())
	if def.WriteTimeout != 35*time.Second {
		t.Errorf("default WriteTimeout: got %v", def.WriteTimeout)
	}
}
