package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Pinger is any dependency the health endpoint can probe: the database pool,
// Redis and the event bus all qualify.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck names one dependency.
type HealthCheck struct {
	Name   string
	Pinger Pinger
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
} // @name HealthResponse

// HealthHandler probes every check concurrently, each bounded by timeout.
// Any failure makes the status "degraded" and the response a 503.
func HealthHandler(timeout time.Duration, checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, c := range checks {
			wg.Add(1)
			go func() {
				defer wg.Done()
				state := "ok"
				if err := c.Pinger.Ping(ctx); err != nil {
					state = "unreachable"
				}
				mu.Lock()
				defer mu.Unlock()
				resp.Checks[c.Name] = state
				if state != "ok" {
					resp.Status = "degraded"
				}
			}()
		}
		wg.Wait()

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
