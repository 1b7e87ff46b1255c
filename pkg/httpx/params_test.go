package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestUUIDParam(t *testing.T) {
	id := uuid.New()
	r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String())
	w := httptest.NewRecorder()

	got, ok := UUIDParam(w, r, "id")
	if !ok || got != id {
		t.Fatalf("UUIDParam() = %v, %v; want %v, true", got, ok, id)
	}
}

func TestUUIDParam_Invalid(t *testing.T) {
	r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "nope")
	w := httptest.NewRecorder()

	if _, ok := UUIDParam(w, r, "id"); ok {
		t.Fatal("expected invalid UUID to be rejected")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   int
		wantOK bool
	}{
		{"absent uses default", "/?", 90, true},
		{"parsed", "/?days=30", 30, true},
		{"malformed", "/?days=soon", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			got, ok := QueryInt(w, httptest.NewRequest(http.MethodGet, tt.url, nil), "days", 90)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("QueryInt() = %d, %v; want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestQueryBool(t *testing.T) {
	w := httptest.NewRecorder()
	got, ok := QueryBool(w, httptest.NewRequest(http.MethodGet, "/?is_read=false", nil), "is_read")
	if !ok || got == nil || *got {
		t.Fatalf("QueryBool() = %v, %v; want false, true", got, ok)
	}

	got, ok = QueryBool(w, httptest.NewRequest(http.MethodGet, "/", nil), "is_read")
	if !ok || got != nil {
		t.Fatalf("QueryBool() absent = %v, %v; want nil, true", got, ok)
	}
}
