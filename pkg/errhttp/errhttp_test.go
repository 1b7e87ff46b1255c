package errhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ghuser/emssupply/pkg/logger"
	alertsdomain "github.com/ghuser/emssupply/services/alerts/domain"
	catalogdomain "github.com/ghuser/emssupply/services/catalog/domain"
	identitydomain "github.com/ghuser/emssupply/services/identity/domain"
	ledgerdomain "github.com/ghuser/emssupply/services/ledger/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ErrOrderNotFound", ledgerdomain.ErrOrderNotFound, http.StatusNotFound},
		{"ErrLocationNotFound", ledgerdomain.ErrLocationNotFound, http.StatusNotFound},
		{"ErrInventoryExists", ledgerdomain.ErrInventoryExists, http.StatusConflict},
		{"ErrOrderNumberConflict", ledgerdomain.ErrOrderNumberConflict, http.StatusConflict},
		{"ErrInsufficientStock", ledgerdomain.ErrInsufficientStock, http.StatusBadRequest},
		{"ErrInvalidOrderState", ledgerdomain.ErrInvalidOrderState, http.StatusBadRequest},
		{"ErrAlertNotFound", alertsdomain.ErrAlertNotFound, http.StatusNotFound},
		{"ErrInvalidFilter", alertsdomain.ErrInvalidFilter, http.StatusBadRequest},
		{"ErrEmailTaken", identitydomain.ErrEmailTaken, http.StatusConflict},
		{"ErrInvalidCredentials", identitydomain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"ErrCategoryNotFound", catalogdomain.ErrCategoryNotFound, http.StatusNotFound},
		{"wrapped ErrInsufficientStock", fmt.Errorf("%w for Gauze 4x4", ledgerdomain.ErrInsufficientStock), http.StatusBadRequest},
		{"wrapped ErrOrderNotFound", fmt.Errorf("get order: %w", ledgerdomain.ErrOrderNotFound), http.StatusNotFound},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(context.Background(), w, logger.NewWithWriter(&bytes.Buffer{}, "error"), tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	msg, ok := body["error"]
	if !ok {
		t.Fatal("response body missing 'error' key")
	}
	return msg
}

func TestWriteError_ClientMessages(t *testing.T) {
	log := logger.NewWithWriter(&bytes.Buffer{}, "error")

	w := httptest.NewRecorder()
	WriteError(context.Background(), w, log, fmt.Errorf("%w: Gauze 4x4 has 1, need 3", ledgerdomain.ErrInsufficientStock))
	if got := decodeError(t, w); got != "insufficient quantity: Gauze 4x4 has 1, need 3" {
		t.Fatalf("4xx message = %q", got)
	}

	w = httptest.NewRecorder()
	WriteError(context.Background(), w, log, fmt.Errorf("lookup user: %w", identitydomain.ErrInvalidCredentials))
	if got := decodeError(t, w); got != "Invalid credentials" {
		t.Fatalf("fixed message = %q", got)
	}
}

func TestWriteError_InternalErrorsAreLoggedNotLeaked(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()
	WriteError(context.Background(), w, logger.NewWithWriter(&buf, "error"), errors.New("pq: relation \"orders\" does not exist"))

	if got := decodeError(t, w); got != "Internal Server Error" {
		t.Fatalf("expected generic message, got %q", got)
	}
	if !strings.Contains(buf.String(), "relation") {
		t.Fatalf("expected full error in log, got %q", buf.String())
	}
}
