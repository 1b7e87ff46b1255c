package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	appsvcs "github.com/ghuser/emssupply/services/alerts/application/services"
	"github.com/ghuser/emssupply/services/alerts/domain/models"
	"github.com/ghuser/emssupply/services/alerts/infrastructure/persistence/memory"
)

func newRouter(t *testing.T, agencyID uuid.UUID) http.Handler {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "error")
	store := memory.NewStore()
	store.AddAgency(models.AgencyScan{AgencyID: agencyID}, true)
	store.SetCandidates(agencyID,
		models.Candidate{SupplyID: uuid.New(), SupplyName: "Gauze 4x4", LocationType: "unit", LocationID: uuid.New(), Quantity: 3, ParLevel: 10},
		models.Candidate{SupplyID: uuid.New(), SupplyName: "Nasal Cannula", LocationType: "unit", LocationID: uuid.New(), Quantity: 0, ParLevel: 4},
	)

	r := chi.NewRouter()
	Routes(r, &appsvcs.Services{
		Alerts:    appsvcs.NewAlertService(store),
		Generator: appsvcs.NewGenerator(store, store, nil, log),
	}, log)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, p auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type alertList struct {
	Alerts []struct {
		ID       uuid.UUID `json:"id"`
		Severity string    `json:"severity"`
		IsRead   bool      `json:"is_read"`
	} `json:"alerts"`
}

func list(t *testing.T, h http.Handler, path string, p auth.Principal) alertList {
	t.Helper()
	rec := do(t, h, http.MethodGet, path, p)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d (body %s)", path, rec.Code, rec.Body)
	}
	var out alertList
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestAlertRoutes(t *testing.T) {
	agencyID := uuid.New()
	h := newRouter(t, agencyID)
	admin := auth.Principal{UserID: uuid.New(), AgencyID: agencyID, Role: auth.RoleAdmin}
	medic := auth.Principal{UserID: uuid.New(), AgencyID: agencyID, Role: auth.RoleMedic}

	if rec := do(t, h, http.MethodPost, "/admin/alerts/scan", medic); rec.Code != http.StatusForbidden {
		t.Fatalf("medic scan status = %d, want 403", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/admin/alerts/scan", admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("scan status = %d (body %s)", rec.Code, rec.Body)
	}
	var scan struct {
		Created int `json:"created"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&scan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if scan.Created != 2 {
		t.Fatalf("created = %d, want 2", scan.Created)
	}

	all := list(t, h, "/alerts", medic)
	if len(all.Alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(all.Alerts))
	}
	critical := list(t, h, "/alerts?severity=critical", medic)
	if len(critical.Alerts) != 1 {
		t.Fatalf("critical alerts = %d, want 1", len(critical.Alerts))
	}

	if rec := do(t, h, http.MethodPut, "/alerts/"+all.Alerts[0].ID.String()+"/read", medic); rec.Code != http.StatusOK {
		t.Fatalf("mark read status = %d", rec.Code)
	}
	if unread := list(t, h, "/alerts?is_read=false", medic); len(unread.Alerts) != 1 {
		t.Fatalf("unread = %d, want 1", len(unread.Alerts))
	}
	if rec := do(t, h, http.MethodPut, "/alerts/"+all.Alerts[1].ID.String()+"/dismiss", medic); rec.Code != http.StatusOK {
		t.Fatalf("dismiss status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/alerts/read-all", medic); rec.Code != http.StatusOK {
		t.Fatalf("read-all status = %d", rec.Code)
	}
	if remaining := list(t, h, "/alerts", medic); len(remaining.Alerts) != 1 || !remaining.Alerts[0].IsRead {
		t.Fatalf("remaining alerts = %+v", remaining.Alerts)
	}

	if rec := do(t, h, http.MethodPut, "/alerts/"+uuid.NewString()+"/read", medic); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown alert status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/alerts?is_read=maybe", medic); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad is_read status = %d, want 400", rec.Code)
	}
	other := auth.Principal{UserID: uuid.New(), AgencyID: uuid.New(), Role: auth.RoleMedic}
	if got := list(t, h, "/alerts", other); len(got.Alerts) != 0 {
		t.Fatalf("other agency sees %d alerts", len(got.Alerts))
	}
}
