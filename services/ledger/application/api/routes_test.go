package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	appsvcs "github.com/ghuser/emssupply/services/ledger/application/services"
	"github.com/ghuser/emssupply/services/ledger/domain/models"
	"github.com/ghuser/emssupply/services/ledger/infrastructure/persistence/memory"
)

type env struct {
	h          http.Handler
	medic      auth.Principal
	supervisor auth.Principal
	admin      auth.Principal
	unitID     uuid.UUID
	gauze      uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "error")
	store := memory.NewStore()
	agencyID := uuid.New()
	e := &env{
		medic:      auth.Principal{UserID: uuid.New(), AgencyID: agencyID, Role: auth.RoleMedic},
		supervisor: auth.Principal{UserID: uuid.New(), AgencyID: agencyID, Role: auth.RoleSupervisor},
		admin:      auth.Principal{UserID: uuid.New(), AgencyID: agencyID, Role: auth.RoleAdmin},
		unitID:     uuid.New(),
		gauze:      uuid.New(),
	}
	store.AddLocation(agencyID, models.Location{Type: models.LocationUnit, ID: e.unitID}, "Medic 12")
	store.AddSupply(memory.Supply{ID: e.gauze, AgencyID: agencyID, Name: "Gauze 4x4", SKU: "GZ-44", UnitCost: decimal.RequireFromString("0.35")})

	r := chi.NewRouter()
	Routes(r, &appsvcs.Services{Ledger: appsvcs.NewLedgerService(store, store, nil, log)}, log)
	e.h = r
	return e
}

func (e *env) do(t *testing.T, method, path string, p auth.Principal, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func TestInventoryRoutes(t *testing.T) {
	e := newEnv(t)

	seed := map[string]any{"supply_id": e.gauze, "location_type": "unit", "location_id": e.unitID, "quantity": 5, "par_level": 10}
	if rec := e.do(t, http.MethodPost, "/inventory/seed", e.medic, seed); rec.Code != http.StatusForbidden {
		t.Fatalf("medic seed status = %d, want 403", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, "/inventory/seed", e.supervisor, seed); rec.Code != http.StatusCreated && rec.Code != http.StatusOK {
		t.Fatalf("seed status = %d (body %s)", rec.Code, rec.Body)
	}
	if rec := e.do(t, http.MethodPost, "/inventory/seed", e.supervisor, seed); rec.Code != http.StatusConflict {
		t.Fatalf("second seed status = %d, want 409 (body %s)", rec.Code, rec.Body)
	}

	usage := func(qty int) map[string]any {
		return map[string]any{
			"items":         []map[string]any{{"supply_id": e.gauze, "quantity": qty}},
			"location_type": "unit",
			"location_id":   e.unitID,
		}
	}
	if rec := e.do(t, http.MethodPost, "/inventory/usage", e.medic, usage(2)); rec.Code != http.StatusOK && rec.Code != http.StatusCreated {
		t.Fatalf("usage status = %d (body %s)", rec.Code, rec.Body)
	}
	if rec := e.do(t, http.MethodPost, "/inventory/usage", e.medic, usage(50)); rec.Code != http.StatusBadRequest {
		t.Fatalf("over-usage status = %d, want 400 (body %s)", rec.Code, rec.Body)
	}
	if rec := e.do(t, http.MethodPost, "/inventory/usage", e.medic, usage(0)); rec.Code != http.StatusBadRequest {
		t.Fatalf("zero usage status = %d, want 400", rec.Code)
	}

	adjust := map[string]any{"supply_id": e.gauze, "location_type": "unit", "location_id": e.unitID, "quantity": 4294967297}
	if rec := e.do(t, http.MethodPost, "/inventory/adjust", e.supervisor, adjust); rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized adjust status = %d, want 400 (body %s)", rec.Code, rec.Body)
	}

	rec := e.do(t, http.MethodGet, "/inventory/units/"+e.unitID.String(), e.medic, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unit inventory status = %d (body %s)", rec.Code, rec.Body)
	}
	var unit struct {
		Inventory []struct {
			Quantity        int    `json:"quantity"`
			InventoryStatus string `json:"inventory_status"`
		} `json:"inventory"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&unit); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(unit.Inventory) != 1 || unit.Inventory[0].Quantity != 3 || unit.Inventory[0].InventoryStatus != "below_par" {
		t.Fatalf("unexpected unit inventory: %+v", unit.Inventory)
	}

	if rec := e.do(t, http.MethodGet, "/inventory/units/"+uuid.NewString(), e.medic, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown unit status = %d, want 404", rec.Code)
	}
}

func TestOrderRoutes(t *testing.T) {
	e := newEnv(t)

	if rec := e.do(t, http.MethodGet, "/orders", e.medic, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("medic list orders status = %d, want 403", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, "/orders", e.supervisor, map[string]any{"items": []any{}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty order status = %d, want 400", rec.Code)
	}

	rec := e.do(t, http.MethodPost, "/orders", e.supervisor, map[string]any{
		"vendor": "Bound Tree Medical",
		"items":  []map[string]any{{"supply_id": e.gauze, "quantity_ordered": 10, "unit_cost": "2.10"}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order status = %d (body %s)", rec.Code, rec.Body)
	}
	var created struct {
		Order struct {
			ID        uuid.UUID       `json:"id"`
			Status    string          `json:"status"`
			TotalCost decimal.Decimal `json:"total_cost"`
		} `json:"order"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Order.Status != "draft" || !created.Order.TotalCost.Equal(decimal.NewFromInt(21)) {
		t.Fatalf("unexpected order: %+v", created.Order)
	}

	base := "/orders/" + created.Order.ID.String()
	if rec := e.do(t, http.MethodPost, base+"/approve", e.medic, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("medic approve status = %d, want 403", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, base+"/approve", e.supervisor, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("approve draft status = %d, want 400 (body %s)", rec.Code, rec.Body)
	}
	if rec := e.do(t, http.MethodPost, base+"/submit", e.supervisor, nil); rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d (body %s)", rec.Code, rec.Body)
	}
	if rec := e.do(t, http.MethodPost, base+"/approve", e.supervisor, nil); rec.Code != http.StatusOK {
		t.Fatalf("supervisor approve status = %d (body %s)", rec.Code, rec.Body)
	}
	if rec := e.do(t, http.MethodGet, "/orders/"+uuid.NewString(), e.admin, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown order status = %d, want 404", rec.Code)
	}
}
