package validator_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	pkgvalidator "github.com/ghuser/emssupply/pkg/validator"
)

type orderLine struct {
	SupplyID string          `json:"supply_id"        validate:"required,uuid"`
	Quantity int             `json:"quantity_ordered" validate:"required,gt=0"`
	UnitCost decimal.Decimal `json:"unit_cost"        validate:"money"`
}

type usageReq struct {
	LocationType string           `json:"location_type" validate:"required,location_type"`
	UsageType    string           `json:"usage_type"    validate:"omitempty,usage_type"`
	Role         string           `json:"role"          validate:"omitempty,role"`
	UnitType     string           `json:"type"          validate:"omitempty,unit_type"`
	Cost         *decimal.Decimal `json:"cost"          validate:"omitempty,money"`
	Lines        []orderLine      `json:"items"         validate:"omitempty,dive"`
}

func fields(t *testing.T, v any) map[string]string {
	t.Helper()
	return pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(v))
}

func TestValidate_DomainAliases(t *testing.T) {
	valid := usageReq{LocationType: "unit", UsageType: "patient_care", Role: "medic", UnitType: "fly_car"}
	if err := pkgvalidator.Validate(&valid); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	m := fields(t, &usageReq{LocationType: "garage", UsageType: "spilled", Role: "chief", UnitType: "boat"})
	want := map[string]string{
		"location_type": "Must be one of: unit station",
		"usage_type":    "Must be one of: patient_care training expired damaged lost other",
		"role":          "Must be one of: admin supervisor medic",
		"type":          "Must be one of: als bls supervisor fly_car other",
	}
	for field, msg := range want {
		if m[field] != msg {
			t.Errorf("%s: got %q, want %q", field, m[field], msg)
		}
	}
}

func TestValidate_Money(t *testing.T) {
	cases := map[string]bool{
		"0":     true,
		"2.10":  true,
		"1.250": true,
		"-1":    false,
		"0.005": false,
	}
	for raw, ok := range cases {
		d := decimal.RequireFromString(raw)
		err := pkgvalidator.Validate(&usageReq{LocationType: "station", Cost: &d})
		if (err == nil) != ok {
			t.Errorf("cost %s: valid=%v, want %v (%v)", raw, err == nil, ok, err)
		}
	}
	if err := pkgvalidator.Validate(&usageReq{LocationType: "station"}); err != nil {
		t.Errorf("absent cost must pass: %v", err)
	}
}

func TestFormatValidationErrors_NestedPaths(t *testing.T) {
	m := fields(t, &usageReq{
		LocationType: "unit",
		Lines: []orderLine{
			{SupplyID: "550e8400-e29b-41d4-a716-446655440000", Quantity: 1},
			{SupplyID: "not-a-uuid", Quantity: 0, UnitCost: decimal.NewFromInt(-3)},
		},
	})

	if m["items[1].supply_id"] != "Must be a valid UUID" {
		t.Errorf("supply_id: %q (all: %v)", m["items[1].supply_id"], m)
	}
	if m["items[1].quantity_ordered"] != "This field is required" {
		t.Errorf("quantity_ordered: %q", m["items[1].quantity_ordered"])
	}
	if _, ok := m["items[1].unit_cost"]; !ok {
		t.Errorf("expected unit_cost error, got %v", m)
	}
	if len(m) != 3 {
		t.Errorf("items[0] is valid; got %v", m)
	}
}

func TestFormatValidationErrors_NonValidationError(t *testing.T) {
	if m := pkgvalidator.FormatValidationErrors(http.ErrNoCookie); len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
}

func post(body string) (*httptest.ResponseRecorder, *http.Request) {
	return httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestValidateRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		w, r := post(`{"location_type":"station","usage_type":"training"}`)
		req, ok := pkgvalidator.ValidateRequest[usageReq](w, r)
		if !ok {
			t.Fatalf("expected ok, got %s", w.Body.String())
		}
		if req.LocationType != "station" {
			t.Errorf("unexpected location_type %q", req.LocationType)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w, r := post("{bad json")
		if _, ok := pkgvalidator.ValidateRequest[usageReq](w, r); ok {
			t.Fatal("expected failure")
		}
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Invalid JSON") {
			t.Errorf("got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("field errors", func(t *testing.T) {
		w, r := post(`{"usage_type":"training"}`)
		if _, ok := pkgvalidator.ValidateRequest[usageReq](w, r); ok {
			t.Fatal("expected failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var body pkgvalidator.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error != "Validation failed" || body.Fields["location_type"] != "This field is required" {
			t.Errorf("unexpected body %+v", body)
		}
	})
}
