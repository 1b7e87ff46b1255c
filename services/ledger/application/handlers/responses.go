package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/emssupply/services/ledger/domain/models"
)

const dateLayout = "2006-01-02"

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"insufficient quantity for Nasal Cannula"`
} // @name ErrorResponse

// MessageResponse acknowledges a write without returning a resource.
type MessageResponse struct {
	Message string `json:"message" example:"Usage recorded successfully"`
} // @name MessageResponse

// SupplyTotalResponse is one supply summed across every location.
type SupplyTotalResponse struct {
	SupplyID      uuid.UUID `json:"supply_id"`
	SupplyName    string    `json:"supply_name"     example:"4x4 Gauze Pads"`
	SKU           string    `json:"sku"             example:"GZ-44"`
	CategoryName  string    `json:"category_name"   example:"Wound Care"`
	TotalQuantity int       `json:"total_quantity"  example:"120"`
	TotalParLevel int       `json:"total_par_level" example:"150"`
} // @name SupplyTotalResponse

// InventorySummaryResponse wraps GET /inventory/all.
type InventorySummaryResponse struct {
	Inventory []SupplyTotalResponse `json:"inventory"`
} // @name InventorySummaryResponse

// InventoryItemResponse is one inventory record with its supply details and
// computed statuses.
type InventoryItemResponse struct {
	ID                  uuid.UUID `json:"id"`
	SupplyID            uuid.UUID `json:"supply_id"`
	SupplyName          string    `json:"supply_name"       example:"Normal Saline 1000mL"`
	SKU                 string    `json:"sku"               example:"NS-1000"`
	UnitOfMeasure       string    `json:"unit_of_measure"   example:"bag"`
	CategoryName        string    `json:"category_name"     example:"IV Supplies"`
	LocationType        string    `json:"location_type"     example:"unit"`
	LocationID          uuid.UUID `json:"location_id"`
	Quantity            int       `json:"quantity"          example:"4"`
	ParLevel            int       `json:"par_level"         example:"6"`
	ExpirationDate      *string   `json:"expiration_date"   example:"2026-05-01"`
	LotNumber           string    `json:"lot_number,omitempty"`
	InventoryStatus     string    `json:"inventory_status"  example:"below_par"`
	ExpirationStatus    string    `json:"expiration_status" example:"soon"`
	DaysUntilExpiration *int      `json:"days_until_expiration,omitempty"`
	Deficit             *int      `json:"deficit,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
} // @name InventoryItemResponse

// LocationResponse describes the unit or station whose inventory is listed.
type LocationResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"   example:"Medic 7"`
	Active bool      `json:"active" example:"true"`
} // @name LocationResponse

// UnitInventoryResponse wraps GET /inventory/units/{id}.
type UnitInventoryResponse struct {
	Unit      LocationResponse        `json:"unit"`
	Inventory []InventoryItemResponse `json:"inventory"`
} // @name UnitInventoryResponse

// StationInventoryResponse wraps GET /inventory/stations/{id}.
type StationInventoryResponse struct {
	Station   LocationResponse        `json:"station"`
	Inventory []InventoryItemResponse `json:"inventory"`
} // @name StationInventoryResponse

// ExpiringResponse wraps GET /inventory/expiring.
type ExpiringResponse struct {
	Expiring []InventoryItemResponse `json:"expiring"`
} // @name ExpiringResponse

// BelowParResponse wraps GET /inventory/below-par.
type BelowParResponse struct {
	BelowPar []InventoryItemResponse `json:"belowPar"`
} // @name BelowParResponse

// InventoryRecordResponse wraps a single record returned by adjust and seed.
type InventoryRecordResponse struct {
	Message   string                `json:"message"   example:"Inventory adjusted successfully"`
	Inventory InventoryItemResponse `json:"inventory"`
} // @name InventoryRecordResponse

// TransactionResponse is one journal entry.
type TransactionResponse struct {
	ID              uuid.UUID  `json:"id"`
	SupplyID        uuid.UUID  `json:"supply_id"`
	SupplyName      string     `json:"supply_name"`
	UserID          *uuid.UUID `json:"user_id"`
	UserFirstName   string     `json:"user_first_name,omitempty"`
	UserLastName    string     `json:"user_last_name,omitempty"`
	TransactionType string     `json:"transaction_type"          example:"usage"`
	Quantity        int        `json:"quantity"                  example:"-2"`
	LocationType    string     `json:"location_type"             example:"unit"`
	LocationID      uuid.UUID  `json:"location_id"`
	UsageType       string     `json:"usage_type,omitempty"      example:"patient_care"`
	IncidentNumber  string     `json:"incident_number,omitempty" example:"INC-2026-0142"`
	Notes           string     `json:"notes,omitempty"`
	TransactionDate time.Time  `json:"transaction_date"`
} // @name TransactionResponse

// TransactionsResponse wraps GET /inventory/transactions.
type TransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
} // @name TransactionsResponse

// OrderItemResponse is one line of a purchase order.
type OrderItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	SupplyID         uuid.UUID       `json:"supply_id"`
	SupplyName       string          `json:"supply_name,omitempty"`
	SKU              string          `json:"sku,omitempty"`
	UnitOfMeasure    string          `json:"unit_of_measure,omitempty"`
	QuantityOrdered  int             `json:"quantity_ordered"  example:"10"`
	QuantityReceived int             `json:"quantity_received" example:"5"`
	UnitCost         decimal.Decimal `json:"unit_cost"         swaggertype:"string" example:"2.10"`
	TotalCost        decimal.Decimal `json:"total_cost"        swaggertype:"string" example:"21.00"`
} // @name OrderItemResponse

// OrderResponse is a purchase order, with items when loaded individually.
type OrderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	OrderNumber        string              `json:"order_number" example:"ORD-2026-00001"`
	Status             string              `json:"status"       example:"draft"`
	CreatedBy          *uuid.UUID          `json:"created_by"`
	CreatedByFirstName string              `json:"created_by_first_name,omitempty"`
	CreatedByLastName  string              `json:"created_by_last_name,omitempty"`
	ApprovedBy         *uuid.UUID          `json:"approved_by"`
	Vendor             string              `json:"vendor"       example:"Bound Tree Medical"`
	TotalCost          decimal.Decimal     `json:"total_cost"   swaggertype:"string" example:"42.00"`
	OrderDate          *string             `json:"order_date"`
	ExpectedDelivery   *string             `json:"expected_delivery"`
	ReceivedDate       *string             `json:"received_date"`
	Notes              string              `json:"notes"`
	Items              []OrderItemResponse `json:"items,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
} // @name OrderResponse

// OrderEnvelope wraps a single order.
type OrderEnvelope struct {
	Order OrderResponse `json:"order"`
} // @name OrderEnvelope

// OrdersResponse wraps GET /orders.
type OrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
} // @name OrdersResponse

// ReorderLineResponse is the shortfall of one supply below par.
type ReorderLineResponse struct {
	SupplyID      uuid.UUID       `json:"supply_id"`
	SupplyName    string          `json:"supply_name"`
	SKU           string          `json:"sku"`
	UnitCost      decimal.Decimal `json:"unit_cost"      swaggertype:"string" example:"0.35"`
	TotalNeeded   int             `json:"total_needed"   example:"100"`
	EstimatedCost decimal.Decimal `json:"estimated_cost" swaggertype:"string" example:"35.00"`
} // @name ReorderLineResponse

// ReorderListResponse wraps GET /orders/reorder-list.
type ReorderListResponse struct {
	Items              []ReorderLineResponse `json:"items"`
	TotalEstimatedCost decimal.Decimal       `json:"total_estimated_cost" swaggertype:"string" example:"51.80"`
} // @name ReorderListResponse

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

func optionalID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func recordResponse(rec models.InventoryRecord, today time.Time) InventoryItemResponse {
	return InventoryItemResponse{
		ID:               rec.ID,
		SupplyID:         rec.SupplyID,
		SupplyName:       rec.SupplyName,
		LocationType:     string(rec.Location.Type),
		LocationID:       rec.Location.ID,
		Quantity:         rec.Quantity,
		ParLevel:         rec.ParLevel,
		ExpirationDate:   dateString(rec.ExpirationDate),
		LotNumber:        rec.LotNumber,
		InventoryStatus:  string(models.ClassifyStock(rec.Quantity, rec.ParLevel)),
		ExpirationStatus: string(models.ClassifyExpiration(rec.ExpirationDate, today)),
		UpdatedAt:        rec.UpdatedAt,
	}
}

func viewResponse(v models.InventoryView, today time.Time) InventoryItemResponse {
	resp := recordResponse(v.InventoryRecord, today)
	resp.SKU = v.SKU
	resp.UnitOfMeasure = v.UnitOfMeasure
	resp.CategoryName = v.CategoryName
	return resp
}

func viewResponses(views []models.InventoryView, today time.Time, decorate func(*InventoryItemResponse, models.InventoryView)) []InventoryItemResponse {
	out := make([]InventoryItemResponse, len(views))
	for i, v := range views {
		out[i] = viewResponse(v, today)
		if decorate != nil {
			decorate(&out[i], v)
		}
	}
	return out
}

func transactionResponse(t models.TransactionView) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		SupplyID:        t.SupplyID,
		SupplyName:      t.SupplyName,
		UserID:          optionalID(t.UserID),
		UserFirstName:   t.UserFirstName,
		UserLastName:    t.UserLastName,
		TransactionType: string(t.Type),
		Quantity:        t.Quantity,
		LocationType:    string(t.Location.Type),
		LocationID:      t.Location.ID,
		UsageType:       string(t.UsageType),
		IncidentNumber:  t.IncidentNumber,
		Notes:           t.Notes,
		TransactionDate: t.Date,
	}
}

func orderResponse(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		Status:           string(o.Status),
		CreatedBy:        optionalID(o.CreatedBy),
		ApprovedBy:       o.ApprovedBy,
		Vendor:           o.Vendor,
		TotalCost:        o.TotalCost,
		OrderDate:        dateString(o.OrderDate),
		ExpectedDelivery: dateString(o.ExpectedDelivery),
		ReceivedDate:     dateString(o.ReceivedDate),
		Notes:            o.Notes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:               it.ID,
			SupplyID:         it.SupplyID,
			SupplyName:       it.SupplyName,
			SKU:              it.SKU,
			UnitOfMeasure:    it.UnitOfMeasure,
			QuantityOrdered:  it.QuantityOrdered,
			QuantityReceived: it.QuantityReceived,
			UnitCost:         it.UnitCost,
			TotalCost:        it.TotalCost,
		})
	}
	return resp
}
