package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryView is an inventory record joined with its supply for listings.
type InventoryView struct {
	InventoryRecord
	SKU              string
	UnitOfMeasure    string
	TracksExpiration bool
	CategoryName     string
	UnitCost         decimal.Decimal
}

// SupplyTotal aggregates one supply across every location of an agency.
type SupplyTotal struct {
	SupplyID      uuid.UUID `json:"supply_id"`
	SupplyName    string    `json:"supply_name"`
	SKU           string    `json:"sku"`
	CategoryName  string    `json:"category_name"`
	TotalQuantity int       `json:"total_quantity"`
	TotalParLevel int       `json:"total_par_level"`
}

// ReorderLine is the aggregated shortfall of one supply below par.
type ReorderLine struct {
	SupplyID      uuid.UUID       `json:"supply_id"`
	SupplyName    string          `json:"supply_name"`
	SKU           string          `json:"sku"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalNeeded   int             `json:"total_needed"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

// OrderSummary is an order row with its creator's name for listings.
type OrderSummary struct {
	Order
	CreatedByFirstName string
	CreatedByLastName  string
}

// TransactionView is a journal entry joined with supply and user names.
type TransactionView struct {
	Transaction
	SupplyName    string
	UserFirstName string
	UserLastName  string
}

// TransactionFilter narrows the journal listing. Zero values are ignored.
type TransactionFilter struct {
	SupplyID uuid.UUID
	Location *Location
	Since    time.Time
	Limit    int
}
