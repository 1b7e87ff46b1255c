package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryRecord struct {
	ID             uuid.UUID
	AgencyID       uuid.UUID
	SupplyID       uuid.UUID
	LocationType   string
	LocationID     uuid.UUID
	Quantity       int32
	ParLevel       int32
	ExpirationDate sql.NullTime
	LotNumber      sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Order struct {
	ID               uuid.UUID
	AgencyID         uuid.UUID
	OrderNumber      string
	Status           string
	CreatedBy        uuid.NullUUID
	ApprovedBy       uuid.NullUUID
	Vendor           sql.NullString
	TotalCost        decimal.Decimal
	OrderDate        sql.NullTime
	ExpectedDelivery sql.NullTime
	ReceivedDate     sql.NullTime
	Notes            sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type OrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	SupplyID         uuid.UUID
	QuantityOrdered  int32
	QuantityReceived int32
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Transaction struct {
	ID              uuid.UUID
	AgencyID        uuid.UUID
	SupplyID        uuid.UUID
	UserID          uuid.NullUUID
	TransactionType string
	Quantity        int32
	LocationType    string
	LocationID      uuid.UUID
	UsageType       sql.NullString
	IncidentNumber  sql.NullString
	Notes           sql.NullString
	TransactionDate time.Time
	CreatedAt       time.Time
}
