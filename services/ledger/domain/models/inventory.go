package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// MaxQuantity is the largest stock count, par level or order quantity the
// store can hold.
const MaxQuantity = math.MaxInt32

// RecordKey is the natural key of an inventory record. At most one record
// exists per key.
type RecordKey struct {
	AgencyID uuid.UUID
	SupplyID uuid.UUID
	Location Location
}

// InventoryRecord is the authoritative on-hand count of one supply at one
// location. Quantity changes only through ledger commands.
type InventoryRecord struct {
	ID             uuid.UUID
	AgencyID       uuid.UUID
	SupplyID       uuid.UUID
	Location       Location
	Quantity       int
	ParLevel       int
	ExpirationDate *time.Time
	LotNumber      string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// SupplyName is loaded alongside the record for error messages; never persisted.
	SupplyName string
}

// Key returns the record's natural key.
func (r InventoryRecord) Key() RecordKey {
	return RecordKey{AgencyID: r.AgencyID, SupplyID: r.SupplyID, Location: r.Location}
}
