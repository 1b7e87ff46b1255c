// Package services contains the ledger's pure stock commands. Each command
// takes the current record and returns the next record plus the journal entry
// that explains the change; nothing here touches storage. Callers run them
// inside a unit of work and persist both halves together.
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/ledger/domain"
	"github.com/ghuser/emssupply/services/ledger/domain/models"
)

// Entry describes who is changing stock and why.
type Entry struct {
	UserID         uuid.UUID
	UsageType      models.UsageType
	IncidentNumber string
	Notes          string
	At             time.Time
}

// Effect is the outcome of a ledger command.
type Effect struct {
	Record      models.InventoryRecord
	Transaction models.Transaction
	Created     bool // Record did not exist before the command
}

// Seed holds the attributes of a record created by ApplyInitial.
type Seed struct {
	Quantity       int
	ParLevel       int
	ExpirationDate *time.Time
	LotNumber      string
}

// ApplyUsage removes quantity from rec.
func ApplyUsage(rec models.InventoryRecord, quantity int, e Entry) (Effect, error) {
	if quantity <= 0 || quantity > models.MaxQuantity {
		return Effect{}, fmt.Errorf("%w: usage quantity must be between 1 and %d", domain.ErrInvalidInput, models.MaxQuantity)
	}
	if quantity > rec.Quantity {
		return Effect{}, fmt.Errorf("%w for %s", domain.ErrInsufficientStock, supplyLabel(rec))
	}
	usage := e.UsageType
	if usage == "" {
		usage = models.UsagePatientCare
	}
	if !usage.Valid() {
		return Effect{}, fmt.Errorf("%w: unknown usage type %q", domain.ErrInvalidInput, usage)
	}

	next := rec
	next.Quantity -= quantity
	next.UpdatedAt = e.At

	txn := journal(next, models.TxUsage, -quantity, e)
	txn.UsageType = usage
	txn.IncidentNumber = e.IncidentNumber
	return Effect{Record: next, Transaction: txn}, nil
}

// ApplyAdjustment sets rec to newQuantity and journals the signed difference,
// including a zero difference.
func ApplyAdjustment(rec models.InventoryRecord, newQuantity int, e Entry) (Effect, error) {
	if newQuantity < 0 || newQuantity > models.MaxQuantity {
		return Effect{}, fmt.Errorf("%w: quantity must be between 0 and %d", domain.ErrInvalidInput, models.MaxQuantity)
	}
	delta := newQuantity - rec.Quantity

	next := rec
	next.Quantity = newQuantity
	next.UpdatedAt = e.At
	return Effect{Record: next, Transaction: journal(next, models.TxAdjustment, delta, e)}, nil
}

// ApplyReceipt adds received goods to rec, or creates a record for key with a
// par level of zero when rec is nil.
func ApplyReceipt(rec *models.InventoryRecord, key models.RecordKey, quantity int, e Entry) (Effect, error) {
	if quantity <= 0 || quantity > models.MaxQuantity {
		return Effect{}, fmt.Errorf("%w: received quantity must be between 1 and %d", domain.ErrInvalidInput, models.MaxQuantity)
	}

	var next models.InventoryRecord
	created := rec == nil
	if created {
		next = newRecord(key, e.At)
	} else {
		next = *rec
	}
	if next.Quantity > models.MaxQuantity-quantity {
		return Effect{}, fmt.Errorf("%w: receiving %d would exceed %d on hand for %s", domain.ErrInvalidInput, quantity, models.MaxQuantity, supplyLabel(next))
	}
	next.Quantity += quantity
	next.UpdatedAt = e.At

	return Effect{Record: next, Transaction: journal(next, models.TxReceive, quantity, e), Created: created}, nil
}

// ApplyInitial creates the first record for key. The initial transaction
// carries the full starting quantity so the journal sums to the record.
func ApplyInitial(key models.RecordKey, s Seed, e Entry) (Effect, error) {
	if s.Quantity < 0 || s.ParLevel < 0 || s.Quantity > models.MaxQuantity || s.ParLevel > models.MaxQuantity {
		return Effect{}, fmt.Errorf("%w: quantity and par level must be between 0 and %d", domain.ErrInvalidInput, models.MaxQuantity)
	}

	next := newRecord(key, e.At)
	next.Quantity = s.Quantity
	next.ParLevel = s.ParLevel
	next.LotNumber = s.LotNumber
	if s.ExpirationDate != nil {
		d := models.Day(*s.ExpirationDate)
		next.ExpirationDate = &d
	}
	return Effect{Record: next, Transaction: journal(next, models.TxInitial, s.Quantity, e), Created: true}, nil
}

func newRecord(key models.RecordKey, at time.Time) models.InventoryRecord {
	return models.InventoryRecord{
		ID:        uuid.New(),
		AgencyID:  key.AgencyID,
		SupplyID:  key.SupplyID,
		Location:  key.Location,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func journal(rec models.InventoryRecord, typ models.TransactionType, delta int, e Entry) models.Transaction {
	return models.Transaction{
		ID:       uuid.New(),
		AgencyID: rec.AgencyID,
		SupplyID: rec.SupplyID,
		UserID:   e.UserID,
		Type:     typ,
		Quantity: delta,
		Location: rec.Location,
		Notes:    e.Notes,
		Date:     e.At,
	}
}

func supplyLabel(rec models.InventoryRecord) string {
	if rec.SupplyName != "" {
		return rec.SupplyName
	}
	return "supply " + rec.SupplyID.String()
}
