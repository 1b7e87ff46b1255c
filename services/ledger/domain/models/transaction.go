package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies a journal entry.
type TransactionType string

const (
	TxUsage       TransactionType = "usage"
	TxRestock     TransactionType = "restock"
	TxWaste       TransactionType = "waste"
	TxAdjustment  TransactionType = "adjustment"
	TxTransferOut TransactionType = "transfer_out"
	TxTransferIn  TransactionType = "transfer_in"
	TxReceive     TransactionType = "receive"
	TxInitial     TransactionType = "initial"
)

// UsageType records why stock left a location.
type UsageType string

const (
	UsagePatientCare UsageType = "patient_care"
	UsageTraining    UsageType = "training"
	UsageExpired     UsageType = "expired"
	UsageDamaged     UsageType = "damaged"
	UsageLost        UsageType = "lost"
	UsageOther       UsageType = "other"
)

func (u UsageType) Valid() bool {
	switch u {
	case UsagePatientCare, UsageTraining, UsageExpired, UsageDamaged, UsageLost, UsageOther:
		return true
	default:
		return false
	}
}

// Transaction is an immutable journal entry. Quantity is the signed delta
// applied to the record at Location.
type Transaction struct {
	ID             uuid.UUID
	AgencyID       uuid.UUID
	SupplyID       uuid.UUID
	UserID         uuid.UUID
	Type           TransactionType
	Quantity       int
	Location       Location
	UsageType      UsageType // empty unless Type is usage
	IncidentNumber string
	Notes          string
	Date           time.Time
}
