package models

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies what an alert is about.
type Type string

const (
	TypeExpiring      Type = "expiring"
	TypeExpired       Type = "expired"
	TypeBelowPar      Type = "below_par"
	TypeOutOfStock    Type = "out_of_stock"
	TypeOrderReceived Type = "order_received"
	TypeSystem        Type = "system"
)

func (t Type) Valid() bool {
	switch t {
	case TypeExpiring, TypeExpired, TypeBelowPar, TypeOutOfStock, TypeOrderReceived, TypeSystem:
		return true
	default:
		return false
	}
}

// Severity ranks how urgently an alert needs attention.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	return s == SeverityInfo || s == SeverityWarning || s == SeverityCritical
}

// Alert is a notification for one agency. It never changes the inventory it
// describes; only the read and dismissed flags change after creation.
type Alert struct {
	ID           uuid.UUID
	AgencyID     uuid.UUID
	Type         Type
	Severity     Severity
	Title        string
	Message      string
	SupplyID     *uuid.UUID
	LocationType string
	LocationID   *uuid.UUID
	IsRead       bool
	IsDismissed  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Read-side supply details.
	SupplyName string
	SKU        string
}

// DedupKey identifies the breach an alert reports. The generator creates at
// most one alert per key within the dedup window.
type DedupKey struct {
	AgencyID     uuid.UUID
	SupplyID     uuid.UUID
	LocationType string
	LocationID   uuid.UUID
	Type         Type
}

// Key returns the dedup key of a supply alert. ok is false for alerts that
// are not tied to a supply and location.
func (a Alert) Key() (key DedupKey, ok bool) {
	if a.SupplyID == nil || a.LocationID == nil {
		return DedupKey{}, false
	}
	return DedupKey{
		AgencyID:     a.AgencyID,
		SupplyID:     *a.SupplyID,
		LocationType: a.LocationType,
		LocationID:   *a.LocationID,
		Type:         a.Type,
	}, true
}

// Filter narrows the inbox listing. Zero values are ignored.
type Filter struct {
	IsRead   *bool
	Severity Severity
	Type     Type
}

// Candidate is an inventory record the generator evaluates against thresholds.
type Candidate struct {
	SupplyID       uuid.UUID
	SupplyName     string
	LocationType   string
	LocationID     uuid.UUID
	Quantity       int
	ParLevel       int
	ExpirationDate *time.Time
}

// DefaultExpiringDays applies when an agency has no alert_expiring_days setting.
var DefaultExpiringDays = []int{30, 60, 90}

// AgencyScan is an active agency with its expiration warning thresholds.
type AgencyScan struct {
	AgencyID     uuid.UUID
	ExpiringDays []int
	// Err is set when the agency's settings could not be read. Scanning such
	// an agency fails with Err.
	Err error
}

// Horizon is the widest expiration threshold, in days.
func (s AgencyScan) Horizon() int {
	days := s.ExpiringDays
	if len(days) == 0 {
		days = DefaultExpiringDays
	}
	horizon := 0
	for _, d := range days {
		horizon = max(horizon, d)
	}
	return horizon
}
