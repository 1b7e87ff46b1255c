// Package services holds the alert rules: which alert, if any, an inventory
// candidate produces.
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/alerts/domain/models"
)

// DedupWindow is how long an alert suppresses another one with the same key.
const DedupWindow = 24 * time.Hour

// ExpirationAlert builds the expiring or expired alert for a tracked lot.
// Lots without an expiration date produce nothing.
func ExpirationAlert(agencyID uuid.UUID, c models.Candidate, now time.Time) (*models.Alert, bool) {
	if c.ExpirationDate == nil {
		return nil, false
	}
	days := daysUntil(*c.ExpirationDate, now)

	a := newAlert(agencyID, c, now)
	switch {
	case days < 0:
		a.Type = models.TypeExpired
		a.Severity = models.SeverityCritical
		a.Title = "Expired: " + c.SupplyName
		a.Message = c.SupplyName + " has expired"
		return a, true
	case days <= 30:
		a.Severity = models.SeverityCritical
	case days <= 60:
		a.Severity = models.SeverityWarning
	default:
		a.Severity = models.SeverityInfo
	}
	a.Type = models.TypeExpiring
	a.Title = "Expiring: " + c.SupplyName
	a.Message = fmt.Sprintf("%s expires in %d days", c.SupplyName, days)
	return a, true
}

// StockAlert builds the out-of-stock or below-par alert for a record under par.
func StockAlert(agencyID uuid.UUID, c models.Candidate, now time.Time) (*models.Alert, bool) {
	if c.Quantity >= c.ParLevel {
		return nil, false
	}
	a := newAlert(agencyID, c, now)
	if c.Quantity == 0 {
		a.Type = models.TypeOutOfStock
		a.Severity = models.SeverityCritical
		a.Title = "Out of Stock: " + c.SupplyName
		a.Message = c.SupplyName + " is out of stock"
		return a, true
	}
	a.Type = models.TypeBelowPar
	a.Severity = models.SeverityWarning
	a.Title = "Below Par: " + c.SupplyName
	a.Message = fmt.Sprintf("%s is below par level (%d/%d)", c.SupplyName, c.Quantity, c.ParLevel)
	return a, true
}

// OrderReceivedAlert announces goods booked in against a purchase order.
func OrderReceivedAlert(agencyID uuid.UUID, orderNumber, status, locationType string, locationID uuid.UUID, now time.Time) *models.Alert {
	msg := fmt.Sprintf("Order %s was received", orderNumber)
	if status == "partial" {
		msg = fmt.Sprintf("Order %s was partially received", orderNumber)
	}
	return &models.Alert{
		ID:           uuid.New(),
		AgencyID:     agencyID,
		Type:         models.TypeOrderReceived,
		Severity:     models.SeverityInfo,
		Title:        "Order received: " + orderNumber,
		Message:      msg,
		LocationType: locationType,
		LocationID:   &locationID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newAlert(agencyID uuid.UUID, c models.Candidate, now time.Time) *models.Alert {
	supplyID, locationID := c.SupplyID, c.LocationID
	return &models.Alert{
		ID:           uuid.New(),
		AgencyID:     agencyID,
		SupplyID:     &supplyID,
		LocationType: c.LocationType,
		LocationID:   &locationID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// daysUntil counts whole UTC calendar days from now to date.
func daysUntil(date, now time.Time) int {
	return int(day(date).Sub(day(now)).Hours() / 24)
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
