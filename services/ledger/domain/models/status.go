package models

import "time"

// StockStatus classifies an on-hand quantity against its par level.
type StockStatus string

const (
	StockOK         StockStatus = "ok"
	StockBelowPar   StockStatus = "below_par"
	StockCritical   StockStatus = "critical"
	StockOutOfStock StockStatus = "out_of_stock"
)

// ClassifyStock returns out_of_stock at zero, critical at or under a quarter
// of par, below_par under par and ok otherwise.
func ClassifyStock(quantity, parLevel int) StockStatus {
	switch {
	case quantity == 0:
		return StockOutOfStock
	case 4*quantity <= parLevel:
		return StockCritical
	case quantity < parLevel:
		return StockBelowPar
	default:
		return StockOK
	}
}

// ExpirationStatus classifies how close a lot is to expiring.
type ExpirationStatus string

const (
	ExpirationOK       ExpirationStatus = "ok"
	ExpirationSoon     ExpirationStatus = "soon"
	ExpirationWarning  ExpirationStatus = "warning"
	ExpirationCritical ExpirationStatus = "critical"
	ExpirationExpired  ExpirationStatus = "expired"
)

// ClassifyDays maps days-until-expiry onto an ExpirationStatus.
func ClassifyDays(days int) ExpirationStatus {
	switch {
	case days < 0:
		return ExpirationExpired
	case days <= 30:
		return ExpirationCritical
	case days <= 60:
		return ExpirationWarning
	case days <= 90:
		return ExpirationSoon
	default:
		return ExpirationOK
	}
}

// ClassifyExpiration is ClassifyDays for an optional date. No date is ok.
func ClassifyExpiration(expiration *time.Time, today time.Time) ExpirationStatus {
	if expiration == nil {
		return ExpirationOK
	}
	return ClassifyDays(DaysUntil(*expiration, today))
}

// DaysUntil counts whole UTC calendar days from today to date. Negative once
// the date has passed.
func DaysUntil(date, today time.Time) int {
	return int(Day(date).Sub(Day(today)).Hours() / 24)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
