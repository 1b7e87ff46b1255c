package domain

import "errors"

// Sentinel errors for the alerts domain. Use errors.Is() to check these.
var (
	// ErrAlertNotFound indicates the alert is absent or owned by another agency.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrInvalidFilter indicates an unknown severity or type in a list filter.
	ErrInvalidFilter = errors.New("invalid alert filter")
)
