package domain

import "errors"

// Sentinel errors for the agency domain. Use errors.Is() to check these.
var (
	ErrAgencyNotFound  = errors.New("agency not found")
	ErrStationNotFound = errors.New("station not found")
	ErrUnitNotFound    = errors.New("unit not found")

	// ErrInvalidInput indicates a field value the agency model rejects.
	ErrInvalidInput = errors.New("invalid agency input")
)
