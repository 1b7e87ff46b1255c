package domain

import "errors"

// Sentinel errors for the catalog domain. Use errors.Is() to check these.
var (
	ErrSupplyNotFound = errors.New("supply not found")

	// ErrCategoryNotFound also covers categories owned by another agency.
	ErrCategoryNotFound = errors.New("category not found")

	ErrInvalidInput = errors.New("invalid catalog input")
)
