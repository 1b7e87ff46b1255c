package domain

import "errors"

// Sentinel errors for the ledger domain. Use errors.Is() to check these.
var (
	// ErrInventoryNotFound indicates no inventory record exists for the supply at the location.
	ErrInventoryNotFound = errors.New("inventory record not found")

	// ErrInventoryExists indicates a record already exists where one is being seeded.
	ErrInventoryExists = errors.New("inventory record already exists")

	// ErrInsufficientStock indicates a usage larger than the quantity on hand.
	ErrInsufficientStock = errors.New("insufficient quantity")

	// ErrLocationNotFound indicates the unit or station is absent or owned by another agency.
	ErrLocationNotFound = errors.New("location not found")

	// ErrSupplyNotFound indicates the supply is absent or owned by another agency.
	ErrSupplyNotFound = errors.New("supply not found")

	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")

	// ErrInvalidOrderState indicates a transition that is not allowed from the order's status.
	ErrInvalidOrderState = errors.New("operation not allowed for order status")

	// ErrOrderNumberConflict indicates two orders computed the same sequence number.
	ErrOrderNumberConflict = errors.New("order number already exists")

	// ErrInvalidInput indicates a structurally valid request that violates a ledger rule.
	ErrInvalidInput = errors.New("invalid ledger input")
)
