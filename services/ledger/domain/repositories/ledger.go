package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/ledger/domain/models"
)

// UnitOfWork runs fn atomically. Every write made through the LedgerTx is
// committed when fn returns nil and discarded otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the storage seen from inside a unit of work. Every lookup is
// scoped to an agency; rows of other agencies behave as if absent.
type LedgerTx interface {
	LocationExists(ctx context.Context, agencyID uuid.UUID, loc models.Location) (bool, error)
	SupplyExists(ctx context.Context, agencyID, supplyID uuid.UUID) (bool, error)

	// GetRecordForUpdate locks and returns the record at key, with SupplyName
	// loaded. Returns ErrInventoryNotFound when absent.
	GetRecordForUpdate(ctx context.Context, key models.RecordKey) (*models.InventoryRecord, error)

	// InsertRecord returns ErrInventoryExists if a record already holds the key.
	InsertRecord(ctx context.Context, rec *models.InventoryRecord) error
	UpdateRecord(ctx context.Context, rec *models.InventoryRecord) error
	InsertTransaction(ctx context.Context, txn *models.Transaction) error

	CountOrders(ctx context.Context, agencyID uuid.UUID) (int, error)

	// InsertOrder persists o and its items. Returns ErrOrderNumberConflict when
	// the agency already has an order with the same number.
	InsertOrder(ctx context.Context, o *models.Order) error

	// GetOrderForUpdate locks and returns an order with its items.
	// Returns ErrOrderNotFound when absent.
	GetOrderForUpdate(ctx context.Context, agencyID, orderID uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, o *models.Order) error
	UpdateOrderItemReceived(ctx context.Context, item *models.OrderItem) error

	// Emit publishes event on topic as part of the unit of work.
	Emit(ctx context.Context, topic string, event any) error
}

// LedgerQueries serves the read side of the ledger.
type LedgerQueries interface {
	InventoryTotals(ctx context.Context, agencyID uuid.UUID) ([]models.SupplyTotal, error)

	// Location returns ErrLocationNotFound when the location is absent or
	// owned by another agency.
	Location(ctx context.Context, agencyID uuid.UUID, loc models.Location) (*models.LocationInfo, error)
	LocationInventory(ctx context.Context, agencyID uuid.UUID, loc models.Location) ([]models.InventoryView, error)

	// Expiring lists records of expiration-tracked supplies with an
	// expiration date on or before until, soonest first.
	Expiring(ctx context.Context, agencyID uuid.UUID, until time.Time) ([]models.InventoryView, error)
	BelowPar(ctx context.Context, agencyID uuid.UUID) ([]models.InventoryView, error)
	Transactions(ctx context.Context, agencyID uuid.UUID, f models.TransactionFilter) ([]models.TransactionView, error)

	// ListOrders lists orders newest first. An empty status lists all.
	ListOrders(ctx context.Context, agencyID uuid.UUID, status models.OrderStatus) ([]models.OrderSummary, error)
	GetOrder(ctx context.Context, agencyID, orderID uuid.UUID) (*models.Order, error)
	ReorderList(ctx context.Context, agencyID uuid.UUID) ([]models.ReorderLine, error)
}
