package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/database"
	"github.com/ghuser/emssupply/pkg/events"
	"github.com/ghuser/emssupply/services/ledger/domain"
	"github.com/ghuser/emssupply/services/ledger/domain/models"
	"github.com/ghuser/emssupply/services/ledger/domain/repositories"
	"github.com/ghuser/emssupply/services/ledger/infrastructure/persistence/postgres/db"
)

// LedgerRepository implements repositories.UnitOfWork and
// repositories.LedgerQueries against PostgreSQL. Units of work run in one SQL
// transaction; events emitted inside them go through the Watermill
// transactional publisher so they commit with the data.
type LedgerRepository struct {
	db  *database.Database
	bus *events.EventBus
}

var (
	_ repositories.UnitOfWork    = (*LedgerRepository)(nil)
	_ repositories.LedgerQueries = (*LedgerRepository)(nil)
	_ repositories.LedgerTx      = (*ledgerTx)(nil)
)

// NewLedgerRepository returns a LedgerRepository. bus may be nil, in which
// case emitted events are dropped.
func NewLedgerRepository(database *database.Database, bus *events.EventBus) *LedgerRepository {
	return &LedgerRepository{db: database, bus: bus}
}

// Do runs fn in a single transaction.
func (r *LedgerRepository) Do(ctx context.Context, fn func(repositories.LedgerTx) error) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(&ledgerTx{q: db.New(tx), tx: tx, bus: r.bus})
	})
}

type ledgerTx struct {
	q   *db.Queries
	tx  *sql.Tx
	bus *events.EventBus
	pub *events.Publisher
}

func (t *ledgerTx) LocationExists(ctx context.Context, agencyID uuid.UUID, loc models.Location) (bool, error) {
	switch loc.Type {
	case models.LocationUnit:
		return t.q.UnitExists(ctx, db.UnitExistsParams{ID: loc.ID, AgencyID: agencyID})
	case models.LocationStation:
		return t.q.StationExists(ctx, db.StationExistsParams{ID: loc.ID, AgencyID: agencyID})
	default:
		return false, nil
	}
}

func (t *ledgerTx) SupplyExists(ctx context.Context, agencyID, supplyID uuid.UUID) (bool, error) {
	return t.q.SupplyExists(ctx, db.SupplyExistsParams{ID: supplyID, AgencyID: agencyID})
}

func (t *ledgerTx) GetRecordForUpdate(ctx context.Context, key models.RecordKey) (*models.InventoryRecord, error) {
	row, err := t.q.GetInventoryRecordForUpdate(ctx, db.GetInventoryRecordForUpdateParams{
		AgencyID:     key.AgencyID,
		SupplyID:     key.SupplyID,
		LocationType: string(key.Location.Type),
		LocationID:   key.Location.ID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInventoryNotFound
		}
		return nil, fmt.Errorf("query inventory record: %w", err)
	}
	return &models.InventoryRecord{
		ID:             row.ID,
		AgencyID:       row.AgencyID,
		SupplyID:       row.SupplyID,
		Location:       models.Location{Type: models.LocationType(row.LocationType), ID: row.LocationID},
		Quantity:       int(row.Quantity),
		ParLevel:       int(row.ParLevel),
		ExpirationDate: timePtr(row.ExpirationDate),
		LotNumber:      row.LotNumber.String,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		SupplyName:     row.SupplyName,
	}, nil
}

func (t *ledgerTx) InsertRecord(ctx context.Context, rec *models.InventoryRecord) error {
	err := t.q.InsertInventoryRecord(ctx, db.InsertInventoryRecordParams{
		ID:             rec.ID,
		AgencyID:       rec.AgencyID,
		SupplyID:       rec.SupplyID,
		LocationType:   string(rec.Location.Type),
		LocationID:     rec.Location.ID,
		Quantity:       int32(rec.Quantity),
		ParLevel:       int32(rec.ParLevel),
		ExpirationDate: nullTime(rec.ExpirationDate),
		LotNumber:      nullString(rec.LotNumber),
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrInventoryExists
		}
		return fmt.Errorf("insert inventory record: %w", err)
	}
	return nil
}

func (t *ledgerTx) UpdateRecord(ctx context.Context, rec *models.InventoryRecord) error {
	return t.q.UpdateInventoryRecord(ctx, db.UpdateInventoryRecordParams{
		ID:             rec.ID,
		AgencyID:       rec.AgencyID,
		Quantity:       int32(rec.Quantity),
		ParLevel:       int32(rec.ParLevel),
		ExpirationDate: nullTime(rec.ExpirationDate),
		LotNumber:      nullString(rec.LotNumber),
		UpdatedAt:      rec.UpdatedAt,
	})
}

func (t *ledgerTx) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	return t.q.InsertTransaction(ctx, db.InsertTransactionParams{
		ID:              txn.ID,
		AgencyID:        txn.AgencyID,
		SupplyID:        txn.SupplyID,
		UserID:          nullUUID(txn.UserID),
		TransactionType: string(txn.Type),
		Quantity:        int32(txn.Quantity),
		LocationType:    string(txn.Location.Type),
		LocationID:      txn.Location.ID,
		UsageType:       nullString(string(txn.UsageType)),
		IncidentNumber:  nullString(txn.IncidentNumber),
		Notes:           nullString(txn.Notes),
		TransactionDate: txn.Date,
	})
}

func (t *ledgerTx) CountOrders(ctx context.Context, agencyID uuid.UUID) (int, error) {
	n, err := t.q.CountOrders(ctx, agencyID)
	return int(n), err
}

func (t *ledgerTx) InsertOrder(ctx context.Context, o *models.Order) error {
	err := t.q.InsertOrder(ctx, db.InsertOrderParams{
		ID:          o.ID,
		AgencyID:    o.AgencyID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		CreatedBy:   nullUUID(o.CreatedBy),
		Vendor:      nullString(o.Vendor),
		TotalCost:   o.TotalCost,
		Notes:       nullString(o.Notes),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrOrderNumberConflict
		}
		if database.IsForeignKeyViolation(err) {
			return domain.ErrSupplyNotFound
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		if err := t.q.InsertOrderItem(ctx, db.InsertOrderItemParams{
			ID:               it.ID,
			OrderID:          o.ID,
			SupplyID:         it.SupplyID,
			QuantityOrdered:  int32(it.QuantityOrdered),
			QuantityReceived: int32(it.QuantityReceived),
			UnitCost:         it.UnitCost,
			TotalCost:        it.TotalCost,
		}); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (t *ledgerTx) GetOrderForUpdate(ctx context.Context, agencyID, orderID uuid.UUID) (*models.Order, error) {
	row, err := t.q.GetOrderForUpdate(ctx, db.GetOrderForUpdateParams{ID: orderID, AgencyID: agencyID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("query order: %w", err)
	}
	items, err := t.q.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	return rowToOrder(row, items), nil
}

func (t *ledgerTx) UpdateOrder(ctx context.Context, o *models.Order) error {
	var approvedBy uuid.NullUUID
	if o.ApprovedBy != nil {
		approvedBy = nullUUID(*o.ApprovedBy)
	}
	return t.q.UpdateOrder(ctx, db.UpdateOrderParams{
		ID:               o.ID,
		AgencyID:         o.AgencyID,
		Status:           string(o.Status),
		ApprovedBy:       approvedBy,
		Vendor:           nullString(o.Vendor),
		TotalCost:        o.TotalCost,
		OrderDate:        nullTime(o.OrderDate),
		ExpectedDelivery: nullTime(o.ExpectedDelivery),
		ReceivedDate:     nullTime(o.ReceivedDate),
		Notes:            nullString(o.Notes),
		UpdatedAt:        o.UpdatedAt,
	})
}

func (t *ledgerTx) UpdateOrderItemReceived(ctx context.Context, item *models.OrderItem) error {
	return t.q.UpdateOrderItemReceived(ctx, db.UpdateOrderItemReceivedParams{
		ID:               item.ID,
		OrderID:          item.OrderID,
		QuantityReceived: int32(item.QuantityReceived),
	})
}

// Emit publishes event within the transaction. The publisher is created on
// first use and reused for the rest of the unit of work.
func (t *ledgerTx) Emit(ctx context.Context, topic string, event any) error {
	if t.bus == nil {
		return nil
	}
	if t.pub == nil {
		p, err := t.bus.TxPublisher(t.tx)
		if err != nil {
			return fmt.Errorf("create publisher: %w", err)
		}
		t.pub = p
	}
	return t.pub.Publish(ctx, topic, event)
}

func rowToOrder(row db.Order, items []db.ListOrderItemsRow) *models.Order {
	o := &models.Order{
		ID:               row.ID,
		AgencyID:         row.AgencyID,
		OrderNumber:      row.OrderNumber,
		Status:           models.OrderStatus(row.Status),
		CreatedBy:        row.CreatedBy.UUID,
		Vendor:           row.Vendor.String,
		TotalCost:        row.TotalCost,
		OrderDate:        timePtr(row.OrderDate),
		ExpectedDelivery: timePtr(row.ExpectedDelivery),
		ReceivedDate:     timePtr(row.ReceivedDate),
		Notes:            row.Notes.String,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.ApprovedBy.Valid {
		id := row.ApprovedBy.UUID
		o.ApprovedBy = &id
	}
	for _, it := range items {
		o.Items = append(o.Items, &models.OrderItem{
			ID:               it.ID,
			OrderID:          it.OrderID,
			SupplyID:         it.SupplyID,
			QuantityOrdered:  int(it.QuantityOrdered),
			QuantityReceived: int(it.QuantityReceived),
			UnitCost:         it.UnitCost,
			TotalCost:        it.TotalCost,
			SupplyName:       it.SupplyName,
			SKU:              it.Sku,
			UnitOfMeasure:    it.UnitOfMeasure,
		})
	}
	return o
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
