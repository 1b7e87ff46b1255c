package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/emssupply/pkg/auth"
	pkgcache "github.com/ghuser/emssupply/pkg/cache"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/ledger/domain"
	domainevents "github.com/ghuser/emssupply/services/ledger/domain/events"
	"github.com/ghuser/emssupply/services/ledger/domain/models"
	"github.com/ghuser/emssupply/services/ledger/domain/repositories"
	domainsvcs "github.com/ghuser/emssupply/services/ledger/domain/services"
)

const (
	defaultTransactionLimit = 100
	maxTransactionLimit     = 500
)

// SummaryCache caches the per-agency inventory summary.
type SummaryCache interface {
	Get(ctx context.Context, agencyID uuid.UUID) ([]pkgcache.CachedSupplyTotal, error)
	Set(ctx context.Context, agencyID uuid.UUID, totals []pkgcache.CachedSupplyTotal) error
	Invalidate(ctx context.Context, agencyID uuid.UUID) error
}

// UsageItem is one supply consumed in a usage batch.
type UsageItem struct {
	SupplyID uuid.UUID
	Quantity int
}

// UsageCommand records consumption of one or more supplies at a location.
type UsageCommand struct {
	Items          []UsageItem
	Location       models.Location
	UsageType      models.UsageType
	IncidentNumber string
	Notes          string
}

// AdjustCommand sets the counted quantity of a supply at a location.
type AdjustCommand struct {
	SupplyID uuid.UUID
	Location models.Location
	Quantity int
	Notes    string
}

// SeedCommand creates the first inventory record of a supply at a location.
type SeedCommand struct {
	SupplyID       uuid.UUID
	Location       models.Location
	Quantity       int
	ParLevel       int
	ExpirationDate *time.Time
	LotNumber      string
	Notes          string
}

// CreateOrderCommand opens a draft purchase order.
type CreateOrderCommand struct {
	Vendor string
	Notes  string
	Items  []models.OrderLine
}

// ReceiveLine books goods against one order item.
type ReceiveLine struct {
	OrderItemID      uuid.UUID
	QuantityReceived int
}

// ReceiveCommand books a delivery into a location.
type ReceiveCommand struct {
	Items    []ReceiveLine
	Location models.Location
}

// LedgerService applies stock and order operations for an authenticated
// principal. Every write runs inside one unit of work; the inventory summary
// cache is invalidated after commit.
type LedgerService struct {
	uow     repositories.UnitOfWork
	queries repositories.LedgerQueries
	cache   SummaryCache
	log     logger.Logger
	now     func() time.Time
}

// NewLedgerService returns a LedgerService. summary may be nil.
func NewLedgerService(uow repositories.UnitOfWork, queries repositories.LedgerQueries, summary SummaryCache, log logger.Logger) *LedgerService {
	return &LedgerService{
		uow:     uow,
		queries: queries,
		cache:   summary,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *LedgerService) entry(p auth.Principal, notes string) domainsvcs.Entry {
	return domainsvcs.Entry{UserID: p.UserID, Notes: notes, At: s.now()}
}

func validateLocation(loc models.Location) error {
	if !loc.Type.Valid() || loc.ID == uuid.Nil {
		return fmt.Errorf("%w: location_type must be unit or station with a location_id", domain.ErrInvalidInput)
	}
	return nil
}

func requireLocation(ctx context.Context, tx repositories.LedgerTx, agencyID uuid.UUID, loc models.Location) error {
	ok, err := tx.LocationExists(ctx, agencyID, loc)
	if err != nil {
		return fmt.Errorf("check location: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s %s", domain.ErrLocationNotFound, loc.Type, loc.ID)
	}
	return nil
}

// RecordUsage decrements stock for every item and journals each usage. The
// batch is all-or-nothing: any failing item leaves every record untouched.
func (s *LedgerService) RecordUsage(ctx context.Context, p auth.Principal, cmd UsageCommand) error {
	if len(cmd.Items) == 0 {
		return fmt.Errorf("%w: items are required", domain.ErrInvalidInput)
	}
	if err := validateLocation(cmd.Location); err != nil {
		return err
	}

	e := s.entry(p, cmd.Notes)
	e.UsageType = cmd.UsageType
	e.IncidentNumber = cmd.IncidentNumber

	err := s.uow.Do(ctx, func(tx repositories.LedgerTx) error {
		if err := requireLocation(ctx, tx, p.AgencyID, cmd.Location); err != nil {
			return err
		}

		lines := make([]domainevents.StockLine, 0, len(cmd.Items))
		for _, item := range cmd.Items {
			key := models.RecordKey{AgencyID: p.AgencyID, SupplyID: item.SupplyID, Location: cmd.Location}
			rec, err := tx.GetRecordForUpdate(ctx, key)
			if err != nil {
				return fmt.Errorf("load inventory for supply %s: %w", item.SupplyID, err)
			}
			eff, err := domainsvcs.ApplyUsage(*rec, item.Quantity, e)
			if err != nil {
				return err
			}
			if err := persist(ctx, tx, eff); err != nil {
				return err
			}
			lines = append(lines, domainevents.StockLine{SupplyID: item.SupplyID, Delta: eff.Transaction.Quantity, Quantity: eff.Record.Quantity})
		}

		return tx.Emit(ctx, domainevents.TopicUsageRecorded, domainevents.UsageRecordedEvent{
			EventID:      uuid.New(),
			Version:      1,
			AgencyID:     p.AgencyID,
			UserID:       p.UserID,
			LocationType: string(cmd.Location.Type),
			LocationID:   cmd.Location.ID,
			Lines:        lines,
			OccurredAt:   e.At,
		})
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "usage recorded", "items", len(cmd.Items), "location_type", cmd.Location.Type, "location_id", cmd.Location.ID)
	s.invalidate(ctx, p.AgencyID)
	return nil
}

// AdjustInventory sets a record to a counted quantity and journals the delta.
func (s *LedgerService) AdjustInventory(ctx context.Context, p auth.Principal, cmd AdjustCommand) (*models.InventoryRecord, error) {
	if err := validateLocation(cmd.Location); err != nil {
		return nil, err
	}

	var out models.InventoryRecord
	err := s.uow.Do(ctx, func(tx repositories.LedgerTx) error {
		rec, err := tx.GetRecordForUpdate(ctx, models.RecordKey{AgencyID: p.AgencyID, SupplyID: cmd.SupplyID, Location: cmd.Location})
		if err != nil {
			return fmt.Errorf("load inventory: %w", err)
		}
		eff, err := domainsvcs.ApplyAdjustment(*rec, cmd.Quantity, s.entry(p, cmd.Notes))
		if err != nil {
			return err
		}
		if err := persist(ctx, tx, eff); err != nil {
			return err
		}
		out = eff.Record
		return tx.Emit(ctx, domainevents.TopicAdjusted, adjustedEvent(p, eff))
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, p.AgencyID)
	return &out, nil
}

// SeedInventory creates a record with an initial transaction. Returns
// ErrInventoryExists if the supply is already tracked at the location.
func (s *LedgerService) SeedInventory(ctx context.Context, p auth.Principal, cmd SeedCommand) (*models.InventoryRecord, error) {
	if err := validateLocation(cmd.Location); err != nil {
		return nil, err
	}

	var out models.InventoryRecord
	err := s.uow.Do(ctx, func(tx repositories.LedgerTx) error {
		if err := requireLocation(ctx, tx, p.AgencyID, cmd.Location); err != nil {
			return err
		}
		ok, err := tx.SupplyExists(ctx, p.AgencyID, cmd.SupplyID)
		if err != nil {
			return fmt.Errorf("check supply: %w", err)
		}
		if !ok {
			return domain.ErrSupplyNotFound
		}

		key := models.RecordKey{AgencyID: p.AgencyID, SupplyID: cmd.SupplyID, Location: cmd.Location}
		if _, err := tx.GetRecordForUpdate(ctx, key); err == nil {
			return domain.ErrInventoryExists
		} else if !errors.Is(err, domain.ErrInventoryNotFound) {
			return fmt.Errorf("load inventory: %w", err)
		}

		eff, err := domainsvcs.ApplyInitial(key, domainsvcs.Seed{
			Quantity:       cmd.Quantity,
			ParLevel:       cmd.ParLevel,
			ExpirationDate: cmd.ExpirationDate,
			LotNumber:      cmd.LotNumber,
		}, s.entry(p, cmd.Notes))
		if err != nil {
			return err
		}
		if err := persist(ctx, tx, eff); err != nil {
			return err
		}
		out = eff.Record
		return tx.Emit(ctx, domainevents.TopicAdjusted, adjustedEvent(p, eff))
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, p.AgencyID)
	return &out, nil
}

// CreateOrder opens a draft numbered after the agency's existing orders.
// Two concurrent creations can compute the same number; the loser gets
// ErrOrderNumberConflict.
func (s *LedgerService) CreateOrder(ctx context.Context, p auth.Principal, cmd CreateOrderCommand) (*models.Order, error) {
	var out *models.Order
	err := s.uow.Do(ctx, func(tx repositories.LedgerTx) error {
		for _, line := range cmd.Items {
			ok, err := tx.SupplyExists(ctx, p.AgencyID, line.SupplyID)
			if err != nil {
				return fmt.Errorf("check supply: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrSupplyNotFound, line.SupplyID)
			}
		}
		existing, err := tx.CountOrders(ctx, p.AgencyID)
		if err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		o, err := models.NewOrder(p.AgencyID, p.UserID, cmd.Vendor, cmd.Notes, cmd.Items, existing, s.now())
		if err != nil {
			return err
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "order created", "order_id", out.ID, "order_number", out.OrderNumber)
	return out, nil
}

// transition loads an order under lock, applies fn and saves it.
func (s *LedgerService) transition(ctx context.Context, p auth.Principal, orderID uuid.UUID, fn func(o *models.Order, now time.Time) error) (*models.Order, error) {
	var out *models.Order
	err := s.uow.Do(ctx, func(tx repositories.LedgerTx) error {
		o, err := tx.GetOrderForUpdate(ctx, p.AgencyID, orderID)
		if err != nil {
			return err
		}
		if err := fn(o, s.now()); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrder edits the allow-listed fields of a draft.
func (s *LedgerService) UpdateOrder(ctx context.Context, p auth.Principal, orderID uuid.UUID, edit models.OrderEdit) (*models.Order, error) {
	return s.transition(ctx, p, orderID, func(o *models.Order, now time.Time) error {
		return o.Edit(edit, now)
	})
}

func (s *LedgerService) SubmitOrder(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, p, orderID, (*models.Order).Submit)
}

// ApproveOrder records p as the approver.
func (s *LedgerService) ApproveOrder(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, p, orderID, func(o *models.Order, now time.Time) error {
		return o.Approve(p.UserID, now)
	})
}

func (s *LedgerService) CancelOrder(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, p, orderID, (*models.Order).Cancel)
}

// ReceiveOrder books delivered quantities into the target location, creating
// inventory records as needed, then settles the order status.
func (s *LedgerService) ReceiveOrder(ctx context.Context, p auth.Principal, orderID uuid.UUID, cmd ReceiveCommand) (*models.Order, error) {
	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("%w: items are required", domain.ErrInvalidInput)
	}
	if err := validateLocation(cmd.Location); err != nil {
		return nil, err
	}

	err := s.uow.Do(ctx, func(tx repositories.LedgerTx) error {
		o, err := tx.GetOrderForUpdate(ctx, p.AgencyID, orderID)
		if err != nil {
			return err
		}
		if err := o.CheckReceivable(); err != nil {
			return err
		}
		if err := requireLocation(ctx, tx, p.AgencyID, cmd.Location); err != nil {
			return err
		}

		e := s.entry(p, "Received from order "+o.OrderNumber)
		lines := make([]domainevents.StockLine, 0, len(cmd.Items))
		for _, line := range cmd.Items {
			item, err := o.ReceiveItem(line.OrderItemID, line.QuantityReceived)
			if err != nil {
				return err
			}
			if err := tx.UpdateOrderItemReceived(ctx, item); err != nil {
				return fmt.Errorf("update order item: %w", err)
			}

			key := models.RecordKey{AgencyID: p.AgencyID, SupplyID: item.SupplyID, Location: cmd.Location}
			rec, err := tx.GetRecordForUpdate(ctx, key)
			if err != nil && !errors.Is(err, domain.ErrInventoryNotFound) {
				return fmt.Errorf("load inventory: %w", err)
			}
			eff, err := domainsvcs.ApplyReceipt(rec, key, line.QuantityReceived, e)
			if err != nil {
				return err
			}
			if err := persist(ctx, tx, eff); err != nil {
				return err
			}
			lines = append(lines, domainevents.StockLine{SupplyID: item.SupplyID, Delta: line.QuantityReceived, Quantity: eff.Record.Quantity})
		}

		o.SettleReceipt(e.At)
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		return tx.Emit(ctx, domainevents.TopicOrderReceived, domainevents.OrderReceivedEvent{
			EventID:      uuid.New(),
			Version:      1,
			AgencyID:     p.AgencyID,
			OrderID:      o.ID,
			OrderNumber:  o.OrderNumber,
			Status:       string(o.Status),
			LocationType: string(cmd.Location.Type),
			LocationID:   cmd.Location.ID,
			Lines:        lines,
			OccurredAt:   e.At,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "order received", "order_id", orderID, "items", len(cmd.Items))
	s.invalidate(ctx, p.AgencyID)
	return s.queries.GetOrder(ctx, p.AgencyID, orderID)
}

// persist writes both halves of a command's effect.
func persist(ctx context.Context, tx repositories.LedgerTx, eff domainsvcs.Effect) error {
	if eff.Created {
		if err := tx.InsertRecord(ctx, &eff.Record); err != nil {
			return fmt.Errorf("insert inventory: %w", err)
		}
	} else if err := tx.UpdateRecord(ctx, &eff.Record); err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	if err := tx.InsertTransaction(ctx, &eff.Transaction); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func adjustedEvent(p auth.Principal, eff domainsvcs.Effect) domainevents.InventoryAdjustedEvent {
	return domainevents.InventoryAdjustedEvent{
		EventID:      uuid.New(),
		Version:      1,
		AgencyID:     p.AgencyID,
		UserID:       p.UserID,
		LocationType: string(eff.Record.Location.Type),
		LocationID:   eff.Record.Location.ID,
		Line: domainevents.StockLine{
			SupplyID: eff.Record.SupplyID,
			Delta:    eff.Transaction.Quantity,
			Quantity: eff.Record.Quantity,
		},
		OccurredAt: eff.Transaction.Date,
	}
}

func (s *LedgerService) invalidate(ctx context.Context, agencyID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), agencyID); err != nil {
		s.log.WarnContext(ctx, "inventory cache invalidation failed", "error", err)
	}
}

// InventorySummary returns per-supply totals using a read-through cache.
func (s *LedgerService) InventorySummary(ctx context.Context, p auth.Principal) ([]models.SupplyTotal, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, p.AgencyID)
		if err == nil {
			return fromCache(cached), nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "inventory cache read failed", "error", err)
		}
	}

	totals, err := s.queries.InventoryTotals(ctx, p.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("inventory totals: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(context.WithoutCancel(ctx), p.AgencyID, toCache(totals)); err != nil {
			s.log.WarnContext(ctx, "inventory cache write failed", "error", err)
		}
	}
	return totals, nil
}

func toCache(totals []models.SupplyTotal) []pkgcache.CachedSupplyTotal {
	out := make([]pkgcache.CachedSupplyTotal, len(totals))
	for i, t := range totals {
		out[i] = pkgcache.CachedSupplyTotal(t)
	}
	return out
}

func fromCache(cached []pkgcache.CachedSupplyTotal) []models.SupplyTotal {
	out := make([]models.SupplyTotal, len(cached))
	for i, c := range cached {
		out[i] = models.SupplyTotal(c)
	}
	return out
}

// LocationInventory returns a location and its stock. Locations of other
// agencies are reported as not found.
func (s *LedgerService) LocationInventory(ctx context.Context, p auth.Principal, loc models.Location) (*models.LocationInfo, []models.InventoryView, error) {
	info, err := s.queries.Location(ctx, p.AgencyID, loc)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.queries.LocationInventory(ctx, p.AgencyID, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("location inventory: %w", err)
	}
	return info, rows, nil
}

// Expiring lists tracked records expiring within days of today.
func (s *LedgerService) Expiring(ctx context.Context, p auth.Principal, days int) ([]models.InventoryView, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative", domain.ErrInvalidInput)
	}
	until := models.Day(s.now()).AddDate(0, 0, days)
	rows, err := s.queries.Expiring(ctx, p.AgencyID, until)
	if err != nil {
		return nil, fmt.Errorf("expiring inventory: %w", err)
	}
	return rows, nil
}

func (s *LedgerService) BelowPar(ctx context.Context, p auth.Principal) ([]models.InventoryView, error) {
	rows, err := s.queries.BelowPar(ctx, p.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("below par inventory: %w", err)
	}
	return rows, nil
}

// Transactions lists the journal newest first. The limit defaults to 100
// and is capped at 500.
func (s *LedgerService) Transactions(ctx context.Context, p auth.Principal, f models.TransactionFilter) ([]models.TransactionView, error) {
	switch {
	case f.Limit <= 0:
		f.Limit = defaultTransactionLimit
	case f.Limit > maxTransactionLimit:
		f.Limit = maxTransactionLimit
	}
	if f.Location != nil {
		if err := validateLocation(*f.Location); err != nil {
			return nil, err
		}
	}
	rows, err := s.queries.Transactions(ctx, p.AgencyID, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return rows, nil
}

func (s *LedgerService) ListOrders(ctx context.Context, p auth.Principal, status models.OrderStatus) ([]models.OrderSummary, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidInput, status)
	}
	orders, err := s.queries.ListOrders(ctx, p.AgencyID, status)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *LedgerService) GetOrder(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*models.Order, error) {
	return s.queries.GetOrder(ctx, p.AgencyID, orderID)
}

// ReorderList totals the shortfall below par per supply with its estimated cost.
func (s *LedgerService) ReorderList(ctx context.Context, p auth.Principal) ([]models.ReorderLine, error) {
	lines, err := s.queries.ReorderList(ctx, p.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("reorder list: %w", err)
	}
	return lines, nil
}
