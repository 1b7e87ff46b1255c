// Package memory is an in-process implementation of the ledger repositories.
// A unit of work runs against a cloned copy of the state and replaces the
// committed state only when it succeeds, so a failed batch leaves nothing
// behind. Units of work are serialized by a single mutex.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/emssupply/services/ledger/domain"
	"github.com/ghuser/emssupply/services/ledger/domain/models"
	"github.com/ghuser/emssupply/services/ledger/domain/repositories"
)

// Supply is the catalog data the ledger joins against.
type Supply struct {
	ID               uuid.UUID
	AgencyID         uuid.UUID
	Name             string
	SKU              string
	UnitOfMeasure    string
	CategoryName     string
	UnitCost         decimal.Decimal
	TracksExpiration bool
}

// User is the name data joined into journal and order listings.
type User struct {
	ID        uuid.UUID
	AgencyID  uuid.UUID
	FirstName string
	LastName  string
}

// Event is a message emitted by a committed unit of work.
type Event struct {
	Topic   string
	Payload any
}

type location struct {
	agencyID uuid.UUID
	name     string
	active   bool
}

type state struct {
	records      map[uuid.UUID]models.InventoryRecord
	transactions []models.Transaction
	orders       map[uuid.UUID]models.Order
	events       []Event
}

func (s state) clone() state {
	c := state{
		records:      make(map[uuid.UUID]models.InventoryRecord, len(s.records)),
		transactions: slices.Clone(s.transactions),
		orders:       make(map[uuid.UUID]models.Order, len(s.orders)),
		events:       slices.Clone(s.events),
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = cloneOrder(v)
	}
	return c
}

func cloneOrder(o models.Order) models.Order {
	items := make([]*models.OrderItem, len(o.Items))
	for i, it := range o.Items {
		cp := *it
		items[i] = &cp
	}
	o.Items = items
	return o
}

// Store holds reference data plus the committed ledger state.
type Store struct {
	mu        sync.Mutex
	supplies  map[uuid.UUID]Supply
	locations map[models.Location]location
	users     map[uuid.UUID]User
	st        state
}

var (
	_ repositories.UnitOfWork    = (*Store)(nil)
	_ repositories.LedgerQueries = (*Store)(nil)
	_ repositories.LedgerTx      = (*tx)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		supplies:  map[uuid.UUID]Supply{},
		locations: map[models.Location]location{},
		users:     map[uuid.UUID]User{},
		st: state{
			records: map[uuid.UUID]models.InventoryRecord{},
			orders:  map[uuid.UUID]models.Order{},
		},
	}
}

// AddSupply registers a catalog supply.
func (s *Store) AddSupply(sup Supply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supplies[sup.ID] = sup
}

// AddLocation registers an active unit or station owned by agencyID.
func (s *Store) AddLocation(agencyID uuid.UUID, loc models.Location, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[loc] = location{agencyID: agencyID, name: name, active: true}
}

// AddUser registers a user for name joins.
func (s *Store) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// Journal returns the committed journal in insertion order.
func (s *Store) Journal() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.transactions)
}

// Events returns the committed events in emission order.
func (s *Store) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.events)
}

// Do runs fn on a staged copy of the state and commits it if fn succeeds.
func (s *Store) Do(ctx context.Context, fn func(repositories.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.st.clone()
	if err := fn(&tx{store: s, st: &staged}); err != nil {
		return err
	}
	s.st = staged
	return nil
}

// tx is valid only inside Do, where the store mutex is held.
type tx struct {
	store *Store
	st    *state
}

func (t *tx) LocationExists(_ context.Context, agencyID uuid.UUID, loc models.Location) (bool, error) {
	l, ok := t.store.locations[loc]
	return ok && l.agencyID == agencyID, nil
}

func (t *tx) SupplyExists(_ context.Context, agencyID, supplyID uuid.UUID) (bool, error) {
	sup, ok := t.store.supplies[supplyID]
	return ok && sup.AgencyID == agencyID, nil
}

func (t *tx) GetRecordForUpdate(_ context.Context, key models.RecordKey) (*models.InventoryRecord, error) {
	for _, rec := range t.st.records {
		if rec.Key() == key {
			rec.SupplyName = t.store.supplies[rec.SupplyID].Name
			return &rec, nil
		}
	}
	return nil, domain.ErrInventoryNotFound
}

func (t *tx) InsertRecord(_ context.Context, rec *models.InventoryRecord) error {
	for _, existing := range t.st.records {
		if existing.Key() == rec.Key() {
			return domain.ErrInventoryExists
		}
	}
	stored := *rec
	stored.SupplyName = ""
	t.st.records[rec.ID] = stored
	return nil
}

func (t *tx) UpdateRecord(_ context.Context, rec *models.InventoryRecord) error {
	if _, ok := t.st.records[rec.ID]; !ok {
		return domain.ErrInventoryNotFound
	}
	stored := *rec
	stored.SupplyName = ""
	t.st.records[rec.ID] = stored
	return nil
}

func (t *tx) InsertTransaction(_ context.Context, txn *models.Transaction) error {
	t.st.transactions = append(t.st.transactions, *txn)
	return nil
}

func (t *tx) CountOrders(_ context.Context, agencyID uuid.UUID) (int, error) {
	n := 0
	for _, o := range t.st.orders {
		if o.AgencyID == agencyID {
			n++
		}
	}
	return n, nil
}

func (t *tx) InsertOrder(_ context.Context, o *models.Order) error {
	for _, existing := range t.st.orders {
		if existing.AgencyID == o.AgencyID && existing.OrderNumber == o.OrderNumber {
			return domain.ErrOrderNumberConflict
		}
	}
	t.st.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (t *tx) GetOrderForUpdate(_ context.Context, agencyID, orderID uuid.UUID) (*models.Order, error) {
	o, ok := t.st.orders[orderID]
	if !ok || o.AgencyID != agencyID {
		return nil, domain.ErrOrderNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (t *tx) UpdateOrder(_ context.Context, o *models.Order) error {
	existing, ok := t.st.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	items := existing.Items
	updated := *o
	updated.Items = items
	t.st.orders[o.ID] = cloneOrder(updated)
	return nil
}

func (t *tx) UpdateOrderItemReceived(_ context.Context, item *models.OrderItem) error {
	o, ok := t.st.orders[item.OrderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	for _, it := range o.Items {
		if it.ID == item.ID {
			it.QuantityReceived = item.QuantityReceived
			return nil
		}
	}
	return domain.ErrOrderItemNotFound
}

func (t *tx) Emit(_ context.Context, topic string, event any) error {
	t.st.events = append(t.st.events, Event{Topic: topic, Payload: event})
	return nil
}

// InventoryTotals sums quantity and par level per supply, ordered by name.
func (s *Store) InventoryTotals(_ context.Context, agencyID uuid.UUID) ([]models.SupplyTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySupply := map[uuid.UUID]*models.SupplyTotal{}
	for _, rec := range s.st.records {
		if rec.AgencyID != agencyID {
			continue
		}
		tot, ok := bySupply[rec.SupplyID]
		if !ok {
			sup := s.supplies[rec.SupplyID]
			tot = &models.SupplyTotal{SupplyID: sup.ID, SupplyName: sup.Name, SKU: sup.SKU, CategoryName: sup.CategoryName}
			bySupply[rec.SupplyID] = tot
		}
		tot.TotalQuantity += rec.Quantity
		tot.TotalParLevel += rec.ParLevel
	}

	out := make([]models.SupplyTotal, 0, len(bySupply))
	for _, tot := range bySupply {
		out = append(out, *tot)
	}
	slices.SortFunc(out, func(a, b models.SupplyTotal) int { return cmp.Compare(a.SupplyName, b.SupplyName) })
	return out, nil
}

func (s *Store) Location(_ context.Context, agencyID uuid.UUID, loc models.Location) (*models.LocationInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locations[loc]
	if !ok || l.agencyID != agencyID {
		return nil, domain.ErrLocationNotFound
	}
	return &models.LocationInfo{Location: loc, Name: l.name, Active: l.active}, nil
}

func (s *Store) LocationInventory(_ context.Context, agencyID uuid.UUID, loc models.Location) ([]models.InventoryView, error) {
	return s.views(agencyID, func(r models.InventoryRecord, _ Supply) bool { return r.Location == loc }, byName), nil
}

func (s *Store) Expiring(_ context.Context, agencyID uuid.UUID, until time.Time) ([]models.InventoryView, error) {
	return s.views(agencyID, func(r models.InventoryRecord, sup Supply) bool {
		return sup.TracksExpiration && r.ExpirationDate != nil && !r.ExpirationDate.After(until)
	}, byExpiration), nil
}

func (s *Store) BelowPar(_ context.Context, agencyID uuid.UUID) ([]models.InventoryView, error) {
	return s.views(agencyID, func(r models.InventoryRecord, _ Supply) bool { return r.Quantity < r.ParLevel }, byName), nil
}

func byName(a, b models.InventoryView) int { return cmp.Compare(a.SupplyName, b.SupplyName) }

func byExpiration(a, b models.InventoryView) int { return a.ExpirationDate.Compare(*b.ExpirationDate) }

func (s *Store) views(agencyID uuid.UUID, keep func(models.InventoryRecord, Supply) bool, order func(a, b models.InventoryView) int) []models.InventoryView {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.InventoryView
	for _, rec := range s.st.records {
		sup := s.supplies[rec.SupplyID]
		if rec.AgencyID != agencyID || !keep(rec, sup) {
			continue
		}
		rec.SupplyName = sup.Name
		out = append(out, models.InventoryView{
			InventoryRecord:  rec,
			SKU:              sup.SKU,
			UnitOfMeasure:    sup.UnitOfMeasure,
			TracksExpiration: sup.TracksExpiration,
			CategoryName:     sup.CategoryName,
			UnitCost:         sup.UnitCost,
		})
	}
	slices.SortFunc(out, order)
	return out
}

// Transactions lists journal entries newest first.
func (s *Store) Transactions(_ context.Context, agencyID uuid.UUID, f models.TransactionFilter) ([]models.TransactionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.TransactionView
	for _, txn := range s.st.transactions {
		switch {
		case txn.AgencyID != agencyID:
			continue
		case f.SupplyID != uuid.Nil && txn.SupplyID != f.SupplyID:
			continue
		case f.Location != nil && txn.Location != *f.Location:
			continue
		case !f.Since.IsZero() && txn.Date.Before(f.Since):
			continue
		}
		u := s.users[txn.UserID]
		out = append(out, models.TransactionView{
			Transaction:   txn,
			SupplyName:    s.supplies[txn.SupplyID].Name,
			UserFirstName: u.FirstName,
			UserLastName:  u.LastName,
		})
	}
	slices.SortStableFunc(out, func(a, b models.TransactionView) int { return b.Date.Compare(a.Date) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) ListOrders(_ context.Context, agencyID uuid.UUID, status models.OrderStatus) ([]models.OrderSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.OrderSummary
	for _, o := range s.st.orders {
		if o.AgencyID != agencyID || (status != "" && o.Status != status) {
			continue
		}
		u := s.users[o.CreatedBy]
		o = cloneOrder(o)
		o.Items = nil
		out = append(out, models.OrderSummary{Order: o, CreatedByFirstName: u.FirstName, CreatedByLastName: u.LastName})
	}
	slices.SortFunc(out, func(a, b models.OrderSummary) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Store) GetOrder(_ context.Context, agencyID, orderID uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.st.orders[orderID]
	if !ok || o.AgencyID != agencyID {
		return nil, domain.ErrOrderNotFound
	}
	o = cloneOrder(o)
	for _, it := range o.Items {
		sup := s.supplies[it.SupplyID]
		it.SupplyName, it.SKU, it.UnitOfMeasure = sup.Name, sup.SKU, sup.UnitOfMeasure
	}
	return &o, nil
}

// ReorderList totals par shortfall per supply, costliest first.
func (s *Store) ReorderList(_ context.Context, agencyID uuid.UUID) ([]models.ReorderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySupply := map[uuid.UUID]*models.ReorderLine{}
	for _, rec := range s.st.records {
		if rec.AgencyID != agencyID || rec.Quantity >= rec.ParLevel {
			continue
		}
		line, ok := bySupply[rec.SupplyID]
		if !ok {
			sup := s.supplies[rec.SupplyID]
			line = &models.ReorderLine{SupplyID: sup.ID, SupplyName: sup.Name, SKU: sup.SKU, UnitCost: sup.UnitCost}
			bySupply[rec.SupplyID] = line
		}
		line.TotalNeeded += rec.ParLevel - rec.Quantity
	}

	out := make([]models.ReorderLine, 0, len(bySupply))
	for _, line := range bySupply {
		line.EstimatedCost = line.UnitCost.Mul(decimal.NewFromInt(int64(line.TotalNeeded)))
		out = append(out, *line)
	}
	slices.SortFunc(out, func(a, b models.ReorderLine) int { return b.EstimatedCost.Cmp(a.EstimatedCost) })
	return out, nil
}
