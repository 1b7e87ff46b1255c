package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/emssupply/pkg/auth"
	pkgcache "github.com/ghuser/emssupply/pkg/cache"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/ledger/domain"
	domainevents "github.com/ghuser/emssupply/services/ledger/domain/events"
	"github.com/ghuser/emssupply/services/ledger/domain/models"
	"github.com/ghuser/emssupply/services/ledger/infrastructure/persistence/memory"
)

var testNow = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

type fixture struct {
	store      *memory.Store
	svc        *LedgerService
	medic      auth.Principal
	supervisor auth.Principal
	unit       models.Location
	station    models.Location
	gauze      uuid.UUID
	saline     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	agencyID := uuid.New()
	f := &fixture{
		store:      memory.NewStore(),
		medic:      auth.Principal{UserID: uuid.New(), AgencyID: agencyID, Role: auth.RoleMedic},
		supervisor: auth.Principal{UserID: uuid.New(), AgencyID: agencyID, Role: auth.RoleSupervisor},
		unit:       models.Location{Type: models.LocationUnit, ID: uuid.New()},
		station:    models.Location{Type: models.LocationStation, ID: uuid.New()},
		gauze:      uuid.New(),
		saline:     uuid.New(),
	}
	f.store.AddLocation(agencyID, f.unit, "Medic 12")
	f.store.AddLocation(agencyID, f.station, "Station 3")
	f.store.AddSupply(memory.Supply{ID: f.gauze, AgencyID: agencyID, Name: "Gauze 4x4", SKU: "GZ-44", UnitCost: decimal.RequireFromString("0.35")})
	f.store.AddSupply(memory.Supply{ID: f.saline, AgencyID: agencyID, Name: "Saline 1L", SKU: "NS-1000", UnitCost: decimal.RequireFromString("2.10"), TracksExpiration: true})
	f.store.AddUser(memory.User{ID: f.supervisor.UserID, AgencyID: agencyID, FirstName: "Dana", LastName: "Ruiz"})

	f.svc = NewLedgerService(f.store, f.store, nil, logger.NewWithWriter(io.Discard, "error"))
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) seed(t *testing.T, supplyID uuid.UUID, loc models.Location, quantity, par int) {
	t.Helper()
	_, err := f.svc.SeedInventory(context.Background(), f.supervisor, SeedCommand{SupplyID: supplyID, Location: loc, Quantity: quantity, ParLevel: par})
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, supplyID uuid.UUID, loc models.Location) int {
	t.Helper()
	_, rows, err := f.svc.LocationInventory(context.Background(), f.medic, loc)
	require.NoError(t, err)
	for _, r := range rows {
		if r.SupplyID == supplyID {
			return r.Quantity
		}
	}
	t.Fatalf("no record for supply %s at %s", supplyID, loc.ID)
	return 0
}

func (f *fixture) approvedOrder(t *testing.T, lines ...models.OrderLine) *models.Order {
	t.Helper()
	ctx := context.Background()
	o, err := f.svc.CreateOrder(ctx, f.supervisor, CreateOrderCommand{Vendor: "Bound Tree", Items: lines})
	require.NoError(t, err)
	_, err = f.svc.SubmitOrder(ctx, f.supervisor, o.ID)
	require.NoError(t, err)
	o, err = f.svc.ApproveOrder(ctx, f.supervisor, o.ID)
	require.NoError(t, err)
	return o
}

func TestRecordUsage_DecrementsAndJournals(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.gauze, f.unit, 20, 30)

	err := f.svc.RecordUsage(context.Background(), f.medic, UsageCommand{
		Items:          []UsageItem{{SupplyID: f.gauze, Quantity: 4}},
		Location:       f.unit,
		IncidentNumber: "26-00451",
	})
	require.NoError(t, err)

	assert.Equal(t, 16, f.quantity(t, f.gauze, f.unit))

	txns := f.store.Journal()
	require.Len(t, txns, 2)
	usage := txns[1]
	assert.Equal(t, models.TxUsage, usage.Type)
	assert.Equal(t, -4, usage.Quantity)
	assert.Equal(t, models.UsagePatientCare, usage.UsageType)
	assert.Equal(t, f.medic.UserID, usage.UserID)
	assert.Equal(t, "26-00451", usage.IncidentNumber)

	evts := f.store.Events()
	require.NotEmpty(t, evts)
	assert.Equal(t, domainevents.TopicUsageRecorded, evts[len(evts)-1].Topic)
}

func TestRecordUsage_BatchIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name    string
		second  UsageItem
		wantErr error
	}{
		{"insufficient stock", UsageItem{Quantity: 6}, domain.ErrInsufficientStock},
		{"missing record", UsageItem{SupplyID: uuid.New(), Quantity: 1}, domain.ErrInventoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, f.gauze, f.unit, 20, 30)
			f.seed(t, f.saline, f.unit, 5, 10)
			if tt.second.SupplyID == uuid.Nil {
				tt.second.SupplyID = f.saline
			}
			before := len(f.store.Journal())

			err := f.svc.RecordUsage(context.Background(), f.medic, UsageCommand{
				Items:    []UsageItem{{SupplyID: f.gauze, Quantity: 3}, tt.second},
				Location: f.unit,
			})
			require.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, 20, f.quantity(t, f.gauze, f.unit))
			assert.Equal(t, 5, f.quantity(t, f.saline, f.unit))
			assert.Len(t, f.store.Journal(), before)
		})
	}
}

func TestRecordUsage_Rejects(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.gauze, f.unit, 20, 30)
	foreign := models.Location{Type: models.LocationUnit, ID: uuid.New()}

	tests := []struct {
		name    string
		cmd     UsageCommand
		wantErr error
	}{
		{"no items", UsageCommand{Location: f.unit}, domain.ErrInvalidInput},
		{"bad location type", UsageCommand{Items: []UsageItem{{SupplyID: f.gauze, Quantity: 1}}, Location: models.Location{Type: "truck", ID: f.unit.ID}}, domain.ErrInvalidInput},
		{"unknown location", UsageCommand{Items: []UsageItem{{SupplyID: f.gauze, Quantity: 1}}, Location: foreign}, domain.ErrLocationNotFound},
		{"zero quantity", UsageCommand{Items: []UsageItem{{SupplyID: f.gauze, Quantity: 0}}, Location: f.unit}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.RecordUsage(context.Background(), f.medic, tt.cmd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAdjustInventory_JournalsZeroDelta(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.gauze, f.station, 12, 30)

	rec, err := f.svc.AdjustInventory(context.Background(), f.supervisor, AdjustCommand{SupplyID: f.gauze, Location: f.station, Quantity: 12, Notes: "monthly count"})
	require.NoError(t, err)
	assert.Equal(t, 12, rec.Quantity)

	txns := f.store.Journal()
	last := txns[len(txns)-1]
	assert.Equal(t, models.TxAdjustment, last.Type)
	assert.Equal(t, 0, last.Quantity)
	assert.Equal(t, "monthly count", last.Notes)
}

func TestAdjustInventory_MissingRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AdjustInventory(context.Background(), f.supervisor, AdjustCommand{SupplyID: f.gauze, Location: f.station, Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrInventoryNotFound)
}

func TestSeedInventory_Conflict(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.gauze, f.unit, 1, 1)

	_, err := f.svc.SeedInventory(context.Background(), f.supervisor, SeedCommand{SupplyID: f.gauze, Location: f.unit, Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrInventoryExists)

	_, err = f.svc.SeedInventory(context.Background(), f.supervisor, SeedCommand{SupplyID: uuid.New(), Location: f.unit, Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrSupplyNotFound)
}

// Quantity always equals the sum of journaled deltas for the record.
func TestLedger_QuantityMatchesJournal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, f.gauze, f.station, 10, 40)

	require.NoError(t, f.svc.RecordUsage(ctx, f.medic, UsageCommand{Items: []UsageItem{{SupplyID: f.gauze, Quantity: 7}}, Location: f.station}))
	_, err := f.svc.AdjustInventory(ctx, f.supervisor, AdjustCommand{SupplyID: f.gauze, Location: f.station, Quantity: 9})
	require.NoError(t, err)
	o := f.approvedOrder(t, models.OrderLine{SupplyID: f.gauze, QuantityOrdered: 30, UnitCost: decimal.RequireFromString("0.35")})
	_, err = f.svc.ReceiveOrder(ctx, f.supervisor, o.ID, ReceiveCommand{Items: []ReceiveLine{{OrderItemID: o.Items[0].ID, QuantityReceived: 12}}, Location: f.station})
	require.NoError(t, err)
	require.NoError(t, f.svc.RecordUsage(ctx, f.medic, UsageCommand{Items: []UsageItem{{SupplyID: f.gauze, Quantity: 21}}, Location: f.station}))

	sum := 0
	for _, txn := range f.store.Journal() {
		if txn.SupplyID == f.gauze && txn.Location == f.station {
			sum += txn.Quantity
		}
	}
	assert.Equal(t, 0, f.quantity(t, f.gauze, f.station))
	assert.Equal(t, f.quantity(t, f.gauze, f.station), sum)
}

func TestCreateOrder_NumbersSequentially(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	line := models.OrderLine{SupplyID: f.gauze, QuantityOrdered: 100, UnitCost: decimal.RequireFromString("0.35")}

	first, err := f.svc.CreateOrder(ctx, f.supervisor, CreateOrderCommand{Items: []models.OrderLine{line}})
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(ctx, f.supervisor, CreateOrderCommand{Items: []models.OrderLine{line}})
	require.NoError(t, err)

	assert.Equal(t, "ORD-2026-00001", first.OrderNumber)
	assert.Equal(t, "ORD-2026-00002", second.OrderNumber)
	assert.True(t, first.TotalCost.Equal(decimal.RequireFromString("35")))

	_, err = f.svc.CreateOrder(ctx, f.supervisor, CreateOrderCommand{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.CreateOrder(ctx, f.supervisor, CreateOrderCommand{Items: []models.OrderLine{{SupplyID: uuid.New(), QuantityOrdered: 1}}})
	assert.ErrorIs(t, err, domain.ErrSupplyNotFound)
}

func TestReceiveOrder_PartialThenReceived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cost := decimal.RequireFromString("1.00")
	o := f.approvedOrder(t,
		models.OrderLine{SupplyID: f.gauze, QuantityOrdered: 10, UnitCost: cost},
		models.OrderLine{SupplyID: f.saline, QuantityOrdered: 10, UnitCost: cost},
	)
	first, second := o.Items[0].ID, o.Items[1].ID

	got, err := f.svc.ReceiveOrder(ctx, f.supervisor, o.ID, ReceiveCommand{
		Items:    []ReceiveLine{{OrderItemID: first, QuantityReceived: 10}, {OrderItemID: second, QuantityReceived: 5}},
		Location: f.station,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderPartial, got.Status)
	assert.Nil(t, got.ReceivedDate)

	// Receipt creates the station records with par 0.
	_, rows, err := f.svc.LocationInventory(ctx, f.medic, f.station)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, 0, r.ParLevel)
	}

	got, err = f.svc.ReceiveOrder(ctx, f.supervisor, o.ID, ReceiveCommand{
		Items:    []ReceiveLine{{OrderItemID: second, QuantityReceived: 5}},
		Location: f.station,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderReceived, got.Status)
	require.NotNil(t, got.ReceivedDate)
	assert.True(t, got.ReceivedDate.Equal(models.Day(testNow)))
	assert.Equal(t, 10, f.quantity(t, f.saline, f.station))

	txns := f.store.Journal()
	last := txns[len(txns)-1]
	assert.Equal(t, models.TxReceive, last.Type)
	assert.Equal(t, "Received from order "+o.OrderNumber, last.Notes)

	evts := f.store.Events()
	received, ok := evts[len(evts)-1].Payload.(domainevents.OrderReceivedEvent)
	require.True(t, ok)
	assert.Equal(t, string(models.OrderReceived), received.Status)
}

func TestReceiveOrder_RejectsDraftAndUnknownItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft, err := f.svc.CreateOrder(ctx, f.supervisor, CreateOrderCommand{Items: []models.OrderLine{{SupplyID: f.gauze, QuantityOrdered: 1}}})
	require.NoError(t, err)

	_, err = f.svc.ReceiveOrder(ctx, f.supervisor, draft.ID, ReceiveCommand{Items: []ReceiveLine{{OrderItemID: draft.Items[0].ID, QuantityReceived: 1}}, Location: f.unit})
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)

	o := f.approvedOrder(t, models.OrderLine{SupplyID: f.gauze, QuantityOrdered: 2})
	_, err = f.svc.ReceiveOrder(ctx, f.supervisor, o.ID, ReceiveCommand{Items: []ReceiveLine{{OrderItemID: draft.Items[0].ID, QuantityReceived: 1}}, Location: f.unit})
	assert.ErrorIs(t, err, domain.ErrOrderItemNotFound)
	assert.Empty(t, f.store.Journal())
}

func TestCancelOrder_InvalidState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	line := models.OrderLine{SupplyID: f.gauze, QuantityOrdered: 1}

	approved := f.approvedOrder(t, line)
	_, err := f.svc.CancelOrder(ctx, f.supervisor, approved.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)

	received := f.approvedOrder(t, line)
	_, err = f.svc.ReceiveOrder(ctx, f.supervisor, received.ID, ReceiveCommand{Items: []ReceiveLine{{OrderItemID: received.Items[0].ID, QuantityReceived: 1}}, Location: f.unit})
	require.NoError(t, err)
	_, err = f.svc.CancelOrder(ctx, f.supervisor, received.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)

	draft, err := f.svc.CreateOrder(ctx, f.supervisor, CreateOrderCommand{Items: []models.OrderLine{line}})
	require.NoError(t, err)
	cancelled, err := f.svc.CancelOrder(ctx, f.supervisor, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
}

func TestLedger_AgencyIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, f.gauze, f.unit, 8, 10)
	o, err := f.svc.CreateOrder(ctx, f.supervisor, CreateOrderCommand{Items: []models.OrderLine{{SupplyID: f.gauze, QuantityOrdered: 1}}})
	require.NoError(t, err)

	other := auth.Principal{UserID: uuid.New(), AgencyID: uuid.New(), Role: auth.RoleAdmin}

	_, err = f.svc.GetOrder(ctx, other, o.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	_, err = f.svc.ApproveOrder(ctx, other, o.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	_, _, err = f.svc.LocationInventory(ctx, other, f.unit)
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
	_, err = f.svc.AdjustInventory(ctx, other, AdjustCommand{SupplyID: f.gauze, Location: f.unit, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInventoryNotFound)
	err = f.svc.RecordUsage(ctx, other, UsageCommand{Items: []UsageItem{{SupplyID: f.gauze, Quantity: 1}}, Location: f.unit})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	totals, err := f.svc.InventorySummary(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, totals)
	orders, err := f.svc.ListOrders(ctx, other, "")
	require.NoError(t, err)
	assert.Empty(t, orders)

	assert.Equal(t, 8, f.quantity(t, f.gauze, f.unit))
}

func TestReads_ExpiringBelowParReorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soon := testNow.AddDate(0, 0, 20)
	late := testNow.AddDate(0, 0, 200)
	_, err := f.svc.SeedInventory(ctx, f.supervisor, SeedCommand{SupplyID: f.saline, Location: f.unit, Quantity: 2, ParLevel: 10, ExpirationDate: &soon})
	require.NoError(t, err)
	_, err = f.svc.SeedInventory(ctx, f.supervisor, SeedCommand{SupplyID: f.saline, Location: f.station, Quantity: 20, ParLevel: 10, ExpirationDate: &late})
	require.NoError(t, err)
	f.seed(t, f.gauze, f.unit, 0, 100)

	expiring, err := f.svc.Expiring(ctx, f.medic, 90)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, f.unit, expiring[0].Location)

	below, err := f.svc.BelowPar(ctx, f.medic)
	require.NoError(t, err)
	assert.Len(t, below, 2)

	reorder, err := f.svc.ReorderList(ctx, f.supervisor)
	require.NoError(t, err)
	require.Len(t, reorder, 2)
	assert.Equal(t, f.gauze, reorder[0].SupplyID)
	assert.Equal(t, 100, reorder[0].TotalNeeded)
	assert.True(t, reorder[0].EstimatedCost.Equal(decimal.RequireFromString("35")))
	assert.True(t, reorder[1].EstimatedCost.Equal(decimal.RequireFromString("16.8")))

	_, err = f.svc.Expiring(ctx, f.medic, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransactions_FiltersAndLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, f.gauze, f.unit, 10, 10)
	f.seed(t, f.saline, f.station, 10, 10)

	rows, err := f.svc.Transactions(ctx, f.medic, models.TransactionFilter{SupplyID: f.gauze})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Gauze 4x4", rows[0].SupplyName)
	assert.Equal(t, "Dana", rows[0].UserFirstName)

	rows, err = f.svc.Transactions(ctx, f.medic, models.TransactionFilter{Location: &f.station, Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

type fakeSummaryCache struct {
	entries     map[uuid.UUID][]pkgcache.CachedSupplyTotal
	invalidated []uuid.UUID
}

func (c *fakeSummaryCache) Get(_ context.Context, agencyID uuid.UUID) ([]pkgcache.CachedSupplyTotal, error) {
	v, ok := c.entries[agencyID]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (c *fakeSummaryCache) Set(_ context.Context, agencyID uuid.UUID, totals []pkgcache.CachedSupplyTotal) error {
	c.entries[agencyID] = totals
	return nil
}

func (c *fakeSummaryCache) Invalidate(_ context.Context, agencyID uuid.UUID) error {
	delete(c.entries, agencyID)
	c.invalidated = append(c.invalidated, agencyID)
	return nil
}

func TestInventorySummary_ReadThroughAndInvalidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := &fakeSummaryCache{entries: map[uuid.UUID][]pkgcache.CachedSupplyTotal{}}
	f.svc.cache = cache

	f.seed(t, f.gauze, f.unit, 10, 20)
	f.seed(t, f.gauze, f.station, 30, 20)

	totals, err := f.svc.InventorySummary(ctx, f.medic)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 40, totals[0].TotalQuantity)
	assert.Equal(t, 40, totals[0].TotalParLevel)
	require.Contains(t, cache.entries, f.medic.AgencyID)

	require.NoError(t, f.svc.RecordUsage(ctx, f.medic, UsageCommand{Items: []UsageItem{{SupplyID: f.gauze, Quantity: 5}}, Location: f.unit}))
	assert.NotContains(t, cache.entries, f.medic.AgencyID)

	totals, err = f.svc.InventorySummary(ctx, f.medic)
	require.NoError(t, err)
	assert.Equal(t, 35, totals[0].TotalQuantity)
}
