package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the ledger inside the ledger transaction.
const (
	TopicUsageRecorded = "inventory.usage_recorded"
	TopicAdjusted      = "inventory.adjusted"
	TopicOrderReceived = "order.received"
)

// StockLine is one supply touched by a ledger operation.
type StockLine struct {
	SupplyID uuid.UUID `json:"supply_id"`
	Delta    int       `json:"delta"`
	Quantity int       `json:"quantity"` // on-hand after the change
}

// UsageRecordedEvent is published after a usage batch commits.
type UsageRecordedEvent struct {
	EventID      uuid.UUID   `json:"event_id"`
	Version      int         `json:"version"`
	AgencyID     uuid.UUID   `json:"agency_id"`
	UserID       uuid.UUID   `json:"user_id"`
	LocationType string      `json:"location_type"`
	LocationID   uuid.UUID   `json:"location_id"`
	Lines        []StockLine `json:"lines"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// InventoryAdjustedEvent is published after a count adjustment or seed.
type InventoryAdjustedEvent struct {
	EventID      uuid.UUID `json:"event_id"`
	Version      int       `json:"version"`
	AgencyID     uuid.UUID `json:"agency_id"`
	UserID       uuid.UUID `json:"user_id"`
	LocationType string    `json:"location_type"`
	LocationID   uuid.UUID `json:"location_id"`
	Line         StockLine `json:"line"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// OrderReceivedEvent is published after goods are booked against an order.
// Consumers subscribe via EventBus.Subscribe(ctx, events.TopicOrderReceived).
type OrderReceivedEvent struct {
	EventID      uuid.UUID   `json:"event_id"`
	Version      int         `json:"version"`
	AgencyID     uuid.UUID   `json:"agency_id"`
	OrderID      uuid.UUID   `json:"order_id"`
	OrderNumber  string      `json:"order_number"`
	Status       string      `json:"status"`
	LocationType string      `json:"location_type"`
	LocationID   uuid.UUID   `json:"location_id"`
	Lines        []StockLine `json:"lines"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

func (e UsageRecordedEvent) EnvelopeID() uuid.UUID { return e.EventID }
func (e UsageRecordedEvent) EnvelopeVersion() int  { return e.Version }

func (e InventoryAdjustedEvent) EnvelopeID() uuid.UUID { return e.EventID }
func (e InventoryAdjustedEvent) EnvelopeVersion() int  { return e.Version }

func (e OrderReceivedEvent) EnvelopeID() uuid.UUID { return e.EventID }
func (e OrderReceivedEvent) EnvelopeVersion() int  { return e.Version }
