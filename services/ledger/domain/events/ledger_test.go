package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/ledger/domain/events"
)

// The alerts worker decodes OrderReceivedEvent by these names.
func TestOrderReceivedEvent_JSONFieldNames(t *testing.T) {
	evt := events.OrderReceivedEvent{
		EventID:      uuid.New(),
		Version:      1,
		AgencyID:     uuid.New(),
		OrderID:      uuid.New(),
		OrderNumber:  "ORD-2026-00007",
		Status:       "partial",
		LocationType: "station",
		LocationID:   uuid.New(),
		Lines:        []events.StockLine{{SupplyID: uuid.New(), Delta: 5, Quantity: 12}},
		OccurredAt:   time.Now().UTC(),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}

	for _, field := range []string{"event_id", "version", "agency_id", "order_id", "order_number", "status", "location_type", "location_id", "lines", "occurred_at"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected JSON field %q not found in: %s", field, data)
		}
	}
}

func TestTopics_Values(t *testing.T) {
	tests := map[string]string{
		events.TopicUsageRecorded: "inventory.usage_recorded",
		events.TopicAdjusted:      "inventory.adjusted",
		events.TopicOrderReceived: "order.received",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
