package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/emssupply/services/ledger/domain"
)

var orderNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func newTestOrder(t *testing.T, quantities ...int) *Order {
	t.Helper()
	lines := make([]OrderLine, len(quantities))
	for i, q := range quantities {
		lines[i] = OrderLine{SupplyID: uuid.New(), QuantityOrdered: q, UnitCost: decimal.RequireFromString("2.50")}
	}
	o, err := NewOrder(uuid.New(), uuid.New(), "Bound Tree", "", lines, 41, orderNow)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	return o
}

func TestFormatOrderNumber(t *testing.T) {
	if got := FormatOrderNumber(2026, 42); got != "ORD-2026-00042" {
		t.Fatalf("got %q", got)
	}
}

func TestNewOrder(t *testing.T) {
	o := newTestOrder(t, 10, 4)

	if o.OrderNumber != "ORD-2026-00042" {
		t.Errorf("OrderNumber = %q", o.OrderNumber)
	}
	if o.Status != OrderDraft {
		t.Errorf("Status = %s, want draft", o.Status)
	}
	if !o.TotalCost.Equal(decimal.RequireFromString("35")) {
		t.Errorf("TotalCost = %s, want 35", o.TotalCost)
	}
	for _, it := range o.Items {
		if it.OrderID != o.ID {
			t.Errorf("item %s not linked to order", it.ID)
		}
	}
}

func TestNewOrder_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		lines []OrderLine
	}{
		{"no items", nil},
		{"zero quantity", []OrderLine{{SupplyID: uuid.New(), QuantityOrdered: 0}}},
		{"quantity beyond storable range", []OrderLine{{SupplyID: uuid.New(), QuantityOrdered: MaxQuantity + 1}}},
		{"negative cost", []OrderLine{{SupplyID: uuid.New(), QuantityOrdered: 1, UnitCost: decimal.NewFromInt(-1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(uuid.New(), uuid.New(), "", "", tt.lines, 0, orderNow)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestOrder_Lifecycle(t *testing.T) {
	o := newTestOrder(t, 1)
	approver := uuid.New()

	if err := o.Approve(approver, orderNow); !errors.Is(err, domain.ErrInvalidOrderState) {
		t.Fatalf("approve from draft: expected ErrInvalidOrderState, got %v", err)
	}
	if err := o.Submit(orderNow); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.OrderDate == nil || !o.OrderDate.Equal(Day(orderNow)) {
		t.Fatalf("order date not stamped: %v", o.OrderDate)
	}
	if err := o.Submit(orderNow); !errors.Is(err, domain.ErrInvalidOrderState) {
		t.Fatalf("double submit: expected ErrInvalidOrderState, got %v", err)
	}
	if err := o.Edit(OrderEdit{}, orderNow); !errors.Is(err, domain.ErrInvalidOrderState) {
		t.Fatalf("edit after submit: expected ErrInvalidOrderState, got %v", err)
	}
	if err := o.Approve(approver, orderNow); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if o.ApprovedBy == nil || *o.ApprovedBy != approver {
		t.Fatal("approver not stamped")
	}
}

func TestOrder_Cancel(t *testing.T) {
	for _, status := range []OrderStatus{OrderDraft, OrderSubmitted} {
		o := newTestOrder(t, 1)
		o.Status = status
		if err := o.Cancel(orderNow); err != nil {
			t.Errorf("cancel from %s: %v", status, err)
		}
		if o.Status != OrderCancelled {
			t.Errorf("status after cancel = %s", o.Status)
		}
	}
	for _, status := range []OrderStatus{OrderApproved, OrderOrdered, OrderShipped, OrderPartial, OrderReceived, OrderCancelled} {
		o := newTestOrder(t, 1)
		o.Status = status
		if err := o.Cancel(orderNow); !errors.Is(err, domain.ErrInvalidOrderState) {
			t.Errorf("cancel from %s: expected ErrInvalidOrderState, got %v", status, err)
		}
	}
}

func TestOrder_ReceivePartialThenFull(t *testing.T) {
	o := newTestOrder(t, 10, 10)
	o.Status = OrderApproved
	first, second := o.Items[0], o.Items[1]

	if _, err := o.ReceiveItem(first.ID, 10); err != nil {
		t.Fatalf("receive first: %v", err)
	}
	if _, err := o.ReceiveItem(second.ID, 5); err != nil {
		t.Fatalf("receive second: %v", err)
	}
	o.SettleReceipt(orderNow)
	if o.Status != OrderPartial {
		t.Fatalf("status = %s, want partial", o.Status)
	}
	if o.ReceivedDate != nil {
		t.Fatal("received date must be clear while partial")
	}

	if _, err := o.ReceiveItem(second.ID, 5); err != nil {
		t.Fatalf("receive remainder: %v", err)
	}
	o.SettleReceipt(orderNow)
	if o.Status != OrderReceived {
		t.Fatalf("status = %s, want received", o.Status)
	}
	if o.ReceivedDate == nil {
		t.Fatal("received date must be set")
	}

	if _, err := o.ReceiveItem(first.ID, 1); !errors.Is(err, domain.ErrInvalidOrderState) {
		t.Fatalf("receive after completion: expected ErrInvalidOrderState, got %v", err)
	}
}

func TestOrder_ReceiveUnknownItem(t *testing.T) {
	o := newTestOrder(t, 1)
	o.Status = OrderShipped
	if _, err := o.ReceiveItem(uuid.New(), 1); !errors.Is(err, domain.ErrOrderItemNotFound) {
		t.Fatalf("expected ErrOrderItemNotFound, got %v", err)
	}
}

func TestOrder_ReceiveBeyondStorableRange(t *testing.T) {
	o := newTestOrder(t, 10)
	o.Status = OrderApproved
	item := o.Items[0]

	if _, err := o.ReceiveItem(item.ID, MaxQuantity); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if _, err := o.ReceiveItem(item.ID, 1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if item.QuantityReceived != MaxQuantity {
		t.Fatalf("quantity received = %d, want %d", item.QuantityReceived, MaxQuantity)
	}
}
