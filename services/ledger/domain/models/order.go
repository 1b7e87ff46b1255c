package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/emssupply/services/ledger/domain"
)

// OrderStatus is the purchase order lifecycle state.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderSubmitted OrderStatus = "submitted"
	OrderApproved  OrderStatus = "approved"
	OrderOrdered   OrderStatus = "ordered"
	OrderShipped   OrderStatus = "shipped"
	OrderPartial   OrderStatus = "partial"
	OrderReceived  OrderStatus = "received"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderDraft, OrderSubmitted, OrderApproved, OrderOrdered, OrderShipped,
		OrderPartial, OrderReceived, OrderCancelled:
		return true
	default:
		return false
	}
}

// Order is the purchase order aggregate. Status changes only through its methods.
type Order struct {
	ID               uuid.UUID
	AgencyID         uuid.UUID
	OrderNumber      string
	Status           OrderStatus
	CreatedBy        uuid.UUID
	ApprovedBy       *uuid.UUID
	Vendor           string
	TotalCost        decimal.Decimal
	OrderDate        *time.Time
	ExpectedDelivery *time.Time
	ReceivedDate     *time.Time
	Notes            string
	Items            []*OrderItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem tracks one supply line on an order.
type OrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	SupplyID         uuid.UUID
	QuantityOrdered  int
	QuantityReceived int
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal

	// Read-side supply details; never persisted.
	SupplyName    string
	SKU           string
	UnitOfMeasure string
}

// OrderLine is the caller-supplied content of a new order item.
type OrderLine struct {
	SupplyID        uuid.UUID
	QuantityOrdered int
	UnitCost        decimal.Decimal
}

// FormatOrderNumber renders ORD-<year>-<5-digit sequence>.
func FormatOrderNumber(year, sequence int) string {
	return fmt.Sprintf("ORD-%d-%05d", year, sequence)
}

// NewOrder builds a draft order numbered after existing orders for the agency.
// The total is the sum of quantity times unit cost over every line.
func NewOrder(agencyID, createdBy uuid.UUID, vendor, notes string, lines []OrderLine, existing int, now time.Time) (*Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order must have at least one item", domain.ErrInvalidInput)
	}

	o := &Order{
		ID:          uuid.New(),
		AgencyID:    agencyID,
		OrderNumber: FormatOrderNumber(now.Year(), existing+1),
		Status:      OrderDraft,
		CreatedBy:   createdBy,
		Vendor:      vendor,
		Notes:       notes,
		TotalCost:   decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, l := range lines {
		if l.QuantityOrdered <= 0 || l.QuantityOrdered > MaxQuantity {
			return nil, fmt.Errorf("%w: quantity_ordered must be between 1 and %d", domain.ErrInvalidInput, MaxQuantity)
		}
		if l.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: unit_cost must not be negative", domain.ErrInvalidInput)
		}
		lineTotal := l.UnitCost.Mul(decimal.NewFromInt(int64(l.QuantityOrdered)))
		o.Items = append(o.Items, &OrderItem{
			ID:              uuid.New(),
			OrderID:         o.ID,
			SupplyID:        l.SupplyID,
			QuantityOrdered: l.QuantityOrdered,
			UnitCost:        l.UnitCost,
			TotalCost:       lineTotal,
		})
		o.TotalCost = o.TotalCost.Add(lineTotal)
	}
	return o, nil
}

func (o *Order) invalidState(op string) error {
	return fmt.Errorf("%w: cannot %s a %s order", domain.ErrInvalidOrderState, op, o.Status)
}

// OrderEdit carries the allow-listed fields of a draft update. Nil leaves a field untouched.
type OrderEdit struct {
	Vendor           *string
	Notes            *string
	ExpectedDelivery *time.Time
}

// Edit applies e to a draft order.
func (o *Order) Edit(e OrderEdit, now time.Time) error {
	if o.Status != OrderDraft {
		return o.invalidState("edit")
	}
	if e.Vendor != nil {
		o.Vendor = *e.Vendor
	}
	if e.Notes != nil {
		o.Notes = *e.Notes
	}
	if e.ExpectedDelivery != nil {
		d := Day(*e.ExpectedDelivery)
		o.ExpectedDelivery = &d
	}
	o.UpdatedAt = now
	return nil
}

// Submit moves a draft to submitted and stamps the order date.
func (o *Order) Submit(now time.Time) error {
	if o.Status != OrderDraft {
		return o.invalidState("submit")
	}
	d := Day(now)
	o.Status = OrderSubmitted
	o.OrderDate = &d
	o.UpdatedAt = now
	return nil
}

// Approve moves a submitted order to approved and records the approver.
func (o *Order) Approve(approver uuid.UUID, now time.Time) error {
	if o.Status != OrderSubmitted {
		return o.invalidState("approve")
	}
	o.Status = OrderApproved
	o.ApprovedBy = &approver
	o.UpdatedAt = now
	return nil
}

// Cancel is allowed only before approval.
func (o *Order) Cancel(now time.Time) error {
	if o.Status != OrderDraft && o.Status != OrderSubmitted {
		return o.invalidState("cancel")
	}
	o.Status = OrderCancelled
	o.UpdatedAt = now
	return nil
}

// Receivable reports whether goods may be booked against the order.
func (o *Order) Receivable() bool {
	switch o.Status {
	case OrderApproved, OrderOrdered, OrderShipped, OrderPartial:
		return true
	default:
		return false
	}
}

// Item returns the order line with the given id.
func (o *Order) Item(id uuid.UUID) (*OrderItem, error) {
	for _, it := range o.Items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrOrderItemNotFound, id)
}

// CheckReceivable returns ErrInvalidOrderState unless Receivable.
func (o *Order) CheckReceivable() error {
	if !o.Receivable() {
		return o.invalidState("receive")
	}
	return nil
}

// ReceiveItem adds quantity to an item's received count.
func (o *Order) ReceiveItem(itemID uuid.UUID, quantity int) (*OrderItem, error) {
	if err := o.CheckReceivable(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity_received must be positive", domain.ErrInvalidInput)
	}
	it, err := o.Item(itemID)
	if err != nil {
		return nil, err
	}
	if quantity > MaxQuantity-it.QuantityReceived {
		return nil, fmt.Errorf("%w: quantity_received exceeds %d", domain.ErrInvalidInput, MaxQuantity)
	}
	it.QuantityReceived += quantity
	return it, nil
}

// SettleReceipt recomputes status after items were received: received when
// every line is complete, partial when anything arrived, else unchanged.
// ReceivedDate is set only when fully received.
func (o *Order) SettleReceipt(now time.Time) {
	full, some := true, false
	for _, it := range o.Items {
		if it.QuantityReceived < it.QuantityOrdered {
			full = false
		}
		if it.QuantityReceived > 0 {
			some = true
		}
	}

	switch {
	case full:
		o.Status = OrderReceived
		d := Day(now)
		o.ReceivedDate = &d
	case some:
		o.Status = OrderPartial
		o.ReceivedDate = nil
	default:
		o.ReceivedDate = nil
	}
	o.UpdatedAt = now
}
