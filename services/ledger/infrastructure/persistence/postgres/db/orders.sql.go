package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const countOrders = `-- name: CountOrders :one
SELECT COUNT(*) FROM orders WHERE agency_id = $1
`

func (q *Queries) CountOrders(ctx context.Context, agencyID uuid.UUID) (int64, error) {
	row := q.db.QueryRowContext(ctx, countOrders, agencyID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getOrder = `-- name: GetOrder :one
SELECT id, agency_id, order_number, status, created_by, approved_by, vendor, total_cost,
       order_date, expected_delivery, received_date, notes, created_at, updated_at
FROM orders
WHERE id = $1 AND agency_id = $2
`

type GetOrderParams struct {
	ID       uuid.UUID
	AgencyID uuid.UUID
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRowContext(ctx, getOrder, arg.ID, arg.AgencyID)
	return scanOrder(row)
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT id, agency_id, order_number, status, created_by, approved_by, vendor, total_cost,
       order_date, expected_delivery, received_date, notes, created_at, updated_at
FROM orders
WHERE id = $1 AND agency_id = $2
FOR UPDATE
`

type GetOrderForUpdateParams struct {
	ID       uuid.UUID
	AgencyID uuid.UUID
}

func (q *Queries) GetOrderForUpdate(ctx context.Context, arg GetOrderForUpdateParams) (Order, error) {
	row := q.db.QueryRowContext(ctx, getOrderForUpdate, arg.ID, arg.AgencyID)
	return scanOrder(row)
}

func scanOrder(row *sql.Row) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.AgencyID,
		&i.OrderNumber,
		&i.Status,
		&i.CreatedBy,
		&i.ApprovedBy,
		&i.Vendor,
		&i.TotalCost,
		&i.OrderDate,
		&i.ExpectedDelivery,
		&i.ReceivedDate,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertOrder = `-- name: InsertOrder :exec
INSERT INTO orders (id, agency_id, order_number, status, created_by, vendor, total_cost, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type InsertOrderParams struct {
	ID          uuid.UUID
	AgencyID    uuid.UUID
	OrderNumber string
	Status      string
	CreatedBy   uuid.NullUUID
	Vendor      sql.NullString
	TotalCost   decimal.Decimal
	Notes       sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) error {
	_, err := q.db.ExecContext(ctx, insertOrder,
		arg.ID,
		arg.AgencyID,
		arg.OrderNumber,
		arg.Status,
		arg.CreatedBy,
		arg.Vendor,
		arg.TotalCost,
		arg.Notes,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const insertOrderItem = `-- name: InsertOrderItem :exec
INSERT INTO order_items (id, order_id, supply_id, quantity_ordered, quantity_received, unit_cost, total_cost)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type InsertOrderItemParams struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	SupplyID         uuid.UUID
	QuantityOrdered  int32
	QuantityReceived int32
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
}

func (q *Queries) InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) error {
	_, err := q.db.ExecContext(ctx, insertOrderItem,
		arg.ID,
		arg.OrderID,
		arg.SupplyID,
		arg.QuantityOrdered,
		arg.QuantityReceived,
		arg.UnitCost,
		arg.TotalCost,
	)
	return err
}

const listOrderItems = `-- name: ListOrderItems :many
SELECT oi.id, oi.order_id, oi.supply_id, oi.quantity_ordered, oi.quantity_received, oi.unit_cost,
       oi.total_cost, s.name AS supply_name, COALESCE(s.sku, '') AS sku, s.unit_of_measure
FROM order_items oi
JOIN supplies s ON s.id = oi.supply_id
WHERE oi.order_id = $1
ORDER BY oi.created_at, oi.id
`

type ListOrderItemsRow struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	SupplyID         uuid.UUID
	QuantityOrdered  int32
	QuantityReceived int32
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
	SupplyName       string
	Sku              string
	UnitOfMeasure    string
}

func (q *Queries) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]ListOrderItemsRow, error) {
	rows, err := q.db.QueryContext(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOrderItemsRow
	for rows.Next() {
		var i ListOrderItemsRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.SupplyID,
			&i.QuantityOrdered,
			&i.QuantityReceived,
			&i.UnitCost,
			&i.TotalCost,
			&i.SupplyName,
			&i.Sku,
			&i.UnitOfMeasure,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrder = `-- name: UpdateOrder :exec
UPDATE orders
SET status = $3, approved_by = $4, vendor = $5, total_cost = $6, order_date = $7,
    expected_delivery = $8, received_date = $9, notes = $10, updated_at = $11
WHERE id = $1 AND agency_id = $2
`

type UpdateOrderParams struct {
	ID               uuid.UUID
	AgencyID         uuid.UUID
	Status           string
	ApprovedBy       uuid.NullUUID
	Vendor           sql.NullString
	TotalCost        decimal.Decimal
	OrderDate        sql.NullTime
	ExpectedDelivery sql.NullTime
	ReceivedDate     sql.NullTime
	Notes            sql.NullString
	UpdatedAt        time.Time
}

func (q *Queries) UpdateOrder(ctx context.Context, arg UpdateOrderParams) error {
	_, err := q.db.ExecContext(ctx, updateOrder,
		arg.ID,
		arg.AgencyID,
		arg.Status,
		arg.ApprovedBy,
		arg.Vendor,
		arg.TotalCost,
		arg.OrderDate,
		arg.ExpectedDelivery,
		arg.ReceivedDate,
		arg.Notes,
		arg.UpdatedAt,
	)
	return err
}

const updateOrderItemReceived = `-- name: UpdateOrderItemReceived :exec
UPDATE order_items
SET quantity_received = $3, updated_at = NOW()
WHERE id = $1 AND order_id = $2
`

type UpdateOrderItemReceivedParams struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	QuantityReceived int32
}

func (q *Queries) UpdateOrderItemReceived(ctx context.Context, arg UpdateOrderItemReceivedParams) error {
	_, err := q.db.ExecContext(ctx, updateOrderItemReceived, arg.ID, arg.OrderID, arg.QuantityReceived)
	return err
}
