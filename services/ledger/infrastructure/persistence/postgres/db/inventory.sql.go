package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const getInventoryRecordForUpdate = `-- name: GetInventoryRecordForUpdate :one
SELECT ir.id, ir.agency_id, ir.supply_id, ir.location_type, ir.location_id, ir.quantity,
       ir.par_level, ir.expiration_date, ir.lot_number, ir.created_at, ir.updated_at,
       s.name AS supply_name
FROM inventory_records ir
JOIN supplies s ON s.id = ir.supply_id
WHERE ir.agency_id = $1 AND ir.supply_id = $2 AND ir.location_type = $3 AND ir.location_id = $4
FOR UPDATE OF ir
`

type GetInventoryRecordForUpdateParams struct {
	AgencyID     uuid.UUID
	SupplyID     uuid.UUID
	LocationType string
	LocationID   uuid.UUID
}

type GetInventoryRecordForUpdateRow struct {
	ID             uuid.UUID
	AgencyID       uuid.UUID
	SupplyID       uuid.UUID
	LocationType   string
	LocationID     uuid.UUID
	Quantity       int32
	ParLevel       int32
	ExpirationDate sql.NullTime
	LotNumber      sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SupplyName     string
}

func (q *Queries) GetInventoryRecordForUpdate(ctx context.Context, arg GetInventoryRecordForUpdateParams) (GetInventoryRecordForUpdateRow, error) {
	row := q.db.QueryRowContext(ctx, getInventoryRecordForUpdate,
		arg.AgencyID,
		arg.SupplyID,
		arg.LocationType,
		arg.LocationID,
	)
	var i GetInventoryRecordForUpdateRow
	err := row.Scan(
		&i.ID,
		&i.AgencyID,
		&i.SupplyID,
		&i.LocationType,
		&i.LocationID,
		&i.Quantity,
		&i.ParLevel,
		&i.ExpirationDate,
		&i.LotNumber,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.SupplyName,
	)
	return i, err
}

const insertInventoryRecord = `-- name: InsertInventoryRecord :exec
INSERT INTO inventory_records (id, agency_id, supply_id, location_type, location_id, quantity,
                               par_level, expiration_date, lot_number, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type InsertInventoryRecordParams struct {
	ID             uuid.UUID
	AgencyID       uuid.UUID
	SupplyID       uuid.UUID
	LocationType   string
	LocationID     uuid.UUID
	Quantity       int32
	ParLevel       int32
	ExpirationDate sql.NullTime
	LotNumber      sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (q *Queries) InsertInventoryRecord(ctx context.Context, arg InsertInventoryRecordParams) error {
	_, err := q.db.ExecContext(ctx, insertInventoryRecord,
		arg.ID,
		arg.AgencyID,
		arg.SupplyID,
		arg.LocationType,
		arg.LocationID,
		arg.Quantity,
		arg.ParLevel,
		arg.ExpirationDate,
		arg.LotNumber,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const insertTransaction = `-- name: InsertTransaction :exec
INSERT INTO transactions (id, agency_id, supply_id, user_id, transaction_type, quantity, location_type,
                          location_id, usage_type, incident_number, notes, transaction_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

type InsertTransactionParams struct {
	ID              uuid.UUID
	AgencyID        uuid.UUID
	SupplyID        uuid.UUID
	UserID          uuid.NullUUID
	TransactionType string
	Quantity        int32
	LocationType    string
	LocationID      uuid.UUID
	UsageType       sql.NullString
	IncidentNumber  sql.NullString
	Notes           sql.NullString
	TransactionDate time.Time
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		arg.ID,
		arg.AgencyID,
		arg.SupplyID,
		arg.UserID,
		arg.TransactionType,
		arg.Quantity,
		arg.LocationType,
		arg.LocationID,
		arg.UsageType,
		arg.IncidentNumber,
		arg.Notes,
		arg.TransactionDate,
	)
	return err
}

const stationExists = `-- name: StationExists :one
SELECT EXISTS (SELECT 1 FROM stations WHERE id = $1 AND agency_id = $2)
`

type StationExistsParams struct {
	ID       uuid.UUID
	AgencyID uuid.UUID
}

func (q *Queries) StationExists(ctx context.Context, arg StationExistsParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, stationExists, arg.ID, arg.AgencyID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const supplyExists = `-- name: SupplyExists :one
SELECT EXISTS (SELECT 1 FROM supplies WHERE id = $1 AND agency_id = $2)
`

type SupplyExistsParams struct {
	ID       uuid.UUID
	AgencyID uuid.UUID
}

func (q *Queries) SupplyExists(ctx context.Context, arg SupplyExistsParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, supplyExists, arg.ID, arg.AgencyID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const unitExists = `-- name: UnitExists :one
SELECT EXISTS (SELECT 1 FROM units WHERE id = $1 AND agency_id = $2)
`

type UnitExistsParams struct {
	ID       uuid.UUID
	AgencyID uuid.UUID
}

func (q *Queries) UnitExists(ctx context.Context, arg UnitExistsParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, unitExists, arg.ID, arg.AgencyID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const updateInventoryRecord = `-- name: UpdateInventoryRecord :exec
UPDATE inventory_records
SET quantity = $3, par_level = $4, expiration_date = $5, lot_number = $6, updated_at = $7
WHERE id = $1 AND agency_id = $2
`

type UpdateInventoryRecordParams struct {
	ID             uuid.UUID
	AgencyID       uuid.UUID
	Quantity       int32
	ParLevel       int32
	ExpirationDate sql.NullTime
	LotNumber      sql.NullString
	UpdatedAt      time.Time
}

func (q *Queries) UpdateInventoryRecord(ctx context.Context, arg UpdateInventoryRecordParams) error {
	_, err := q.db.ExecContext(ctx, updateInventoryRecord,
		arg.ID,
		arg.AgencyID,
		arg.Quantity,
		arg.ParLevel,
		arg.ExpirationDate,
		arg.LotNumber,
		arg.UpdatedAt,
	)
	return err
}
