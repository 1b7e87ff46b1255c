package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/emssupply/services/ledger/domain"
	"github.com/ghuser/emssupply/services/ledger/domain/models"
	"github.com/ghuser/emssupply/services/ledger/infrastructure/persistence/postgres/db"
)

// inventoryRow is an inventory record joined with its supply and category.
type inventoryRow struct {
	ID               uuid.UUID       `db:"id"`
	AgencyID         uuid.UUID       `db:"agency_id"`
	SupplyID         uuid.UUID       `db:"supply_id"`
	LocationType     string          `db:"location_type"`
	LocationID       uuid.UUID       `db:"location_id"`
	Quantity         int             `db:"quantity"`
	ParLevel         int             `db:"par_level"`
	ExpirationDate   sql.NullTime    `db:"expiration_date"`
	LotNumber        sql.NullString  `db:"lot_number"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
	SupplyName       string          `db:"supply_name"`
	SKU              string          `db:"sku"`
	UnitOfMeasure    string          `db:"unit_of_measure"`
	TracksExpiration bool            `db:"tracks_expiration"`
	CategoryName     string          `db:"category_name"`
	UnitCost         decimal.Decimal `db:"unit_cost"`
}

const inventorySelect = `
SELECT ir.id, ir.agency_id, ir.supply_id, ir.location_type, ir.location_id, ir.quantity, ir.par_level,
       ir.expiration_date, ir.lot_number, ir.created_at, ir.updated_at,
       s.name AS supply_name, COALESCE(s.sku, '') AS sku, s.unit_of_measure, s.tracks_expiration,
       COALESCE(sc.name, '') AS category_name, s.unit_cost
FROM inventory_records ir
JOIN supplies s ON s.id = ir.supply_id
LEFT JOIN supply_categories sc ON sc.id = s.category_id
`

func (r inventoryRow) view() models.InventoryView {
	return models.InventoryView{
		InventoryRecord: models.InventoryRecord{
			ID:             r.ID,
			AgencyID:       r.AgencyID,
			SupplyID:       r.SupplyID,
			Location:       models.Location{Type: models.LocationType(r.LocationType), ID: r.LocationID},
			Quantity:       r.Quantity,
			ParLevel:       r.ParLevel,
			ExpirationDate: timePtr(r.ExpirationDate),
			LotNumber:      r.LotNumber.String,
			CreatedAt:      r.CreatedAt,
			UpdatedAt:      r.UpdatedAt,
			SupplyName:     r.SupplyName,
		},
		SKU:              r.SKU,
		UnitOfMeasure:    r.UnitOfMeasure,
		TracksExpiration: r.TracksExpiration,
		CategoryName:     r.CategoryName,
		UnitCost:         r.UnitCost,
	}
}

func (r *LedgerRepository) selectInventory(ctx context.Context, where string, args ...any) ([]models.InventoryView, error) {
	var rows []inventoryRow
	if err := r.db.SQLX().SelectContext(ctx, &rows, inventorySelect+where, args...); err != nil {
		return nil, err
	}
	out := make([]models.InventoryView, len(rows))
	for i, row := range rows {
		out[i] = row.view()
	}
	return out, nil
}

// transactionRow mirrors the journal columns joined with supply and user names.
type transactionRow struct {
	ID              uuid.UUID      `db:"id"`
	AgencyID        uuid.UUID      `db:"agency_id"`
	SupplyID        uuid.UUID      `db:"supply_id"`
	UserID          uuid.NullUUID  `db:"user_id"`
	TransactionType string         `db:"transaction_type"`
	Quantity        int32          `db:"quantity"`
	LocationType    string         `db:"location_type"`
	LocationID      uuid.UUID      `db:"location_id"`
	UsageType       sql.NullString `db:"usage_type"`
	IncidentNumber  sql.NullString `db:"incident_number"`
	Notes           sql.NullString `db:"notes"`
	TransactionDate time.Time      `db:"transaction_date"`
	SupplyName      string         `db:"supply_name"`
	UserFirstName   string         `db:"user_first_name"`
	UserLastName    string         `db:"user_last_name"`
}

// orderRow has the same fields as db.Order so the two convert directly.
type orderRow struct {
	ID               uuid.UUID       `db:"id"`
	AgencyID         uuid.UUID       `db:"agency_id"`
	OrderNumber      string          `db:"order_number"`
	Status           string          `db:"status"`
	CreatedBy        uuid.NullUUID   `db:"created_by"`
	ApprovedBy       uuid.NullUUID   `db:"approved_by"`
	Vendor           sql.NullString  `db:"vendor"`
	TotalCost        decimal.Decimal `db:"total_cost"`
	OrderDate        sql.NullTime    `db:"order_date"`
	ExpectedDelivery sql.NullTime    `db:"expected_delivery"`
	ReceivedDate     sql.NullTime    `db:"received_date"`
	Notes            sql.NullString  `db:"notes"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// InventoryTotals sums quantity and par level per supply across locations.
func (r *LedgerRepository) InventoryTotals(ctx context.Context, agencyID uuid.UUID) ([]models.SupplyTotal, error) {
	var rows []struct {
		SupplyID      uuid.UUID `db:"supply_id"`
		SupplyName    string    `db:"supply_name"`
		SKU           string    `db:"sku"`
		CategoryName  string    `db:"category_name"`
		TotalQuantity int       `db:"total_quantity"`
		TotalParLevel int       `db:"total_par_level"`
	}
	err := r.db.SQLX().SelectContext(ctx, &rows, `
		SELECT s.id AS supply_id, s.name AS supply_name, COALESCE(s.sku, '') AS sku,
		       COALESCE(sc.name, '') AS category_name,
		       SUM(ir.quantity) AS total_quantity, SUM(ir.par_level) AS total_par_level
		FROM inventory_records ir
		JOIN supplies s ON s.id = ir.supply_id
		LEFT JOIN supply_categories sc ON sc.id = s.category_id
		WHERE ir.agency_id = $1
		GROUP BY s.id, s.name, s.sku, sc.name
		ORDER BY s.name`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("query inventory totals: %w", err)
	}
	out := make([]models.SupplyTotal, len(rows))
	for i, row := range rows {
		out[i] = models.SupplyTotal(row)
	}
	return out, nil
}

// Location resolves a unit or station within an agency.
func (r *LedgerRepository) Location(ctx context.Context, agencyID uuid.UUID, loc models.Location) (*models.LocationInfo, error) {
	var table string
	switch loc.Type {
	case models.LocationUnit:
		table = "units"
	case models.LocationStation:
		table = "stations"
	default:
		return nil, domain.ErrLocationNotFound
	}

	var row struct {
		Name   string `db:"name"`
		Active bool   `db:"active"`
	}
	err := r.db.SQLX().GetContext(ctx, &row,
		"SELECT name, active FROM "+table+" WHERE id = $1 AND agency_id = $2", loc.ID, agencyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLocationNotFound
		}
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return &models.LocationInfo{Location: loc, Name: row.Name, Active: row.Active}, nil
}

func (r *LedgerRepository) LocationInventory(ctx context.Context, agencyID uuid.UUID, loc models.Location) ([]models.InventoryView, error) {
	rows, err := r.selectInventory(ctx,
		"WHERE ir.agency_id = $1 AND ir.location_type = $2 AND ir.location_id = $3 ORDER BY s.name",
		agencyID, string(loc.Type), loc.ID)
	if err != nil {
		return nil, fmt.Errorf("query location inventory: %w", err)
	}
	return rows, nil
}

func (r *LedgerRepository) Expiring(ctx context.Context, agencyID uuid.UUID, until time.Time) ([]models.InventoryView, error) {
	rows, err := r.selectInventory(ctx, `
		WHERE ir.agency_id = $1 AND s.tracks_expiration AND ir.expiration_date IS NOT NULL
		  AND ir.expiration_date <= $2
		ORDER BY ir.expiration_date`, agencyID, until)
	if err != nil {
		return nil, fmt.Errorf("query expiring inventory: %w", err)
	}
	return rows, nil
}

func (r *LedgerRepository) BelowPar(ctx context.Context, agencyID uuid.UUID) ([]models.InventoryView, error) {
	rows, err := r.selectInventory(ctx,
		"WHERE ir.agency_id = $1 AND ir.quantity < ir.par_level ORDER BY s.name", agencyID)
	if err != nil {
		return nil, fmt.Errorf("query below par inventory: %w", err)
	}
	return rows, nil
}

// Transactions builds the journal query from the non-zero filter fields.
func (r *LedgerRepository) Transactions(ctx context.Context, agencyID uuid.UUID, f models.TransactionFilter) ([]models.TransactionView, error) {
	conds := []string{"t.agency_id = :agency_id"}
	args := map[string]any{"agency_id": agencyID}
	if f.SupplyID != uuid.Nil {
		conds = append(conds, "t.supply_id = :supply_id")
		args["supply_id"] = f.SupplyID
	}
	if f.Location != nil {
		conds = append(conds, "t.location_type = :location_type", "t.location_id = :location_id")
		args["location_type"] = string(f.Location.Type)
		args["location_id"] = f.Location.ID
	}
	if !f.Since.IsZero() {
		conds = append(conds, "t.transaction_date >= :since")
		args["since"] = f.Since
	}
	query := `
		SELECT t.id, t.agency_id, t.supply_id, t.user_id, t.transaction_type, t.quantity, t.location_type,
		       t.location_id, t.usage_type, t.incident_number, t.notes, t.transaction_date,
		       s.name AS supply_name, COALESCE(u.first_name, '') AS user_first_name,
		       COALESCE(u.last_name, '') AS user_last_name
		FROM transactions t
		JOIN supplies s ON s.id = t.supply_id
		LEFT JOIN users u ON u.id = t.user_id
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY t.transaction_date DESC`
	if f.Limit > 0 {
		query += " LIMIT :limit"
		args["limit"] = f.Limit
	}

	stmt, err := r.db.SQLX().PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare transactions query: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	var rows []transactionRow
	if err := stmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	out := make([]models.TransactionView, len(rows))
	for i, row := range rows {
		out[i] = models.TransactionView{
			Transaction: models.Transaction{
				ID:             row.ID,
				AgencyID:       row.AgencyID,
				SupplyID:       row.SupplyID,
				UserID:         row.UserID.UUID,
				Type:           models.TransactionType(row.TransactionType),
				Quantity:       int(row.Quantity),
				Location:       models.Location{Type: models.LocationType(row.LocationType), ID: row.LocationID},
				UsageType:      models.UsageType(row.UsageType.String),
				IncidentNumber: row.IncidentNumber.String,
				Notes:          row.Notes.String,
				Date:           row.TransactionDate,
			},
			SupplyName:    row.SupplyName,
			UserFirstName: row.UserFirstName,
			UserLastName:  row.UserLastName,
		}
	}
	return out, nil
}

// ListOrders lists orders newest first with the creator's name.
func (r *LedgerRepository) ListOrders(ctx context.Context, agencyID uuid.UUID, status models.OrderStatus) ([]models.OrderSummary, error) {
	query := `
		SELECT o.id, o.agency_id, o.order_number, o.status, o.created_by, o.approved_by, o.vendor, o.total_cost,
		       o.order_date, o.expected_delivery, o.received_date, o.notes, o.created_at, o.updated_at,
		       COALESCE(u.first_name, '') AS created_by_first_name, COALESCE(u.last_name, '') AS created_by_last_name
		FROM orders o
		LEFT JOIN users u ON u.id = o.created_by
		WHERE o.agency_id = $1`
	args := []any{agencyID}
	if status != "" {
		query += " AND o.status = $2"
		args = append(args, string(status))
	}
	query += " ORDER BY o.created_at DESC"

	var rows []struct {
		orderRow
		CreatedByFirstName string `db:"created_by_first_name"`
		CreatedByLastName  string `db:"created_by_last_name"`
	}
	if err := r.db.SQLX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	out := make([]models.OrderSummary, len(rows))
	for i, row := range rows {
		out[i] = models.OrderSummary{
			Order:              *rowToOrder(db.Order(row.orderRow), nil),
			CreatedByFirstName: row.CreatedByFirstName,
			CreatedByLastName:  row.CreatedByLastName,
		}
	}
	return out, nil
}

// GetOrder returns an order with its items and their supply details.
func (r *LedgerRepository) GetOrder(ctx context.Context, agencyID, orderID uuid.UUID) (*models.Order, error) {
	q := db.New(r.db.DB())
	row, err := q.GetOrder(ctx, db.GetOrderParams{ID: orderID, AgencyID: agencyID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("query order: %w", err)
	}
	items, err := q.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	return rowToOrder(row, items), nil
}

// ReorderList sums par shortfall per supply and prices it at unit cost.
func (r *LedgerRepository) ReorderList(ctx context.Context, agencyID uuid.UUID) ([]models.ReorderLine, error) {
	var rows []struct {
		SupplyID      uuid.UUID       `db:"supply_id"`
		SupplyName    string          `db:"supply_name"`
		SKU           string          `db:"sku"`
		UnitCost      decimal.Decimal `db:"unit_cost"`
		TotalNeeded   int             `db:"total_needed"`
		EstimatedCost decimal.Decimal `db:"estimated_cost"`
	}
	err := r.db.SQLX().SelectContext(ctx, &rows, `
		SELECT s.id AS supply_id, s.name AS supply_name, COALESCE(s.sku, '') AS sku, s.unit_cost,
		       SUM(ir.par_level - ir.quantity) AS total_needed,
		       SUM(ir.par_level - ir.quantity) * s.unit_cost AS estimated_cost
		FROM inventory_records ir
		JOIN supplies s ON s.id = ir.supply_id
		WHERE ir.agency_id = $1 AND ir.quantity < ir.par_level
		GROUP BY s.id, s.name, s.sku, s.unit_cost
		ORDER BY estimated_cost DESC`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("query reorder list: %w", err)
	}
	out := make([]models.ReorderLine, len(rows))
	for i, row := range rows {
		out[i] = models.ReorderLine(row)
	}
	return out, nil
}
