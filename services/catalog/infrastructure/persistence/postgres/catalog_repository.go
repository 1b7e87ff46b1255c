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

	"github.com/ghuser/emssupply/pkg/database"
	"github.com/ghuser/emssupply/services/catalog/domain"
	"github.com/ghuser/emssupply/services/catalog/domain/models"
	"github.com/ghuser/emssupply/services/catalog/domain/repositories"
)

// CatalogRepository implements repositories.CatalogRepository with sqlx.
type CatalogRepository struct {
	db *database.Database
}

var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

func NewCatalogRepository(db *database.Database) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

type supplyRow struct {
	ID               uuid.UUID       `db:"id"`
	AgencyID         uuid.UUID       `db:"agency_id"`
	CategoryID       uuid.NullUUID   `db:"category_id"`
	Name             string          `db:"name"`
	Description      sql.NullString  `db:"description"`
	SKU              sql.NullString  `db:"sku"`
	Manufacturer     sql.NullString  `db:"manufacturer"`
	UnitOfMeasure    string          `db:"unit_of_measure"`
	UnitCost         decimal.Decimal `db:"unit_cost"`
	DefaultParLevel  int             `db:"default_par_level"`
	TracksExpiration bool            `db:"tracks_expiration"`
	Active           bool            `db:"active"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
	CategoryName     sql.NullString  `db:"category_name"`
}

func (row supplyRow) supply() models.Supply {
	s := models.Supply{
		ID:               row.ID,
		AgencyID:         row.AgencyID,
		Name:             row.Name,
		Description:      row.Description.String,
		SKU:              row.SKU.String,
		Manufacturer:     row.Manufacturer.String,
		UnitOfMeasure:    row.UnitOfMeasure,
		UnitCost:         row.UnitCost,
		DefaultParLevel:  row.DefaultParLevel,
		TracksExpiration: row.TracksExpiration,
		Active:           row.Active,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
		CategoryName:     row.CategoryName.String,
	}
	if row.CategoryID.Valid {
		id := row.CategoryID.UUID
		s.CategoryID = &id
	}
	return s
}

const supplySelect = `
SELECT s.id, s.agency_id, s.category_id, s.name, s.description, s.sku, s.manufacturer, s.unit_of_measure,
       s.unit_cost, s.default_par_level, s.tracks_expiration, s.active, s.created_at, s.updated_at,
       c.name AS category_name
FROM supplies s
LEFT JOIN supply_categories c ON c.id = s.category_id
`

func (r *CatalogRepository) ListSupplies(ctx context.Context, agencyID uuid.UUID, f models.Filter) ([]models.Supply, error) {
	conds := []string{"s.agency_id = :agency_id"}
	args := map[string]any{"agency_id": agencyID}
	if f.CategoryID != uuid.Nil {
		conds = append(conds, "s.category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.Search != "" {
		conds = append(conds, "(s.name ILIKE :search OR s.sku ILIKE :search OR s.manufacturer ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	if f.Active != nil {
		conds = append(conds, "s.active = :active")
		args["active"] = *f.Active
	}

	stmt, err := r.db.SQLX().PrepareNamedContext(ctx, supplySelect+`WHERE `+strings.Join(conds, " AND ")+`
ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("prepare supply list: %w", err)
	}
	defer stmt.Close()

	var rows []supplyRow
	if err := stmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, err
	}
	out := make([]models.Supply, len(rows))
	for i, row := range rows {
		out[i] = row.supply()
	}
	return out, nil
}

func (r *CatalogRepository) GetSupply(ctx context.Context, agencyID, id uuid.UUID) (*models.Supply, error) {
	var row supplyRow
	err := r.db.SQLX().GetContext(ctx, &row, supplySelect+`WHERE s.id = $1 AND s.agency_id = $2`, id, agencyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSupplyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get supply: %w", err)
	}
	s := row.supply()
	return &s, nil
}

func (r *CatalogRepository) CreateSupply(ctx context.Context, s *models.Supply) error {
	return r.db.SQLX().QueryRowxContext(ctx, `
INSERT INTO supplies (id, agency_id, category_id, name, description, sku, manufacturer, unit_of_measure,
                      unit_cost, default_par_level, tracks_expiration, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING created_at, updated_at`,
		s.ID, s.AgencyID, nullUUID(s.CategoryID), s.Name, nullString(s.Description), nullString(s.SKU),
		nullString(s.Manufacturer), s.UnitOfMeasure, s.UnitCost, s.DefaultParLevel, s.TracksExpiration, s.Active,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *CatalogRepository) UpdateSupply(ctx context.Context, s *models.Supply) error {
	err := r.db.SQLX().QueryRowxContext(ctx, `
UPDATE supplies SET category_id = $3, name = $4, description = $5, sku = $6, manufacturer = $7,
       unit_of_measure = $8, unit_cost = $9, default_par_level = $10, tracks_expiration = $11, active = $12,
       updated_at = NOW()
WHERE id = $1 AND agency_id = $2
RETURNING updated_at`,
		s.ID, s.AgencyID, nullUUID(s.CategoryID), s.Name, nullString(s.Description), nullString(s.SKU),
		nullString(s.Manufacturer), s.UnitOfMeasure, s.UnitCost, s.DefaultParLevel, s.TracksExpiration, s.Active,
	).Scan(&s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrSupplyNotFound
	}
	return err
}

type categoryRow struct {
	ID          uuid.UUID      `db:"id"`
	AgencyID    uuid.UUID      `db:"agency_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Active      bool           `db:"active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (row categoryRow) category() models.Category {
	return models.Category{
		ID:          row.ID,
		AgencyID:    row.AgencyID,
		Name:        row.Name,
		Description: row.Description.String,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

const categorySelect = `
SELECT id, agency_id, name, description, active, created_at, updated_at
FROM supply_categories
`

func (r *CatalogRepository) ListCategories(ctx context.Context, agencyID uuid.UUID) ([]models.Category, error) {
	var rows []categoryRow
	if err := r.db.SQLX().SelectContext(ctx, &rows, categorySelect+`WHERE agency_id = $1 AND active = TRUE ORDER BY name`, agencyID); err != nil {
		return nil, err
	}
	out := make([]models.Category, len(rows))
	for i, row := range rows {
		out[i] = row.category()
	}
	return out, nil
}

func (r *CatalogRepository) GetCategory(ctx context.Context, agencyID, id uuid.UUID) (*models.Category, error) {
	var row categoryRow
	err := r.db.SQLX().GetContext(ctx, &row, categorySelect+`WHERE id = $1 AND agency_id = $2`, id, agencyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	c := row.category()
	return &c, nil
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.db.SQLX().QueryRowxContext(ctx, `
INSERT INTO supply_categories (id, agency_id, name, description, active)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at`,
		c.ID, c.AgencyID, c.Name, nullString(c.Description), c.Active,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}
