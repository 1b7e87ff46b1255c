package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/database"
	"github.com/ghuser/emssupply/services/alerts/domain"
	"github.com/ghuser/emssupply/services/alerts/domain/models"
	"github.com/ghuser/emssupply/services/alerts/domain/repositories"
)

// AlertRepository implements repositories.AlertRepository and
// repositories.ScanSource with sqlx.
type AlertRepository struct {
	db *database.Database
}

var (
	_ repositories.AlertRepository = (*AlertRepository)(nil)
	_ repositories.ScanSource      = (*AlertRepository)(nil)
)

func NewAlertRepository(db *database.Database) *AlertRepository {
	return &AlertRepository{db: db}
}

type alertRow struct {
	ID           uuid.UUID      `db:"id"`
	AgencyID     uuid.UUID      `db:"agency_id"`
	Type         string         `db:"type"`
	Severity     string         `db:"severity"`
	Title        string         `db:"title"`
	Message      string         `db:"message"`
	SupplyID     uuid.NullUUID  `db:"supply_id"`
	LocationType sql.NullString `db:"location_type"`
	LocationID   uuid.NullUUID  `db:"location_id"`
	IsRead       bool           `db:"is_read"`
	IsDismissed  bool           `db:"is_dismissed"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	SupplyName   string         `db:"supply_name"`
	SKU          string         `db:"sku"`
}

func (r alertRow) alert() models.Alert {
	a := models.Alert{
		ID:           r.ID,
		AgencyID:     r.AgencyID,
		Type:         models.Type(r.Type),
		Severity:     models.Severity(r.Severity),
		Title:        r.Title,
		Message:      r.Message,
		LocationType: r.LocationType.String,
		IsRead:       r.IsRead,
		IsDismissed:  r.IsDismissed,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		SupplyName:   r.SupplyName,
		SKU:          r.SKU,
	}
	if r.SupplyID.Valid {
		id := r.SupplyID.UUID
		a.SupplyID = &id
	}
	if r.LocationID.Valid {
		id := r.LocationID.UUID
		a.LocationID = &id
	}
	return a
}

func (r *AlertRepository) List(ctx context.Context, agencyID uuid.UUID, f models.Filter) ([]models.Alert, error) {
	conds := []string{"a.agency_id = :agency_id", "a.is_dismissed = FALSE"}
	args := map[string]any{"agency_id": agencyID}
	if f.IsRead != nil {
		conds = append(conds, "a.is_read = :is_read")
		args["is_read"] = *f.IsRead
	}
	if f.Severity != "" {
		conds = append(conds, "a.severity = :severity")
		args["severity"] = string(f.Severity)
	}
	if f.Type != "" {
		conds = append(conds, "a.type = :type")
		args["type"] = string(f.Type)
	}

	query := `
SELECT a.id, a.agency_id, a.type, a.severity, a.title, a.message, a.supply_id,
       a.location_type, a.location_id, a.is_read, a.is_dismissed, a.created_at, a.updated_at,
       COALESCE(s.name, '') AS supply_name, COALESCE(s.sku, '') AS sku
FROM alerts a
LEFT JOIN supplies s ON s.id = a.supply_id
WHERE ` + strings.Join(conds, " AND ") + `
ORDER BY a.created_at DESC`

	stmt, err := r.db.SQLX().PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare alert list: %w", err)
	}
	defer stmt.Close()

	var rows []alertRow
	if err := stmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	out := make([]models.Alert, len(rows))
	for i, row := range rows {
		out[i] = row.alert()
	}
	return out, nil
}

func (r *AlertRepository) MarkRead(ctx context.Context, agencyID, id uuid.UUID) error {
	return r.updateOne(ctx, "is_read = TRUE", agencyID, id)
}

func (r *AlertRepository) Dismiss(ctx context.Context, agencyID, id uuid.UUID) error {
	return r.updateOne(ctx, "is_dismissed = TRUE", agencyID, id)
}

func (r *AlertRepository) updateOne(ctx context.Context, set string, agencyID, id uuid.UUID) error {
	res, err := r.db.SQLX().ExecContext(ctx,
		`UPDATE alerts SET `+set+`, updated_at = NOW() WHERE id = $1 AND agency_id = $2`, id, agencyID)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if n == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

func (r *AlertRepository) MarkAllRead(ctx context.Context, agencyID uuid.UUID) (int64, error) {
	res, err := r.db.SQLX().ExecContext(ctx,
		`UPDATE alerts SET is_read = TRUE, updated_at = NOW()
		 WHERE agency_id = $1 AND is_read = FALSE AND is_dismissed = FALSE`, agencyID)
	if err != nil {
		return 0, fmt.Errorf("mark all alerts read: %w", err)
	}
	return res.RowsAffected()
}

func (r *AlertRepository) ExistsSince(ctx context.Context, key models.DedupKey, since time.Time) (bool, error) {
	var exists bool
	err := r.db.SQLX().GetContext(ctx, &exists, `
SELECT EXISTS (
    SELECT 1 FROM alerts
    WHERE agency_id = $1 AND supply_id = $2 AND location_type = $3 AND location_id = $4
      AND type = $5 AND created_at > $6
)`, key.AgencyID, key.SupplyID, key.LocationType, key.LocationID, string(key.Type), since)
	if err != nil {
		return false, fmt.Errorf("check recent alert: %w", err)
	}
	return exists, nil
}

func (r *AlertRepository) Insert(ctx context.Context, a *models.Alert) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	var locType sql.NullString
	if a.LocationType != "" {
		locType = sql.NullString{String: a.LocationType, Valid: true}
	}
	err := r.db.SQLX().QueryRowxContext(ctx, `
INSERT INTO alerts (id, agency_id, type, severity, title, message, supply_id, location_type, location_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at, updated_at`,
		a.ID, a.AgencyID, string(a.Type), string(a.Severity), a.Title, a.Message,
		nullUUID(a.SupplyID), locType, nullUUID(a.LocationID),
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

type agencyRow struct {
	ID       uuid.UUID `db:"id"`
	Settings []byte    `db:"settings"`
}

type agencySettings struct {
	AlertExpiringDays []int `json:"alert_expiring_days"`
}

func (r agencyRow) scan() models.AgencyScan {
	var s agencySettings
	if len(r.Settings) > 0 {
		if err := json.Unmarshal(r.Settings, &s); err != nil {
			return models.AgencyScan{AgencyID: r.ID, Err: fmt.Errorf("decode settings of agency %s: %w", r.ID, err)}
		}
	}
	days := s.AlertExpiringDays
	if len(days) == 0 {
		days = models.DefaultExpiringDays
	}
	return models.AgencyScan{AgencyID: r.ID, ExpiringDays: days}
}

func (r *AlertRepository) ActiveAgencies(ctx context.Context) ([]models.AgencyScan, error) {
	var rows []agencyRow
	if err := r.db.SQLX().SelectContext(ctx, &rows,
		`SELECT id, settings FROM agencies WHERE active = TRUE ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("list agencies: %w", err)
	}
	out := make([]models.AgencyScan, len(rows))
	for i, row := range rows {
		out[i] = row.scan()
	}
	return out, nil
}

func (r *AlertRepository) Agency(ctx context.Context, agencyID uuid.UUID) (models.AgencyScan, bool, error) {
	var row agencyRow
	err := r.db.SQLX().GetContext(ctx, &row,
		`SELECT id, settings FROM agencies WHERE id = $1 AND active = TRUE`, agencyID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AgencyScan{}, false, nil
	}
	if err != nil {
		return models.AgencyScan{}, false, fmt.Errorf("get agency: %w", err)
	}
	return row.scan(), true, nil
}

type candidateRow struct {
	SupplyID       uuid.UUID    `db:"supply_id"`
	SupplyName     string       `db:"supply_name"`
	LocationType   string       `db:"location_type"`
	LocationID     uuid.UUID    `db:"location_id"`
	Quantity       int          `db:"quantity"`
	ParLevel       int          `db:"par_level"`
	ExpirationDate sql.NullTime `db:"expiration_date"`
}

const candidateSelect = `
SELECT ir.supply_id, s.name AS supply_name, ir.location_type, ir.location_id,
       ir.quantity, ir.par_level, ir.expiration_date
FROM inventory_records ir
JOIN supplies s ON s.id = ir.supply_id
`

func (r *AlertRepository) candidates(ctx context.Context, where string, args ...any) ([]models.Candidate, error) {
	var rows []candidateRow
	if err := r.db.SQLX().SelectContext(ctx, &rows, candidateSelect+where, args...); err != nil {
		return nil, err
	}
	out := make([]models.Candidate, len(rows))
	for i, row := range rows {
		out[i] = models.Candidate{
			SupplyID:     row.SupplyID,
			SupplyName:   row.SupplyName,
			LocationType: row.LocationType,
			LocationID:   row.LocationID,
			Quantity:     row.Quantity,
			ParLevel:     row.ParLevel,
		}
		if row.ExpirationDate.Valid {
			t := row.ExpirationDate.Time.UTC()
			out[i].ExpirationDate = &t
		}
	}
	return out, nil
}

func (r *AlertRepository) Expiring(ctx context.Context, agencyID uuid.UUID, from, until time.Time) ([]models.Candidate, error) {
	out, err := r.candidates(ctx, `
WHERE ir.agency_id = $1 AND s.tracks_expiration = TRUE
  AND ir.expiration_date BETWEEN $2 AND $3
ORDER BY ir.expiration_date`, agencyID, from, until)
	if err != nil {
		return nil, fmt.Errorf("expiring candidates: %w", err)
	}
	return out, nil
}

func (r *AlertRepository) BelowPar(ctx context.Context, agencyID uuid.UUID) ([]models.Candidate, error) {
	out, err := r.candidates(ctx, `
WHERE ir.agency_id = $1 AND ir.quantity < ir.par_level
ORDER BY s.name`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("below-par candidates: %w", err)
	}
	return out, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
