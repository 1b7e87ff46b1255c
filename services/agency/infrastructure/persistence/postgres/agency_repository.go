package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/database"
	"github.com/ghuser/emssupply/services/agency/domain"
	"github.com/ghuser/emssupply/services/agency/domain/models"
	"github.com/ghuser/emssupply/services/agency/domain/repositories"
)

// AgencyRepository implements repositories.AgencyRepository with sqlx.
type AgencyRepository struct {
	db *database.Database
}

var _ repositories.AgencyRepository = (*AgencyRepository)(nil)

func NewAgencyRepository(db *database.Database) *AgencyRepository {
	return &AgencyRepository{db: db}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func affectedOne(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// Agency

type agencyRow struct {
	ID        uuid.UUID      `db:"id"`
	Name      string         `db:"name"`
	Address   sql.NullString `db:"address"`
	City      sql.NullString `db:"city"`
	State     sql.NullString `db:"state"`
	Zip       sql.NullString `db:"zip"`
	Phone     sql.NullString `db:"phone"`
	Email     sql.NullString `db:"email"`
	Settings  []byte         `db:"settings"`
	Active    bool           `db:"active"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *AgencyRepository) GetAgency(ctx context.Context, id uuid.UUID) (*models.Agency, error) {
	var row agencyRow
	err := r.db.SQLX().GetContext(ctx, &row, `
SELECT id, name, address, city, state, zip, phone, email, settings, active, created_at, updated_at
FROM agencies WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAgencyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get agency: %w", err)
	}
	a := &models.Agency{
		ID:        row.ID,
		Name:      row.Name,
		Address:   row.Address.String,
		City:      row.City.String,
		State:     row.State.String,
		Zip:       row.Zip.String,
		Phone:     row.Phone.String,
		Email:     row.Email.String,
		Active:    row.Active,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Settings) > 0 {
		if err := json.Unmarshal(row.Settings, &a.Settings); err != nil {
			return nil, fmt.Errorf("decode agency settings: %w", err)
		}
	}
	return a, nil
}

func (r *AgencyRepository) UpdateAgency(ctx context.Context, a *models.Agency) error {
	settings, err := json.Marshal(a.Settings)
	if err != nil {
		return fmt.Errorf("encode agency settings: %w", err)
	}
	res, err := r.db.SQLX().ExecContext(ctx, `
UPDATE agencies SET name = $2, address = $3, city = $4, state = $5, zip = $6, phone = $7, email = $8,
       settings = $9, updated_at = NOW()
WHERE id = $1`,
		a.ID, a.Name, nullString(a.Address), nullString(a.City), nullString(a.State), nullString(a.Zip),
		nullString(a.Phone), nullString(a.Email), settings)
	if err := affectedOne(res, err, domain.ErrAgencyNotFound); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Stations

type stationRow struct {
	ID        uuid.UUID      `db:"id"`
	AgencyID  uuid.UUID      `db:"agency_id"`
	Name      string         `db:"name"`
	Address   sql.NullString `db:"address"`
	City      sql.NullString `db:"city"`
	State     sql.NullString `db:"state"`
	Zip       sql.NullString `db:"zip"`
	Active    bool           `db:"active"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	UnitCount int            `db:"unit_count"`
}

func (row stationRow) station() models.Station {
	return models.Station{
		ID:        row.ID,
		AgencyID:  row.AgencyID,
		Name:      row.Name,
		Address:   row.Address.String,
		City:      row.City.String,
		State:     row.State.String,
		Zip:       row.Zip.String,
		Active:    row.Active,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		UnitCount: row.UnitCount,
	}
}

const stationSelect = `
SELECT s.id, s.agency_id, s.name, s.address, s.city, s.state, s.zip, s.active, s.created_at, s.updated_at,
       (SELECT COUNT(*) FROM units u WHERE u.station_id = s.id AND u.active = TRUE) AS unit_count
FROM stations s
`

func (r *AgencyRepository) ListStations(ctx context.Context, agencyID uuid.UUID) ([]models.Station, error) {
	var rows []stationRow
	if err := r.db.SQLX().SelectContext(ctx, &rows, stationSelect+`WHERE s.agency_id = $1 ORDER BY s.name`, agencyID); err != nil {
		return nil, err
	}
	out := make([]models.Station, len(rows))
	for i, row := range rows {
		out[i] = row.station()
	}
	return out, nil
}

func (r *AgencyRepository) GetStation(ctx context.Context, agencyID, id uuid.UUID) (*models.Station, error) {
	var row stationRow
	err := r.db.SQLX().GetContext(ctx, &row, stationSelect+`WHERE s.id = $1 AND s.agency_id = $2`, id, agencyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get station: %w", err)
	}
	s := row.station()
	return &s, nil
}

func (r *AgencyRepository) CreateStation(ctx context.Context, s *models.Station) error {
	return r.db.SQLX().QueryRowxContext(ctx, `
INSERT INTO stations (id, agency_id, name, address, city, state, zip, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at`,
		s.ID, s.AgencyID, s.Name, nullString(s.Address), nullString(s.City), nullString(s.State), nullString(s.Zip), s.Active,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *AgencyRepository) UpdateStation(ctx context.Context, s *models.Station) error {
	res, err := r.db.SQLX().ExecContext(ctx, `
UPDATE stations SET name = $3, address = $4, city = $5, state = $6, zip = $7, active = $8, updated_at = NOW()
WHERE id = $1 AND agency_id = $2`,
		s.ID, s.AgencyID, s.Name, nullString(s.Address), nullString(s.City), nullString(s.State), nullString(s.Zip), s.Active)
	if err := affectedOne(res, err, domain.ErrStationNotFound); err != nil {
		return err
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Units

type unitRow struct {
	ID          uuid.UUID      `db:"id"`
	AgencyID    uuid.UUID      `db:"agency_id"`
	StationID   uuid.NullUUID  `db:"station_id"`
	Name        string         `db:"name"`
	Type        string         `db:"type"`
	VehicleID   sql.NullString `db:"vehicle_id"`
	Active      bool           `db:"active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	StationName sql.NullString `db:"station_name"`
}

func (row unitRow) unit() models.Unit {
	u := models.Unit{
		ID:          row.ID,
		AgencyID:    row.AgencyID,
		Name:        row.Name,
		Type:        models.UnitType(row.Type),
		VehicleID:   row.VehicleID.String,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		StationName: row.StationName.String,
	}
	if row.StationID.Valid {
		id := row.StationID.UUID
		u.StationID = &id
	}
	return u
}

const unitSelect = `
SELECT u.id, u.agency_id, u.station_id, u.name, u.type, u.vehicle_id, u.active, u.created_at, u.updated_at,
       s.name AS station_name
FROM units u
LEFT JOIN stations s ON s.id = u.station_id
`

func (r *AgencyRepository) ListUnits(ctx context.Context, agencyID uuid.UUID) ([]models.Unit, error) {
	var rows []unitRow
	if err := r.db.SQLX().SelectContext(ctx, &rows, unitSelect+`WHERE u.agency_id = $1 ORDER BY u.name`, agencyID); err != nil {
		return nil, err
	}
	out := make([]models.Unit, len(rows))
	for i, row := range rows {
		out[i] = row.unit()
	}
	return out, nil
}

func (r *AgencyRepository) GetUnit(ctx context.Context, agencyID, id uuid.UUID) (*models.Unit, error) {
	var row unitRow
	err := r.db.SQLX().GetContext(ctx, &row, unitSelect+`WHERE u.id = $1 AND u.agency_id = $2`, id, agencyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUnitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get unit: %w", err)
	}
	u := row.unit()
	return &u, nil
}

func stationRef(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func (r *AgencyRepository) CreateUnit(ctx context.Context, u *models.Unit) error {
	return r.db.SQLX().QueryRowxContext(ctx, `
INSERT INTO units (id, agency_id, station_id, name, type, vehicle_id, active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at`,
		u.ID, u.AgencyID, stationRef(u.StationID), u.Name, string(u.Type), nullString(u.VehicleID), u.Active,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *AgencyRepository) UpdateUnit(ctx context.Context, u *models.Unit) error {
	res, err := r.db.SQLX().ExecContext(ctx, `
UPDATE units SET station_id = $3, name = $4, type = $5, vehicle_id = $6, active = $7, updated_at = NOW()
WHERE id = $1 AND agency_id = $2`,
		u.ID, u.AgencyID, stationRef(u.StationID), u.Name, string(u.Type), nullString(u.VehicleID), u.Active)
	if err := affectedOne(res, err, domain.ErrUnitNotFound); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}
