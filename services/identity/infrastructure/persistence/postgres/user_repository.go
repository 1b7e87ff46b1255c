package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/database"
	"github.com/ghuser/emssupply/services/identity/domain"
	"github.com/ghuser/emssupply/services/identity/domain/models"
	"github.com/ghuser/emssupply/services/identity/domain/repositories"
)

// UserRepository implements repositories.UserRepository with sqlx.
type UserRepository struct {
	db *database.Database
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *database.Database) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID           uuid.UUID      `db:"id"`
	AgencyID     uuid.UUID      `db:"agency_id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	Role         string         `db:"role"`
	Phone        sql.NullString `db:"phone"`
	Active       bool           `db:"active"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r userRow) user() *models.User {
	return &models.User{
		ID:           r.ID,
		AgencyID:     r.AgencyID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Role:         auth.Role(r.Role),
		Phone:        r.Phone.String,
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const userColumns = `id, agency_id, email, password_hash, first_name, last_name, role, phone, active, created_at, updated_at`

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var row userRow
	err := r.db.SQLX().GetContext(ctx, &row, `SELECT `+userColumns+` FROM users `+query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.user(), nil
}

func (r *UserRepository) FindActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `WHERE email = $1 AND active = TRUE ORDER BY created_at LIMIT 1`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) Get(ctx context.Context, agencyID, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1 AND agency_id = $2`, id, agencyID)
}

func (r *UserRepository) IsActive(ctx context.Context, agencyID, userID uuid.UUID) (bool, error) {
	var active bool
	err := r.db.SQLX().GetContext(ctx, &active,
		`SELECT active FROM users WHERE id = $1 AND agency_id = $2`, userID, agencyID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user active: %w", err)
	}
	return active, nil
}

func (r *UserRepository) List(ctx context.Context, agencyID uuid.UUID) ([]models.User, error) {
	var rows []userRow
	if err := r.db.SQLX().SelectContext(ctx, &rows,
		`SELECT `+userColumns+` FROM users WHERE agency_id = $1 ORDER BY last_name, first_name`, agencyID); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.User, len(rows))
	for i, row := range rows {
		out[i] = *row.user()
	}
	return out, nil
}

func toRow(u *models.User) userRow {
	return userRow{
		ID:           u.ID,
		AgencyID:     u.AgencyID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         string(u.Role),
		Phone:        sql.NullString{String: u.Phone, Valid: u.Phone != ""},
		Active:       u.Active,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query, args, err := r.db.SQLX().BindNamed(`
INSERT INTO users (id, agency_id, email, password_hash, first_name, last_name, role, phone, active)
VALUES (:id, :agency_id, :email, :password_hash, :first_name, :last_name, :role, :phone, :active)
RETURNING created_at, updated_at`, toRow(u))
	if err != nil {
		return fmt.Errorf("bind user insert: %w", err)
	}
	err = r.db.SQLX().QueryRowxContext(ctx, query, args...).Scan(&u.CreatedAt, &u.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	res, err := r.db.SQLX().NamedExecContext(ctx, `
UPDATE users SET password_hash = :password_hash, first_name = :first_name, last_name = :last_name,
       role = :role, phone = :phone, active = :active, updated_at = NOW()
WHERE id = :id AND agency_id = :agency_id`, toRow(u))
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}
