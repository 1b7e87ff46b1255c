package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/alerts/domain/models"
)

// AlertRepository persists alerts. Every method is scoped to one agency.
type AlertRepository interface {
	// List returns non-dismissed alerts, newest first.
	List(ctx context.Context, agencyID uuid.UUID, f models.Filter) ([]models.Alert, error)
	// MarkRead and Dismiss return ErrAlertNotFound for unknown or foreign ids.
	MarkRead(ctx context.Context, agencyID, id uuid.UUID) error
	Dismiss(ctx context.Context, agencyID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, agencyID uuid.UUID) (int64, error)
	// ExistsSince reports whether an alert with key was created after since.
	ExistsSince(ctx context.Context, key models.DedupKey, since time.Time) (bool, error)
	Insert(ctx context.Context, a *models.Alert) error
}

// ScanSource reads the inventory state the generator evaluates.
type ScanSource interface {
	ActiveAgencies(ctx context.Context) ([]models.AgencyScan, error)
	// Agency returns one agency's thresholds; ok is false when it is unknown or inactive.
	Agency(ctx context.Context, agencyID uuid.UUID) (scan models.AgencyScan, ok bool, err error)
	// Expiring returns tracked lots whose expiration date falls within [from, until].
	Expiring(ctx context.Context, agencyID uuid.UUID, from, until time.Time) ([]models.Candidate, error)
	BelowPar(ctx context.Context, agencyID uuid.UUID) ([]models.Candidate, error)
}
