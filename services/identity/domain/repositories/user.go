package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/services/identity/domain/models"
)

// UserRepository persists users. Lookups return domain.ErrUserNotFound when
// nothing matches.
type UserRepository interface {
	auth.ActiveUserChecker

	// FindActiveByEmail looks up an active user by normalized email across agencies.
	FindActiveByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID ignores agency scoping; only token flows that already proved
	// ownership of the id may call it.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Get(ctx context.Context, agencyID, id uuid.UUID) (*models.User, error)
	// List returns the agency's users ordered by last name.
	List(ctx context.Context, agencyID uuid.UUID) ([]models.User, error)
	// Create returns domain.ErrEmailTaken when the agency already has the email.
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
}
