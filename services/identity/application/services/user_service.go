package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/identity/domain"
	"github.com/ghuser/emssupply/services/identity/domain/models"
	"github.com/ghuser/emssupply/services/identity/domain/repositories"
)

// NewUser is the input for creating an agency member.
type NewUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      auth.Role
	Phone     string
}

// UserService manages the users of the caller's agency.
type UserService struct {
	users repositories.UserRepository
	log   logger.Logger
}

func NewUserService(users repositories.UserRepository, log logger.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) Me(ctx context.Context, p auth.Principal) (*models.User, error) {
	return s.users.Get(ctx, p.AgencyID, p.UserID)
}

// UpdateMe lets a user change their own name, phone and password. Role and
// active flags in patch are ignored.
func (s *UserService) UpdateMe(ctx context.Context, p auth.Principal, patch models.Patch) (*models.User, error) {
	patch.Role, patch.Active = nil, nil
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no valid fields to update", domain.ErrInvalidInput)
	}
	return s.update(ctx, p.AgencyID, p.UserID, patch)
}

func (s *UserService) List(ctx context.Context, p auth.Principal) ([]models.User, error) {
	users, err := s.users.List(ctx, p.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.User, error) {
	return s.users.Get(ctx, p.AgencyID, id)
}

// Create adds an active user to the caller's agency.
func (s *UserService) Create(ctx context.Context, p auth.Principal, in NewUser) (*models.User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}
	hash, err := models.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           uuid.New(),
		AgencyID:     p.AgencyID,
		Email:        models.NormalizeEmail(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		Phone:        in.Phone,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Update applies an admin patch to any user of the agency.
func (s *UserService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, patch models.Patch) (*models.User, error) {
	if patch.Active != nil && !*patch.Active && id == p.UserID {
		return nil, domain.ErrSelfDeactivation
	}
	return s.update(ctx, p.AgencyID, id, patch)
}

// Deactivate marks a user inactive. Their tokens stop working at the next
// request because authentication checks the active flag.
func (s *UserService) Deactivate(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if id == p.UserID {
		return domain.ErrSelfDeactivation
	}
	inactive := false
	_, err := s.update(ctx, p.AgencyID, id, models.Patch{Active: &inactive})
	return err
}

func (s *UserService) update(ctx context.Context, agencyID, id uuid.UUID, patch models.Patch) (*models.User, error) {
	u, err := s.users.Get(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(u); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}
