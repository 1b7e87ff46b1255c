// Package memory is an in-process user store for service and handler tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/identity/domain"
	"github.com/ghuser/emssupply/services/identity/domain/models"
	"github.com/ghuser/emssupply/services/identity/domain/repositories"
)

type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

var _ repositories.UserRepository = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]models.User)}
}

func (s *UserStore) find(match func(models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []models.User
	for _, u := range s.users {
		if match(u) {
			found = append(found, u)
		}
	}
	if len(found) == 0 {
		return nil, domain.ErrUserNotFound
	}
	slices.SortFunc(found, func(a, b models.User) int { return a.CreatedAt.Compare(b.CreatedAt) })
	u := found[0]
	return &u, nil
}

func (s *UserStore) FindActiveByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Email == email && u.Active })
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.ID == id })
}

func (s *UserStore) Get(_ context.Context, agencyID, id uuid.UUID) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.ID == id && u.AgencyID == agencyID })
}

func (s *UserStore) IsActive(ctx context.Context, agencyID, userID uuid.UUID) (bool, error) {
	u, err := s.Get(ctx, agencyID, userID)
	if err != nil {
		return false, nil
	}
	return u.Active, nil
}

func (s *UserStore) List(_ context.Context, agencyID uuid.UUID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.AgencyID == agencyID {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b models.User) int {
		return cmp.Or(cmp.Compare(a.LastName, b.LastName), cmp.Compare(a.FirstName, b.FirstName))
	})
	return out, nil
}

func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.AgencyID == u.AgencyID && other.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok || cur.AgencyID != u.AgencyID {
		return domain.ErrUserNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}
