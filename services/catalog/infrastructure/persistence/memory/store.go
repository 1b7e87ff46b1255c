// Package memory is an in-process catalog store for service and handler tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/catalog/domain"
	"github.com/ghuser/emssupply/services/catalog/domain/models"
	"github.com/ghuser/emssupply/services/catalog/domain/repositories"
)

type Store struct {
	mu         sync.Mutex
	supplies   map[uuid.UUID]models.Supply
	categories map[uuid.UUID]models.Category
}

var _ repositories.CatalogRepository = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		supplies:   make(map[uuid.UUID]models.Supply),
		categories: make(map[uuid.UUID]models.Category),
	}
}

func (s *Store) categoryName(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return s.categories[*id].Name
}

func matches(sup models.Supply, search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, v := range []string{sup.Name, sup.SKU, sup.Manufacturer} {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}

func (s *Store) ListSupplies(_ context.Context, agencyID uuid.UUID, f models.Filter) ([]models.Supply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Supply
	for _, sup := range s.supplies {
		if sup.AgencyID != agencyID {
			continue
		}
		if f.CategoryID != uuid.Nil && (sup.CategoryID == nil || *sup.CategoryID != f.CategoryID) {
			continue
		}
		if f.Active != nil && sup.Active != *f.Active {
			continue
		}
		if !matches(sup, f.Search) {
			continue
		}
		sup.CategoryName = s.categoryName(sup.CategoryID)
		out = append(out, sup)
	}
	slices.SortFunc(out, func(a, b models.Supply) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) GetSupply(_ context.Context, agencyID, id uuid.UUID) (*models.Supply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sup, ok := s.supplies[id]
	if !ok || sup.AgencyID != agencyID {
		return nil, domain.ErrSupplyNotFound
	}
	sup.CategoryName = s.categoryName(sup.CategoryID)
	return &sup, nil
}

func (s *Store) CreateSupply(_ context.Context, sup *models.Supply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	sup.CreatedAt, sup.UpdatedAt = now, now
	s.supplies[sup.ID] = *sup
	return nil
}

func (s *Store) UpdateSupply(_ context.Context, sup *models.Supply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.supplies[sup.ID]
	if !ok || cur.AgencyID != sup.AgencyID {
		return domain.ErrSupplyNotFound
	}
	sup.UpdatedAt = time.Now().UTC()
	s.supplies[sup.ID] = *sup
	return nil
}

func (s *Store) ListCategories(_ context.Context, agencyID uuid.UUID) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Category
	for _, c := range s.categories {
		if c.AgencyID == agencyID && c.Active {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b models.Category) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, agencyID, id uuid.UUID) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.AgencyID != agencyID {
		return nil, domain.ErrCategoryNotFound
	}
	return &c, nil
}

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	s.categories[c.ID] = *c
	return nil
}
