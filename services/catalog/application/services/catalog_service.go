package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/catalog/domain"
	"github.com/ghuser/emssupply/services/catalog/domain/models"
	"github.com/ghuser/emssupply/services/catalog/domain/repositories"
)

// CatalogService manages the supply catalog of the caller's agency.
type CatalogService struct {
	repo repositories.CatalogRepository
	log  logger.Logger
}

func NewCatalogService(repo repositories.CatalogRepository, log logger.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log}
}

func (s *CatalogService) Supplies(ctx context.Context, p auth.Principal, f models.Filter) ([]models.Supply, error) {
	f.Search = strings.TrimSpace(f.Search)
	supplies, err := s.repo.ListSupplies(ctx, p.AgencyID, f)
	if err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	return supplies, nil
}

func (s *CatalogService) Supply(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Supply, error) {
	return s.repo.GetSupply(ctx, p.AgencyID, id)
}

// CreateSupply adds an active supply. A referenced category must belong to
// the caller's agency.
func (s *CatalogService) CreateSupply(ctx context.Context, p auth.Principal, in models.Supply) (*models.Supply, error) {
	in.ID = uuid.New()
	in.AgencyID = p.AgencyID
	in.Active = true
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.resolveCategory(ctx, &in); err != nil {
		return nil, err
	}
	if err := s.repo.CreateSupply(ctx, &in); err != nil {
		return nil, fmt.Errorf("create supply: %w", err)
	}
	s.log.InfoContext(ctx, "supply created", "supply_id", in.ID, "sku", in.SKU)
	return &in, nil
}

func (s *CatalogService) UpdateSupply(ctx context.Context, p auth.Principal, id uuid.UUID, patch models.SupplyPatch) (*models.Supply, error) {
	sup, err := s.repo.GetSupply(ctx, p.AgencyID, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(sup); err != nil {
		return nil, err
	}
	if err := s.resolveCategory(ctx, sup); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSupply(ctx, sup); err != nil {
		return nil, fmt.Errorf("update supply: %w", err)
	}
	return sup, nil
}

// DeactivateSupply hides a supply from active listings. Inventory records
// and history are kept.
func (s *CatalogService) DeactivateSupply(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	inactive := false
	_, err := s.UpdateSupply(ctx, p, id, models.SupplyPatch{Active: &inactive})
	return err
}

func (s *CatalogService) resolveCategory(ctx context.Context, sup *models.Supply) error {
	sup.CategoryName = ""
	if sup.CategoryID == nil {
		return nil
	}
	c, err := s.repo.GetCategory(ctx, sup.AgencyID, *sup.CategoryID)
	if err != nil {
		return err
	}
	sup.CategoryName = c.Name
	return nil
}

func (s *CatalogService) Categories(ctx context.Context, p auth.Principal) ([]models.Category, error) {
	cats, err := s.repo.ListCategories(ctx, p.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, p auth.Principal, name, description string) (*models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
	}
	c := &models.Category{
		ID:          uuid.New(),
		AgencyID:    p.AgencyID,
		Name:        name,
		Description: description,
		Active:      true,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}
