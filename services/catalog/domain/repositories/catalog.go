package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/catalog/domain/models"
)

// CatalogRepository persists supplies and categories, scoped by agency.
type CatalogRepository interface {
	// ListSupplies orders by name. Search matches name, SKU or manufacturer
	// case-insensitively.
	ListSupplies(ctx context.Context, agencyID uuid.UUID, f models.Filter) ([]models.Supply, error)
	GetSupply(ctx context.Context, agencyID, id uuid.UUID) (*models.Supply, error)
	CreateSupply(ctx context.Context, s *models.Supply) error
	UpdateSupply(ctx context.Context, s *models.Supply) error

	// ListCategories returns active categories ordered by name.
	ListCategories(ctx context.Context, agencyID uuid.UUID) ([]models.Category, error)
	GetCategory(ctx context.Context, agencyID, id uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
}
