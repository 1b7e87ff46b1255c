package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/emssupply/services/catalog/domain/models"
)

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"Supply not found"`
} // @name CatalogErrorResponse

type MessageResponse struct {
	Message string `json:"message" example:"Supply deactivated successfully"`
} // @name CatalogMessageResponse

type SupplyResponse struct {
	ID               uuid.UUID       `json:"id"`
	CategoryID       *uuid.UUID      `json:"category_id"`
	CategoryName     string          `json:"category_name,omitempty" example:"Airway"`
	Name             string          `json:"name"              example:"Nasal Cannula, Adult"`
	Description      string          `json:"description"`
	SKU              string          `json:"sku"               example:"AW-NC-01"`
	Manufacturer     string          `json:"manufacturer"      example:"Medline"`
	UnitOfMeasure    string          `json:"unit_of_measure"   example:"each"`
	UnitCost         decimal.Decimal `json:"unit_cost"         swaggertype:"string" example:"1.25"`
	DefaultParLevel  int             `json:"default_par_level" example:"4"`
	TracksExpiration bool            `json:"tracks_expiration"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
} // @name SupplyResponse

type SupplyEnvelope struct {
	Supply SupplyResponse `json:"supply"`
} // @name SupplyEnvelope

type SuppliesResponse struct {
	Supplies []SupplyResponse `json:"supplies"`
} // @name SuppliesResponse

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name" example:"Airway"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
} // @name CategoryResponse

type CategoryEnvelope struct {
	Category CategoryResponse `json:"category"`
} // @name CategoryEnvelope

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
} // @name CategoriesResponse

func supplyResponse(s *models.Supply) SupplyResponse {
	return SupplyResponse{
		ID:               s.ID,
		CategoryID:       s.CategoryID,
		CategoryName:     s.CategoryName,
		Name:             s.Name,
		Description:      s.Description,
		SKU:              s.SKU,
		Manufacturer:     s.Manufacturer,
		UnitOfMeasure:    s.UnitOfMeasure,
		UnitCost:         s.UnitCost,
		DefaultParLevel:  s.DefaultParLevel,
		TracksExpiration: s.TracksExpiration,
		Active:           s.Active,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func categoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
