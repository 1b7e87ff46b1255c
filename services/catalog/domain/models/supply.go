package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/emssupply/services/catalog/domain"
)

// DefaultUnitOfMeasure is used when a supply is created without one.
const DefaultUnitOfMeasure = "each"

// Category groups supplies for browsing and reporting.
type Category struct {
	ID          uuid.UUID
	AgencyID    uuid.UUID
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Supply is a catalog item that inventory records count.
type Supply struct {
	ID               uuid.UUID
	AgencyID         uuid.UUID
	CategoryID       *uuid.UUID
	Name             string
	Description      string
	SKU              string
	Manufacturer     string
	UnitOfMeasure    string
	UnitCost         decimal.Decimal
	DefaultParLevel  int
	TracksExpiration bool
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time

	CategoryName string
}

func (s *Supply) Validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return fmt.Errorf("%w: supply name is required", domain.ErrInvalidInput)
	case s.UnitCost.IsNegative():
		return fmt.Errorf("%w: unit_cost must not be negative", domain.ErrInvalidInput)
	case s.DefaultParLevel < 0:
		return fmt.Errorf("%w: default_par_level must not be negative", domain.ErrInvalidInput)
	}
	if s.UnitOfMeasure == "" {
		s.UnitOfMeasure = DefaultUnitOfMeasure
	}
	return nil
}

// SupplyPatch is a partial supply update. Nil fields are unchanged; a
// CategoryID of uuid.Nil clears the category.
type SupplyPatch struct {
	CategoryID       *uuid.UUID
	Name             *string
	Description      *string
	SKU              *string
	Manufacturer     *string
	UnitOfMeasure    *string
	UnitCost         *decimal.Decimal
	DefaultParLevel  *int
	TracksExpiration *bool
	Active           *bool
}

func (p SupplyPatch) Apply(s *Supply) error {
	if p.CategoryID != nil {
		if *p.CategoryID == uuid.Nil {
			s.CategoryID = nil
		} else {
			id := *p.CategoryID
			s.CategoryID = &id
		}
	}
	set(&s.Name, p.Name)
	set(&s.Description, p.Description)
	set(&s.SKU, p.SKU)
	set(&s.Manufacturer, p.Manufacturer)
	set(&s.UnitOfMeasure, p.UnitOfMeasure)
	set(&s.UnitCost, p.UnitCost)
	set(&s.DefaultParLevel, p.DefaultParLevel)
	set(&s.TracksExpiration, p.TracksExpiration)
	set(&s.Active, p.Active)
	return s.Validate()
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Filter narrows the supply listing. Active nil lists both active and
// inactive supplies.
type Filter struct {
	CategoryID uuid.UUID
	Search     string
	Active     *bool
}
