package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/agency/domain/models"
)

// AgencyRepository persists the agency profile and its fleet. Every method
// is scoped to one agency; records of other agencies are reported as not found.
type AgencyRepository interface {
	GetAgency(ctx context.Context, id uuid.UUID) (*models.Agency, error)
	UpdateAgency(ctx context.Context, a *models.Agency) error

	// ListStations orders by name and fills UnitCount.
	ListStations(ctx context.Context, agencyID uuid.UUID) ([]models.Station, error)
	GetStation(ctx context.Context, agencyID, id uuid.UUID) (*models.Station, error)
	CreateStation(ctx context.Context, s *models.Station) error
	UpdateStation(ctx context.Context, s *models.Station) error

	// ListUnits orders by name and fills StationName.
	ListUnits(ctx context.Context, agencyID uuid.UUID) ([]models.Unit, error)
	GetUnit(ctx context.Context, agencyID, id uuid.UUID) (*models.Unit, error)
	CreateUnit(ctx context.Context, u *models.Unit) error
	UpdateUnit(ctx context.Context, u *models.Unit) error
}
