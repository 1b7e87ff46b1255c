package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/agency/domain/models"
	"github.com/ghuser/emssupply/services/agency/domain/repositories"
)

// NewStation is the input for creating a station.
type NewStation struct {
	Name    string
	Address string
	City    string
	State   string
	Zip     string
}

// NewUnit is the input for creating a unit.
type NewUnit struct {
	Name      string
	Type      models.UnitType
	StationID *uuid.UUID
	VehicleID string
}

// AgencyService manages the caller's agency profile, stations and units.
type AgencyService struct {
	repo repositories.AgencyRepository
	log  logger.Logger
}

func NewAgencyService(repo repositories.AgencyRepository, log logger.Logger) *AgencyService {
	return &AgencyService{repo: repo, log: log}
}

// Agency returns the caller's agency with default settings filled in.
func (s *AgencyService) Agency(ctx context.Context, p auth.Principal) (*models.Agency, error) {
	a, err := s.repo.GetAgency(ctx, p.AgencyID)
	if err != nil {
		return nil, err
	}
	a.Settings = a.Settings.WithDefaults()
	return a, nil
}

func (s *AgencyService) UpdateAgency(ctx context.Context, p auth.Principal, patch models.AgencyPatch) (*models.Agency, error) {
	a, err := s.repo.GetAgency(ctx, p.AgencyID)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(a); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAgency(ctx, a); err != nil {
		return nil, fmt.Errorf("update agency: %w", err)
	}
	s.log.InfoContext(ctx, "agency updated", "agency_id", a.ID)
	a.Settings = a.Settings.WithDefaults()
	return a, nil
}

func (s *AgencyService) Stations(ctx context.Context, p auth.Principal) ([]models.Station, error) {
	stations, err := s.repo.ListStations(ctx, p.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	return stations, nil
}

func (s *AgencyService) CreateStation(ctx context.Context, p auth.Principal, in NewStation) (*models.Station, error) {
	st := &models.Station{
		ID:       uuid.New(),
		AgencyID: p.AgencyID,
		Active:   true,
	}
	patch := models.StationPatch{Name: &in.Name, Address: &in.Address, City: &in.City, State: &in.State, Zip: &in.Zip}
	if err := patch.Apply(st); err != nil {
		return nil, err
	}
	if err := s.repo.CreateStation(ctx, st); err != nil {
		return nil, fmt.Errorf("create station: %w", err)
	}
	return st, nil
}

func (s *AgencyService) UpdateStation(ctx context.Context, p auth.Principal, id uuid.UUID, patch models.StationPatch) (*models.Station, error) {
	st, err := s.repo.GetStation(ctx, p.AgencyID, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(st); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStation(ctx, st); err != nil {
		return nil, fmt.Errorf("update station: %w", err)
	}
	return st, nil
}

func (s *AgencyService) Units(ctx context.Context, p auth.Principal) ([]models.Unit, error) {
	units, err := s.repo.ListUnits(ctx, p.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

func (s *AgencyService) CreateUnit(ctx context.Context, p auth.Principal, in NewUnit) (*models.Unit, error) {
	u := &models.Unit{
		ID:        uuid.New(),
		AgencyID:  p.AgencyID,
		StationID: in.StationID,
		Name:      in.Name,
		Type:      in.Type,
		VehicleID: in.VehicleID,
		Active:    true,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.assignStation(ctx, u); err != nil {
		return nil, err
	}
	if err := s.repo.CreateUnit(ctx, u); err != nil {
		return nil, fmt.Errorf("create unit: %w", err)
	}
	return u, nil
}

func (s *AgencyService) UpdateUnit(ctx context.Context, p auth.Principal, id uuid.UUID, patch models.UnitPatch) (*models.Unit, error) {
	u, err := s.repo.GetUnit(ctx, p.AgencyID, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(u); err != nil {
		return nil, err
	}
	if err := s.assignStation(ctx, u); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUnit(ctx, u); err != nil {
		return nil, fmt.Errorf("update unit: %w", err)
	}
	return u, nil
}

// assignStation checks the unit's station belongs to its agency and records
// the station name.
func (s *AgencyService) assignStation(ctx context.Context, u *models.Unit) error {
	u.StationName = ""
	if u.StationID == nil {
		return nil
	}
	st, err := s.repo.GetStation(ctx, u.AgencyID, *u.StationID)
	if err != nil {
		return err
	}
	u.StationName = st.Name
	return nil
}
