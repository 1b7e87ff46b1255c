// Package memory is an in-process agency store for service and handler tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/agency/domain"
	"github.com/ghuser/emssupply/services/agency/domain/models"
	"github.com/ghuser/emssupply/services/agency/domain/repositories"
)

type Store struct {
	mu       sync.Mutex
	agencies map[uuid.UUID]models.Agency
	stations map[uuid.UUID]models.Station
	units    map[uuid.UUID]models.Unit
}

var _ repositories.AgencyRepository = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		agencies: make(map[uuid.UUID]models.Agency),
		stations: make(map[uuid.UUID]models.Station),
		units:    make(map[uuid.UUID]models.Unit),
	}
}

// AddAgency seeds an agency.
func (s *Store) AddAgency(a models.Agency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agencies[a.ID] = a
}

func (s *Store) GetAgency(_ context.Context, id uuid.UUID) (*models.Agency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agencies[id]
	if !ok {
		return nil, domain.ErrAgencyNotFound
	}
	a.Settings.AlertExpiringDays = slices.Clone(a.Settings.AlertExpiringDays)
	return &a, nil
}

func (s *Store) UpdateAgency(_ context.Context, a *models.Agency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agencies[a.ID]; !ok {
		return domain.ErrAgencyNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	s.agencies[a.ID] = *a
	return nil
}

func (s *Store) unitCount(stationID uuid.UUID) int {
	n := 0
	for _, u := range s.units {
		if u.Active && u.StationID != nil && *u.StationID == stationID {
			n++
		}
	}
	return n
}

func (s *Store) ListStations(_ context.Context, agencyID uuid.UUID) ([]models.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Station
	for _, st := range s.stations {
		if st.AgencyID == agencyID {
			st.UnitCount = s.unitCount(st.ID)
			out = append(out, st)
		}
	}
	slices.SortFunc(out, func(a, b models.Station) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) GetStation(_ context.Context, agencyID, id uuid.UUID) (*models.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stations[id]
	if !ok || st.AgencyID != agencyID {
		return nil, domain.ErrStationNotFound
	}
	st.UnitCount = s.unitCount(st.ID)
	return &st, nil
}

func (s *Store) CreateStation(_ context.Context, st *models.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	st.CreatedAt, st.UpdatedAt = now, now
	s.stations[st.ID] = *st
	return nil
}

func (s *Store) UpdateStation(_ context.Context, st *models.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.stations[st.ID]
	if !ok || cur.AgencyID != st.AgencyID {
		return domain.ErrStationNotFound
	}
	st.UpdatedAt = time.Now().UTC()
	s.stations[st.ID] = *st
	return nil
}

func (s *Store) withStationName(u models.Unit) models.Unit {
	u.StationName = ""
	if u.StationID != nil {
		u.StationName = s.stations[*u.StationID].Name
	}
	return u
}

func (s *Store) ListUnits(_ context.Context, agencyID uuid.UUID) ([]models.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Unit
	for _, u := range s.units {
		if u.AgencyID == agencyID {
			out = append(out, s.withStationName(u))
		}
	}
	slices.SortFunc(out, func(a, b models.Unit) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) GetUnit(_ context.Context, agencyID, id uuid.UUID) (*models.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[id]
	if !ok || u.AgencyID != agencyID {
		return nil, domain.ErrUnitNotFound
	}
	u = s.withStationName(u)
	return &u, nil
}

func (s *Store) CreateUnit(_ context.Context, u *models.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.units[u.ID] = *u
	return nil
}

func (s *Store) UpdateUnit(_ context.Context, u *models.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.units[u.ID]
	if !ok || cur.AgencyID != u.AgencyID {
		return domain.ErrUnitNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	s.units[u.ID] = *u
	return nil
}
