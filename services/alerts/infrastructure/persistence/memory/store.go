// Package memory is an in-process alert store used by service tests and
// local runs without Postgres.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/alerts/domain"
	"github.com/ghuser/emssupply/services/alerts/domain/models"
	"github.com/ghuser/emssupply/services/alerts/domain/repositories"
)

type agency struct {
	scan   models.AgencyScan
	active bool
	err    error
}

// Store keeps alerts and the inventory candidates the generator reads.
type Store struct {
	mu         sync.Mutex
	agencies   map[uuid.UUID]*agency
	order      []uuid.UUID
	candidates map[uuid.UUID][]models.Candidate
	alerts     []models.Alert
}

var (
	_ repositories.AlertRepository = (*Store)(nil)
	_ repositories.ScanSource      = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		agencies:   make(map[uuid.UUID]*agency),
		candidates: make(map[uuid.UUID][]models.Candidate),
	}
}

// AddAgency registers an agency with its thresholds.
func (s *Store) AddAgency(scan models.AgencyScan, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agencies[scan.AgencyID]; !ok {
		s.order = append(s.order, scan.AgencyID)
	}
	s.agencies[scan.AgencyID] = &agency{scan: scan, active: active}
}

// FailAgency makes every inventory read for agencyID return err.
func (s *Store) FailAgency(agencyID uuid.UUID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.agencies[agencyID]; ok {
		a.err = err
	}
}

// SetCandidates replaces the inventory records of an agency.
func (s *Store) SetCandidates(agencyID uuid.UUID, cs ...models.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[agencyID] = cs
}

// All returns every stored alert, dismissed ones included.
func (s *Store) All() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.alerts)
}

func (s *Store) ActiveAgencies(_ context.Context) ([]models.AgencyScan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AgencyScan
	for _, id := range s.order {
		if a := s.agencies[id]; a.active {
			out = append(out, a.scan)
		}
	}
	return out, nil
}

func (s *Store) Agency(_ context.Context, agencyID uuid.UUID) (models.AgencyScan, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agencies[agencyID]
	if !ok || !a.active {
		return models.AgencyScan{}, false, nil
	}
	return a.scan, true, nil
}

func (s *Store) Expiring(_ context.Context, agencyID uuid.UUID, from, until time.Time) ([]models.Candidate, error) {
	return s.filter(agencyID, func(c models.Candidate) bool {
		return c.ExpirationDate != nil && !c.ExpirationDate.Before(from) && !c.ExpirationDate.After(until)
	})
}

func (s *Store) BelowPar(_ context.Context, agencyID uuid.UUID) ([]models.Candidate, error) {
	return s.filter(agencyID, func(c models.Candidate) bool { return c.Quantity < c.ParLevel })
}

func (s *Store) filter(agencyID uuid.UUID, keep func(models.Candidate) bool) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.agencies[agencyID]; ok && a.err != nil {
		return nil, a.err
	}
	var out []models.Candidate
	for _, c := range s.candidates[agencyID] {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) List(_ context.Context, agencyID uuid.UUID, f models.Filter) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Alert
	for _, a := range s.alerts {
		switch {
		case a.AgencyID != agencyID, a.IsDismissed:
		case f.IsRead != nil && a.IsRead != *f.IsRead:
		case f.Severity != "" && a.Severity != f.Severity:
		case f.Type != "" && a.Type != f.Type:
		default:
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Alert) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Store) update(agencyID, id uuid.UUID, fn func(*models.Alert)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id && s.alerts[i].AgencyID == agencyID {
			fn(&s.alerts[i])
			return nil
		}
	}
	return domain.ErrAlertNotFound
}

func (s *Store) MarkRead(_ context.Context, agencyID, id uuid.UUID) error {
	return s.update(agencyID, id, func(a *models.Alert) { a.IsRead = true })
}

func (s *Store) Dismiss(_ context.Context, agencyID, id uuid.UUID) error {
	return s.update(agencyID, id, func(a *models.Alert) { a.IsDismissed = true })
}

func (s *Store) MarkAllRead(_ context.Context, agencyID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.alerts {
		if s.alerts[i].AgencyID == agencyID && !s.alerts[i].IsRead && !s.alerts[i].IsDismissed {
			s.alerts[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *Store) ExistsSince(_ context.Context, key models.DedupKey, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.ContainsFunc(s.alerts, func(a models.Alert) bool {
		k, ok := a.Key()
		return ok && k == key && a.CreatedAt.After(since)
	}), nil
}

func (s *Store) Insert(_ context.Context, a *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, *a)
	slices.SortStableFunc(s.alerts, func(x, y models.Alert) int { return cmp.Compare(x.CreatedAt.UnixNano(), y.CreatedAt.UnixNano()) })
	return nil
}
