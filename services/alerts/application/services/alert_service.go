package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/services/alerts/domain"
	"github.com/ghuser/emssupply/services/alerts/domain/models"
	"github.com/ghuser/emssupply/services/alerts/domain/repositories"
)

// AlertService is the agency-scoped alert inbox.
type AlertService struct {
	repo repositories.AlertRepository
}

func NewAlertService(repo repositories.AlertRepository) *AlertService {
	return &AlertService{repo: repo}
}

// List returns the caller's non-dismissed alerts, newest first.
func (s *AlertService) List(ctx context.Context, p auth.Principal, f models.Filter) ([]models.Alert, error) {
	if f.Severity != "" && !f.Severity.Valid() {
		return nil, fmt.Errorf("%w: unknown severity %q", domain.ErrInvalidFilter, f.Severity)
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidFilter, f.Type)
	}
	alerts, err := s.repo.List(ctx, p.AgencyID, f)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

func (s *AlertService) MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, p.AgencyID, id)
}

func (s *AlertService) Dismiss(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	return s.repo.Dismiss(ctx, p.AgencyID, id)
}

func (s *AlertService) MarkAllRead(ctx context.Context, p auth.Principal) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, p.AgencyID)
	if err != nil {
		return 0, fmt.Errorf("mark all alerts read: %w", err)
	}
	return n, nil
}
