package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/alerts/domain"
	"github.com/ghuser/emssupply/services/alerts/domain/models"
	"github.com/ghuser/emssupply/services/alerts/domain/repositories"
	domainsvcs "github.com/ghuser/emssupply/services/alerts/domain/services"
)

// Metrics records generator outcomes.
type Metrics interface {
	AlertCreated(ctx context.Context, alertType string)
	ScanFailed(ctx context.Context)
}

type noopMetrics struct{}

func (noopMetrics) AlertCreated(context.Context, string) {}
func (noopMetrics) ScanFailed(context.Context)           {}

// ScanResult summarises one run over all agencies.
type ScanResult struct {
	Agencies int `json:"agencies"`
	Failed   int `json:"failed"`
	Created  int `json:"created"`
}

// Generator derives threshold alerts from current inventory. Deduplication is
// a check before insert, so two concurrent scans can still both insert.
type Generator struct {
	alerts  repositories.AlertRepository
	source  repositories.ScanSource
	metrics Metrics
	log     logger.Logger
	now     func() time.Time
}

// NewGenerator returns a Generator. metrics may be nil.
func NewGenerator(alerts repositories.AlertRepository, source repositories.ScanSource, metrics Metrics, log logger.Logger) *Generator {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Generator{
		alerts:  alerts,
		source:  source,
		metrics: metrics,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ScanAll scans every active agency. A failing agency is logged and counted
// and the run moves on; only failing to list agencies aborts.
func (g *Generator) ScanAll(ctx context.Context) (ScanResult, error) {
	agencies, err := g.source.ActiveAgencies(ctx)
	if err != nil {
		g.metrics.ScanFailed(ctx)
		return ScanResult{}, fmt.Errorf("list active agencies: %w", err)
	}

	var res ScanResult
	for _, scan := range agencies {
		res.Agencies++
		created, err := g.ScanAgency(ctx, scan)
		res.Created += created
		if err != nil {
			res.Failed++
			g.metrics.ScanFailed(ctx)
			g.log.ErrorContext(ctx, "alert scan failed for agency", "agency_id", scan.AgencyID, "error", err)
		}
	}

	g.log.InfoContext(ctx, "alert scan completed", "agencies", res.Agencies, "failed", res.Failed, "created", res.Created)
	return res, nil
}

// ScanAgencyByID scans one active agency on demand.
func (g *Generator) ScanAgencyByID(ctx context.Context, agencyID uuid.UUID) (int, error) {
	scan, ok, err := g.source.Agency(ctx, agencyID)
	if err != nil {
		return 0, fmt.Errorf("load agency: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: agency %s is not active", domain.ErrAlertNotFound, agencyID)
	}
	return g.ScanAgency(ctx, scan)
}

// ScanAgency raises expiration alerts for lots expiring between today and the
// agency's widest threshold, and stock alerts for every record under par.
// Alerts created before an error are kept.
func (g *Generator) ScanAgency(ctx context.Context, scan models.AgencyScan) (int, error) {
	if scan.Err != nil {
		return 0, scan.Err
	}
	now := g.now()
	today := now.UTC().Truncate(24 * time.Hour)
	until := now.AddDate(0, 0, scan.Horizon())

	created := 0
	expiring, err := g.source.Expiring(ctx, scan.AgencyID, today, until)
	if err != nil {
		return created, fmt.Errorf("expiring inventory: %w", err)
	}
	for _, c := range expiring {
		a, ok := domainsvcs.ExpirationAlert(scan.AgencyID, c, now)
		if !ok {
			continue
		}
		n, err := g.insertUnlessRecent(ctx, a)
		created += n
		if err != nil {
			return created, err
		}
	}

	low, err := g.source.BelowPar(ctx, scan.AgencyID)
	if err != nil {
		return created, fmt.Errorf("below par inventory: %w", err)
	}
	for _, c := range low {
		a, ok := domainsvcs.StockAlert(scan.AgencyID, c, now)
		if !ok {
			continue
		}
		n, err := g.insertUnlessRecent(ctx, a)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

func (g *Generator) insertUnlessRecent(ctx context.Context, a *models.Alert) (int, error) {
	if key, ok := a.Key(); ok {
		exists, err := g.alerts.ExistsSince(ctx, key, a.CreatedAt.Add(-domainsvcs.DedupWindow))
		if err != nil {
			return 0, fmt.Errorf("check recent alert: %w", err)
		}
		if exists {
			return 0, nil
		}
	}
	if err := g.alerts.Insert(ctx, a); err != nil {
		return 0, fmt.Errorf("insert %s alert: %w", a.Type, err)
	}
	g.metrics.AlertCreated(ctx, string(a.Type))
	return 1, nil
}

// OrderReceived records an informational alert for a delivery.
func (g *Generator) OrderReceived(ctx context.Context, agencyID uuid.UUID, orderNumber, status, locationType string, locationID uuid.UUID) error {
	if agencyID == uuid.Nil || orderNumber == "" {
		return errors.New("order received alert needs an agency and order number")
	}
	a := domainsvcs.OrderReceivedAlert(agencyID, orderNumber, status, locationType, locationID, g.now())
	_, err := g.insertUnlessRecent(ctx, a)
	return err
}
