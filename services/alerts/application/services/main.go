package services

import (
	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/pkg/telemetry"
	"github.com/ghuser/emssupply/services/alerts/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the alerts context.
type Services struct {
	Alerts    *AlertService
	Generator *Generator
}

// New wires the alert inbox and generator with the Postgres repository.
func New(a *app.Application) *Services {
	repo := postgres.NewAlertRepository(a.Db)
	var metrics Metrics
	if m, err := telemetry.NewAlertMetrics(); err != nil {
		a.Logger.Warn("alert metrics unavailable", "error", err)
	} else {
		metrics = m
	}
	return &Services{
		Alerts:    NewAlertService(repo),
		Generator: NewGenerator(repo, repo, metrics, a.Logger),
	}
}
