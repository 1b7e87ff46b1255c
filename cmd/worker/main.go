package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/pkg/cache"
	"github.com/ghuser/emssupply/pkg/config"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/pkg/telemetry"
	"github.com/ghuser/emssupply/pkg/workflows"
	alertSvcs "github.com/ghuser/emssupply/services/alerts/application/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worker exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	// closeInfra closes the event bus, which waits up to 30s for in-flight handlers.
	a, closeInfra, err := app.Bootstrap(ctx, cfg, log, app.Options{Temporal: true})
	if err != nil {
		return err
	}
	defer closeInfra()

	alerts := alertSvcs.New(a)
	if err := registerSubscribers(ctx, a, cache.NewInventoryCache(a.Redis), alerts.Generator); err != nil {
		return fmt.Errorf("register subscribers: %w", err)
	}

	stopScheduler, err := startAlertScheduler(ctx, a, scanFunc(alerts.Generator))
	if err != nil {
		return fmt.Errorf("start alert scheduler: %w", err)
	}

	<-ctx.Done()
	log.Info("shutting down worker...")
	stopScheduler()
	log.Info("worker stopped")
	return nil
}

// scanFunc adapts the alert generator to the scheduler's scan signature.
func scanFunc(g *alertSvcs.Generator) workflows.ScanFunc {
	return func(ctx context.Context) (workflows.ScanSummary, error) {
		res, err := g.ScanAll(ctx)
		return workflows.ScanSummary(res), err
	}
}

// startAlertScheduler runs the daily alert scan in-process with cron, or as a
// Temporal cron workflow when ALERT_SCHEDULER=temporal.
func startAlertScheduler(ctx context.Context, a *app.Application, scan workflows.ScanFunc) (func(), error) {
	cfg := a.Config
	if cfg.AlertScheduler != config.SchedulerTemporal {
		c, err := workflows.StartCronScan(cfg.AlertSchedule, scan, a.Logger)
		if err != nil {
			return nil, err
		}
		return func() { <-c.Stop().Done() }, nil
	}

	w, err := a.TemporalClient.StartAlertScanWorker(&workflows.AlertScanActivities{Scan: scan, Log: a.Logger})
	if err != nil {
		return nil, err
	}
	if err := a.TemporalClient.ScheduleAlertScan(ctx, cfg.AlertSchedule); err != nil {
		w.Stop()
		return nil, err
	}
	a.Logger.Info("alert scan scheduled", "scheduler", "temporal", "schedule", cfg.AlertSchedule)
	return w.Stop, nil
}
