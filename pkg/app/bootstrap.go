package app

import (
	"context"
	"fmt"

	"github.com/ghuser/emssupply/pkg/cache"
	"github.com/ghuser/emssupply/pkg/config"
	"github.com/ghuser/emssupply/pkg/database"
	"github.com/ghuser/emssupply/pkg/events"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/pkg/workflows"
)

// Options select the process-specific parts of Bootstrap.
type Options struct {
	// Forwarder publishes events through the outbox forwarder. The API sets it.
	Forwarder bool
	// Temporal dials Temporal when ALERT_SCHEDULER=temporal. The worker sets it.
	Temporal bool
}

// Bootstrap connects the database, the event bus, Redis and optionally
// Temporal. The returned close func releases them in reverse order; on error
// everything opened so far is already released.
func Bootstrap(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*Application, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(what string, err error) (*Application, func(), error) {
		closeAll()
		return nil, nil, fmt.Errorf("%s: %w", what, err)
	}

	a := &Application{Config: cfg, Logger: log}

	db, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return fail("connect database", err)
	}
	closers = append(closers, db.Close)
	a.Db = db
	log.Info("database pool connected")

	newBus := events.NewEventBus
	if opts.Forwarder {
		newBus = events.NewEventBusWithForwarder
	}
	bus, err := newBus(cfg, log)
	if err != nil {
		return fail("setup event bus", err)
	}
	closers = append(closers, func() {
		if err := bus.Close(); err != nil {
			log.Error("event bus close failed", "error", err)
		}
	})
	a.EventBus = bus

	rc, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fail("connect redis", err)
	}
	closers = append(closers, func() { _ = rc.Close() })
	a.Redis = rc
	log.Info("redis connected")

	if opts.Temporal && cfg.AlertScheduler == config.SchedulerTemporal {
		tc, err := workflows.NewTemporalClient(ctx, workflows.TemporalOptions{
			HostPort:  cfg.TemporalHostPort,
			Namespace: cfg.TemporalNamespace,
			TaskQueue: cfg.TemporalTaskQueue,
		}, log)
		if err != nil {
			return fail("connect temporal", err)
		}
		closers = append(closers, tc.Close)
		a.TemporalClient = tc
	}

	return a, closeAll, nil
}
