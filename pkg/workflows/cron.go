package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ghuser/emssupply/pkg/logger"
)

// scanTimeout bounds a single in-process scan.
const scanTimeout = 15 * time.Minute

// StartCronScan runs scan on spec (standard five-field cron, UTC) inside the
// worker process. Overlapping runs are skipped. Stop the returned scheduler
// with <-c.Stop().Done().
func StartCronScan(spec string, scan ScanFunc, log logger.Logger) (*cron.Cron, error) {
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(spec, scanJob(scan, log)); err != nil {
		return nil, fmt.Errorf("parse alert schedule %q: %w", spec, err)
	}
	c.Start()
	log.Info("alert scan scheduled", "schedule", spec)
	return c, nil
}

func scanJob(scan ScanFunc, log logger.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()
		summary, err := scan(ctx)
		if err != nil {
			log.ErrorContext(ctx, "scheduled alert scan failed", "error", err)
			return
		}
		log.InfoContext(ctx, "scheduled alert scan finished",
			"agencies", summary.Agencies, "failed", summary.Failed, "created", summary.Created)
	}
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
