package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/emssupply/pkg/logger"
)

// AlertScanWorkflowID is the fixed ID of the scheduled alert scan, so only
// one cron run exists per namespace.
const AlertScanWorkflowID = "alert-scan"

// ScanSummary is the outcome of one scan over all active agencies.
type ScanSummary struct {
	Agencies int `json:"agencies"`
	Failed   int `json:"failed"`
	Created  int `json:"created"`
}

// ScanFunc runs one alert scan over all active agencies.
type ScanFunc func(ctx context.Context) (ScanSummary, error)

// AlertScanActivities hosts the scan as a Temporal activity.
type AlertScanActivities struct {
	Scan ScanFunc
	Log  logger.Logger
}

func (a *AlertScanActivities) ScanAllAgencies(ctx context.Context) (ScanSummary, error) {
	summary, err := a.Scan(ctx)
	if err != nil {
		return ScanSummary{}, fmt.Errorf("scan all agencies: %w", err)
	}
	if a.Log != nil {
		a.Log.InfoContext(ctx, "scheduled alert scan finished",
			"agencies", summary.Agencies, "failed", summary.Failed, "created", summary.Created)
	}
	return summary, nil
}

// AlertScanWorkflow runs the scan activity once. Scheduling comes from the
// cron schedule set in ScheduleAlertScan.
func AlertScanWorkflow(ctx workflow.Context) (ScanSummary, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 30 * time.Second,
			MaximumAttempts: 3,
		},
	})

	var a *AlertScanActivities
	var summary ScanSummary
	if err := workflow.ExecuteActivity(ctx, a.ScanAllAgencies).Get(ctx, &summary); err != nil {
		return ScanSummary{}, err
	}
	return summary, nil
}
