package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/ghuser/emssupply/pkg/logger"
)

// TemporalOptions locates the Temporal namespace and task queue that host the
// alert scan.
type TemporalOptions struct {
	HostPort  string
	Namespace string
	TaskQueue string
}

// TemporalClient runs the scheduled alert scan on Temporal.
type TemporalClient struct {
	client    client.Client
	taskQueue string
	log       logger.Logger
}

// NewTemporalClient dials Temporal with OTel tracing on every workflow and
// activity. Call Close on shutdown.
func NewTemporalClient(ctx context.Context, opts TemporalOptions, log logger.Logger) (*TemporalClient, error) {
	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("emssupply/temporal"),
	})
	if err != nil {
		return nil, fmt.Errorf("create temporal otel interceptor: %w", err)
	}

	c, err := client.DialContext(ctx, client.Options{
		HostPort:     opts.HostPort,
		Namespace:    opts.Namespace,
		Logger:       temporallog.NewStructuredLogger(log.With("component", "temporal").ToSlog()),
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal server at %s: %w", opts.HostPort, err)
	}
	log.Info("temporal client connected", "host_port", opts.HostPort, "namespace", opts.Namespace, "task_queue", opts.TaskQueue)

	return &TemporalClient{client: c, taskQueue: opts.TaskQueue, log: log}, nil
}

// StartAlertScanWorker registers the scan workflow and activities on the task
// queue and starts polling. Stop the returned worker on shutdown.
func (tc *TemporalClient) StartAlertScanWorker(acts *AlertScanActivities) (worker.Worker, error) {
	w := worker.New(tc.client, tc.taskQueue, worker.Options{})
	w.RegisterWorkflow(AlertScanWorkflow)
	w.RegisterActivity(acts)
	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("start alert scan worker: %w", err)
	}
	return w, nil
}

// ScheduleAlertScan starts the alert scan as a cron workflow. A scan that is
// already scheduled is left in place, so every worker replica may call this.
func (tc *TemporalClient) ScheduleAlertScan(ctx context.Context, cronSpec string) error {
	_, err := tc.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                                       AlertScanWorkflowID,
		TaskQueue:                                tc.taskQueue,
		CronSchedule:                             cronSpec,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, AlertScanWorkflow)
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		tc.log.InfoContext(ctx, "alert scan already scheduled", "workflow_id", AlertScanWorkflowID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("schedule alert scan: %w", err)
	}
	return nil
}

func (tc *TemporalClient) Close() {
	tc.client.Close()
	tc.log.Info("temporal client closed")
}
