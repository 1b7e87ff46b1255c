package main

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/pkg/events"
	"github.com/ghuser/emssupply/pkg/logger"
	ledgerEvents "github.com/ghuser/emssupply/services/ledger/domain/events"
)

type summaryInvalidator interface {
	Invalidate(ctx context.Context, agencyID uuid.UUID) error
}

type orderAlerter interface {
	OrderReceived(ctx context.Context, agencyID uuid.UUID, orderNumber, status, locationType string, locationID uuid.UUID) error
}

// registerSubscribers wires all domain event handlers.
func registerSubscribers(ctx context.Context, a *app.Application, summary summaryInvalidator, alerter orderAlerter) error {
	handlers := map[string]events.Handler{
		ledgerEvents.TopicUsageRecorded: handleUsageRecorded(summary, a.Logger),
		ledgerEvents.TopicAdjusted:      handleAdjusted(summary, a.Logger),
		ledgerEvents.TopicOrderReceived: handleOrderReceived(summary, alerter, a.Logger),
	}

	topics := make([]string, 0, len(handlers))
	for topic, h := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, h)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// Handlers must be idempotent; EventBus retries up to 3 times on failure.

func handleUsageRecorded(summary summaryInvalidator, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.Decode[ledgerEvents.UsageRecordedEvent](msg)
		if err != nil {
			return err
		}
		invalidate(ctx, summary, log, evt.AgencyID, ledgerEvents.TopicUsageRecorded)
		return nil
	}
}

func handleAdjusted(summary summaryInvalidator, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.Decode[ledgerEvents.InventoryAdjustedEvent](msg)
		if err != nil {
			return err
		}
		invalidate(ctx, summary, log, evt.AgencyID, ledgerEvents.TopicAdjusted)
		return nil
	}
}

// handleOrderReceived drops the cached summary and raises the informational
// order_received alert. A failed alert insert is returned so the bus retries.
func handleOrderReceived(summary summaryInvalidator, alerter orderAlerter, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.Decode[ledgerEvents.OrderReceivedEvent](msg)
		if err != nil {
			return err
		}
		invalidate(ctx, summary, log, evt.AgencyID, ledgerEvents.TopicOrderReceived)

		if err := alerter.OrderReceived(ctx, evt.AgencyID, evt.OrderNumber, evt.Status, evt.LocationType, evt.LocationID); err != nil {
			return fmt.Errorf("order received alert for %s: %w", evt.OrderNumber, err)
		}
		log.InfoContext(ctx, "order received alert created",
			"agency_id", evt.AgencyID, "order_number", evt.OrderNumber)
		return nil
	}
}

// invalidate is best-effort; the summary cache also expires on its own.
func invalidate(ctx context.Context, summary summaryInvalidator, log logger.Logger, agencyID uuid.UUID, topic string) {
	if err := summary.Invalidate(ctx, agencyID); err != nil {
		log.WarnContext(ctx, "inventory summary invalidation failed",
			"agency_id", agencyID, "topic", topic, "error", err)
	}
}
