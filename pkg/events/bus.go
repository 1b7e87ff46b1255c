// Package events carries ledger domain events over PostgreSQL using Watermill's
// SQL transport.
//
// The API process publishes inside the ledger's SQL transaction (TxPublisher),
// so an event exists exactly when the stock change it describes commits. With
// the forwarder enabled those rows land on an internal queue and a daemon
// moves them to their real topic. The worker subscribes with a shared consumer
// group, so each event is handled by one worker instance.
package events

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/emssupply/pkg/config"
	"github.com/ghuser/emssupply/pkg/logger"
)

const (
	shutdownTimeout = 30 * time.Second
	forwarderTopic  = "_ledger_outbox"
	forwarderGroup  = "ledger-forwarder"
)

var schema = watermillsql.DefaultPostgreSQLSchema{}

// EventBus publishes and consumes ledger events.
type EventBus struct {
	publisher    message.Publisher
	subscriber   *watermillsql.Subscriber
	fwd          *forwarder.Forwarder
	db           *sql.DB
	log          logger.Logger
	retry        RetryPolicy
	wg           sync.WaitGroup
	useForwarder bool
}

// NewEventBus is the worker-side bus: it publishes directly and subscribes
// with the "<service>-consumer" group.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, false)
}

// NewEventBusWithForwarder is the API-side bus. Published events go through
// the outbox queue; call StartForwarder to deliver them.
func NewEventBusWithForwarder(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, true)
}

func newEventBus(cfg *config.Config, log logger.Logger, useForwarder bool) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}
	wlog := newWatermillLogger(log)

	pub, err := newSQLPublisher(db, true, wlog)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sub, err := watermillsql.NewSubscriber(db, watermillsql.SubscriberConfig{
		SchemaAdapter:    schema,
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    cfg.ServiceName + "-consumer",
	}, wlog)
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}

	bus := &EventBus{
		publisher:    pub,
		subscriber:   sub,
		db:           db,
		log:          log,
		retry:        DefaultRetryPolicy,
		useForwarder: useForwarder,
	}
	bus.publisher = bus.wrap(pub)
	return bus, nil
}

func newSQLPublisher(db watermillsql.ContextExecutor, initSchema bool, wlog *watermillLogger) (message.Publisher, error) {
	pub, err := watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        schema,
		AutoInitializeSchema: initSchema,
	}, wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	return pub, nil
}

// wrap routes pub through the outbox queue when the forwarder is enabled.
func (q *EventBus) wrap(pub message.Publisher) message.Publisher {
	if !q.useForwarder {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
}

// StartForwarder runs the outbox daemon until ctx is cancelled or the bus is
// closed. It returns once the daemon is consuming.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.useForwarder {
		return fmt.Errorf("events: StartForwarder called on non-forwarder EventBus")
	}
	if q.fwd != nil {
		return fmt.Errorf("events: forwarder already started")
	}
	wlog := newWatermillLogger(q.log)

	outbox, err := watermillsql.NewSubscriber(q.db, watermillsql.SubscriberConfig{
		SchemaAdapter:    schema,
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    forwarderGroup,
	}, wlog)
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	target, err := newSQLPublisher(q.db, true, wlog)
	if err != nil {
		_ = outbox.Close()
		return err
	}
	fwd, err := forwarder.NewForwarder(outbox, target, wlog, forwarder.Config{ForwarderTopic: forwarderTopic})
	if err != nil {
		_ = target.Close()
		_ = outbox.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: ledger outbox forwarder started")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}
}

// TxPublisher returns a publisher whose writes belong to tx. The schema must
// already exist, which holds once the bus has started.
func (q *EventBus) TxPublisher(tx *sql.Tx) (*Publisher, error) {
	pub, err := newSQLPublisher(tx, false, newWatermillLogger(q.log))
	if err != nil {
		return nil, err
	}
	return &Publisher{pub: q.wrap(pub)}, nil
}

// Publish sends event on topic outside of any transaction.
func (q *EventBus) Publish(ctx context.Context, topic string, event any) error {
	return (&Publisher{pub: q.publisher}).Publish(ctx, topic, event)
}

// Ping checks the bus database connection.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and forwarder, waits up to 30s for in-flight
// handlers, then closes the publisher and the connection.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return q.db.Close()
}
