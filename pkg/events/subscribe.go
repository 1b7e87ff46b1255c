package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Handler processes one event. Returning an error triggers a retry.
type Handler func(ctx context.Context, msg *message.Message) error

// RetryPolicy bounds handler retries before a message is nacked.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy tries a handler three times, waiting 1s then 2s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

// Subscribe consumes topic in the background until ctx is cancelled or the
// bus closes. A handler that still fails after the retry policy is nacked and
// its error is sent on the returned channel, which callers must drain. The
// channel is closed when the subscription ends.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, 100)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)
		for msg := range ch {
			msgCtx := traceContext(ctx, msg)
			if err := q.retry.run(msgCtx, msg, handler, q.log.WarnContext); err != nil {
				msg.Nack()
				select {
				case errCh <- fmt.Errorf("%s message %s: %w", topic, msg.UUID, err):
				default:
					q.log.ErrorContext(msgCtx, "events: error channel full, dropping error", "topic", topic, "error", err)
				}
				continue
			}
			msg.Ack()
		}
	}()
	return errCh, nil
}

type warnFunc func(ctx context.Context, msg string, args ...any)

// run calls handler until it succeeds or the attempts are used up, doubling
// the delay after each failure.
func (p RetryPolicy) run(ctx context.Context, msg *message.Message, handler Handler, warn warnFunc) error {
	attempts := max(p.Attempts, 1)
	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		warn(ctx, "events: handler failed, retrying",
			"attempt", attempt, "max_attempts", attempts, "next_delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("events: handler failed after %d attempts: %w", attempts, err)
}
