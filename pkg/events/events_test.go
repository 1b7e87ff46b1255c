package events

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/emssupply/pkg/logger"
)

func setupTracer(t *testing.T) *sdktrace.TracerProvider {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp
}

type stockEvent struct {
	ID       uuid.UUID `json:"event_id"`
	Ver      int       `json:"version"`
	SupplyID uuid.UUID `json:"supply_id"`
	Quantity int       `json:"quantity"`
}

func (e stockEvent) EnvelopeID() uuid.UUID { return e.ID }
func (e stockEvent) EnvelopeVersion() int  { return e.Ver }

// recordingPublisher captures published messages.
type recordingPublisher struct {
	topics []string
	msgs   []*message.Message
	err    error
}

func (p *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	if p.err != nil {
		return p.err
	}
	for _, m := range msgs {
		p.topics = append(p.topics, topic)
		p.msgs = append(p.msgs, m)
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestNewMessage_EnvelopeMetadata(t *testing.T) {
	evt := stockEvent{ID: uuid.New(), Ver: 2, SupplyID: uuid.New(), Quantity: 7}

	msg, err := NewMessage(context.Background(), evt)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if msg.UUID != evt.ID.String() {
		t.Errorf("message UUID = %s, want event ID %s", msg.UUID, evt.ID)
	}
	if got := msg.Metadata.Get(MetaEventID); got != evt.ID.String() {
		t.Errorf("event_id metadata = %q", got)
	}
	if got := msg.Metadata.Get(MetaEventVersion); got != "2" {
		t.Errorf("event_version metadata = %q, want 2", got)
	}

	back, err := Decode[stockEvent](msg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.SupplyID != evt.SupplyID || back.Quantity != 7 {
		t.Errorf("decoded %+v, want %+v", back, evt)
	}
}

func TestNewMessage_PlainPayload(t *testing.T) {
	msg, err := NewMessage(context.Background(), map[string]int{"quantity": 3})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if msg.UUID == "" {
		t.Error("expected a generated message UUID")
	}
	if msg.Metadata.Get(MetaEventID) != "" {
		t.Error("plain payloads carry no event_id")
	}
}

func TestNewMessage_UnencodablePayload(t *testing.T) {
	if _, err := NewMessage(context.Background(), make(chan int)); err == nil {
		t.Fatal("expected an encode error")
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode[stockEvent](message.NewMessage("m1", []byte("{")))
	if err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestTraceContext_RoundTrip(t *testing.T) {
	tp := setupTracer(t)
	ctx, span := tp.Tracer("test").Start(context.Background(), "record-usage")
	defer span.End()

	msg, err := NewMessage(ctx, stockEvent{ID: uuid.New(), Ver: 1})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if msg.Metadata.Get("traceparent") == "" {
		t.Fatal("traceparent not injected")
	}

	got := trace.SpanContextFromContext(traceContext(context.Background(), msg))
	if got.TraceID() != span.SpanContext().TraceID() {
		t.Errorf("trace ID = %s, want %s", got.TraceID(), span.SpanContext().TraceID())
	}
}

func TestPublisher_Publish(t *testing.T) {
	rec := &recordingPublisher{}
	evt := stockEvent{ID: uuid.New(), Ver: 1, Quantity: 4}

	if err := NewPublisher(rec).Publish(context.Background(), "inventory.adjusted", evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(rec.msgs) != 1 || rec.topics[0] != "inventory.adjusted" {
		t.Fatalf("published %v on %v", rec.msgs, rec.topics)
	}

	rec.err = errors.New("tx aborted")
	if err := NewPublisher(rec).Publish(context.Background(), "inventory.adjusted", evt); !errors.Is(err, rec.err) {
		t.Errorf("expected wrapped publish error, got %v", err)
	}
}

func noWarn(context.Context, string, ...any) {}

func TestRetryPolicy_Run(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}
	msg := message.NewMessage("id", nil)

	t.Run("first attempt succeeds", func(t *testing.T) {
		calls := 0
		err := policy.run(context.Background(), msg, func(context.Context, *message.Message) error {
			calls++
			return nil
		}, noWarn)
		if err != nil || calls != 1 {
			t.Errorf("err=%v calls=%d, want nil and 1", err, calls)
		}
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := policy.run(context.Background(), msg, func(context.Context, *message.Message) error {
			calls++
			if calls < 3 {
				return errors.New("redis unavailable")
			}
			return nil
		}, noWarn)
		if err != nil || calls != 3 {
			t.Errorf("err=%v calls=%d, want nil and 3", err, calls)
		}
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		permanent := errors.New("alert insert failed")
		calls := 0
		err := policy.run(context.Background(), msg, func(context.Context, *message.Message) error {
			calls++
			return permanent
		}, noWarn)
		if !errors.Is(err, permanent) {
			t.Errorf("expected wrapped handler error, got %v", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := RetryPolicy{Attempts: 3, BaseDelay: time.Hour}
		err := slow.run(ctx, msg, func(context.Context, *message.Message) error {
			return errors.New("fail")
		}, noWarn)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestStartForwarder_RequiresForwarderBus(t *testing.T) {
	bus := &EventBus{log: logger.NewWithWriter(io.Discard, "error")}
	if err := bus.StartForwarder(context.Background()); err == nil {
		t.Fatal("expected error on a non-forwarder bus")
	}
}
