package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Metadata keys set on every ledger event message.
const (
	MetaEventID      = "event_id"
	MetaEventVersion = "event_version"
)

// Envelope is implemented by events that carry their own ID and schema
// version. Their ID becomes the message UUID so redeliveries are traceable.
type Envelope interface {
	EnvelopeID() uuid.UUID
	EnvelopeVersion() int
}

// NewMessage encodes event as JSON and injects the OTel trace context of ctx
// into the message metadata.
func NewMessage(ctx context.Context, event any) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("events: encode %T: %w", event, err)
	}

	id := watermill.NewUUID()
	env, ok := event.(Envelope)
	if ok && env.EnvelopeID() != uuid.Nil {
		id = env.EnvelopeID().String()
	}
	msg := message.NewMessage(id, payload)
	msg.SetContext(ctx)
	if ok {
		msg.Metadata.Set(MetaEventID, id)
		msg.Metadata.Set(MetaEventVersion, strconv.Itoa(env.EnvelopeVersion()))
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
	return msg, nil
}

// Decode unmarshals the JSON payload of msg into a T.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("events: decode %T from message %s: %w", v, msg.UUID, err)
	}
	return v, nil
}

// traceContext restores the publisher's trace from msg metadata onto ctx.
func traceContext(ctx context.Context, msg *message.Message) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		carrier[k] = v
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// Publisher publishes JSON-encoded events to a Watermill publisher.
type Publisher struct {
	pub message.Publisher
}

// NewPublisher wraps a raw Watermill publisher.
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

func (p *Publisher) Publish(ctx context.Context, topic string, event any) error {
	msg, err := NewMessage(ctx, event)
	if err != nil {
		return err
	}
	if err := p.pub.Publish(topic, msg); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}
