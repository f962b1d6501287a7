package types

import (
	"context"
	"time"
)

// AttrJobID is the message attribute naming the owning job. Messages lacking
// it are permanently malformed and are dropped by the consumer.
const AttrJobID = "jobId"

// Message is one delivery from a result channel.
type Message interface {
	// ID identifies this delivery for logging and acknowledgment.
	ID() string

	// Body returns the serialized OriginResult payload.
	Body() []byte

	// Attribute returns the named message attribute, or "" when absent.
	Attribute(name string) string
}

// ResultChannel is an at-least-once message transport carrying OriginResults
// from compute workers to the assembling process.
//
// The channel may duplicate, reorder, or delay messages; it never silently
// drops an unacknowledged message within its retention window. The assembler
// compensates for duplication, so implementations do not need exactly-once
// semantics.
//
// Implementations in the channel package adapt NATS JetStream and RabbitMQ;
// an in-memory implementation supports tests.
type ResultChannel interface {
	// Publish sends a serialized OriginResult tagged with the owning job ID.
	Publish(ctx context.Context, jobID string, body []byte) error

	// Fetch long-polls for up to max messages, waiting at most wait for the
	// first one. A nil or empty slice with a nil error means the wait elapsed
	// with nothing to deliver. Fetched messages stay in flight until
	// acknowledged; unacknowledged messages are redelivered after the
	// channel's redelivery timeout.
	Fetch(ctx context.Context, max int, wait time.Duration) ([]Message, error)

	// Ack acknowledges (deletes) successfully routed messages as a batch.
	Ack(ctx context.Context, msgs []Message) error
}
