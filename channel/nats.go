package channel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/conveyal/r5-sub005/internal/natsutil"
	"github.com/conveyal/r5-sub005/types"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Default NATS channel settings.
const (
	// DefaultNATSStream is the default JetStream stream name.
	DefaultNATSStream = "REGIONAL_RESULTS"

	// DefaultNATSSubject is the default subject results are published on.
	DefaultNATSSubject = "results.regional"

	// DefaultNATSConsumer is the default durable consumer name.
	DefaultNATSConsumer = "assembler"

	// DefaultNATSAckWait is how long a fetched message may stay unacknowledged
	// before JetStream redelivers it. Must comfortably exceed one poll cycle.
	DefaultNATSAckWait = 2 * time.Minute
)

// NATSConfig configures the JetStream-backed channel.
type NATSConfig struct {
	// Stream is the JetStream stream name. Default: DefaultNATSStream.
	Stream string `yaml:"stream"`

	// Subject is the subject results are published on. Default: DefaultNATSSubject.
	Subject string `yaml:"subject"`

	// Consumer is the durable consumer name. Default: DefaultNATSConsumer.
	Consumer string `yaml:"consumer"`

	// AckWait is the redelivery timeout for unacknowledged messages.
	// Default: DefaultNATSAckWait.
	AckWait time.Duration `yaml:"ackWait"`
}

func (cfg *NATSConfig) applyDefaults() {
	if cfg.Stream == "" {
		cfg.Stream = DefaultNATSStream
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultNATSSubject
	}
	if cfg.Consumer == "" {
		cfg.Consumer = DefaultNATSConsumer
	}
	if cfg.AckWait == 0 {
		cfg.AckWait = DefaultNATSAckWait
	}
}

// natsMsg wraps a JetStream message as a types.Message.
type natsMsg struct {
	msg jetstream.Msg
}

func (m *natsMsg) ID() string {
	if id := m.msg.Headers().Get(nats.MsgIdHdr); id != "" {
		return id
	}
	// Fall back to the stream sequence for messages published without an ID.
	if meta, err := m.msg.Metadata(); err == nil {
		return strconv.FormatUint(meta.Sequence.Stream, 10)
	}

	return ""
}

func (m *natsMsg) Body() []byte {
	return m.msg.Data()
}

func (m *natsMsg) Attribute(name string) string {
	return m.msg.Headers().Get(name)
}

// NATS is a ResultChannel backed by a JetStream work-queue stream with a
// durable, explicitly acknowledged pull consumer.
type NATS struct {
	js       jetstream.JetStream
	consumer jetstream.Consumer
	subject  string
}

// Compile-time assertion that NATS implements ResultChannel.
var _ types.ResultChannel = (*NATS)(nil)

// NewNATS creates the stream and durable consumer if they do not already
// exist and returns the channel.
func NewNATS(ctx context.Context, nc *nats.Conn, cfg NATSConfig) (*NATS, error) {
	if nc == nil {
		return nil, errors.New("NATS connection is required")
	}
	cfg.applyDefaults()

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject},
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("creating stream %q: %w", cfg.Stream, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:   cfg.Consumer,
		AckPolicy: jetstream.AckExplicitPolicy,
		AckWait:   cfg.AckWait,
	})
	if err != nil {
		return nil, fmt.Errorf("creating consumer %q: %w", cfg.Consumer, err)
	}

	return &NATS{js: js, consumer: consumer, subject: cfg.Subject}, nil
}

// Publish sends a result body on the configured subject with the job ID in
// a header and a fresh message ID.
func (c *NATS) Publish(ctx context.Context, jobID string, body []byte) error {
	msg := &nats.Msg{
		Subject: c.subject,
		Data:    body,
		Header: nats.Header{
			types.AttrJobID: []string{jobID},
			nats.MsgIdHdr:   []string{uuid.NewString()},
		},
	}
	if _, err := c.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("publishing result for job %s: %w", jobID, err)
	}

	return nil
}

// Fetch pulls up to max messages, waiting at most wait for the first one.
// An elapsed wait with no traffic returns an empty batch and a nil error.
func (c *NATS) Fetch(ctx context.Context, max int, wait time.Duration) ([]types.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch, err := c.consumer.Fetch(max, jetstream.FetchMaxWait(wait))
	if err != nil {
		if natsutil.IsFetchTimeout(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("fetching results: %w", err)
	}

	var msgs []types.Message
	for msg := range batch.Messages() {
		msgs = append(msgs, &natsMsg{msg: msg})
	}
	if err := batch.Error(); err != nil && !natsutil.IsFetchTimeout(err) {
		return msgs, fmt.Errorf("fetching results: %w", err)
	}

	return msgs, nil
}

// Ack acknowledges routed messages. Individual failures are collected; the
// affected messages will simply be redelivered.
func (c *NATS) Ack(_ context.Context, msgs []types.Message) error {
	var firstErr error
	for _, m := range msgs {
		nm, ok := m.(*natsMsg)
		if !ok {
			continue
		}
		if err := nm.msg.Ack(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("acking message %s: %w", m.ID(), err)
		}
	}

	return firstErr
}
