package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/conveyal/r5-sub005/types"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpMsg wraps an AMQP delivery as a types.Message.
type amqpMsg struct {
	d amqp.Delivery
}

func (m *amqpMsg) ID() string {
	return m.d.MessageId
}

func (m *amqpMsg) Body() []byte {
	return m.d.Body
}

func (m *amqpMsg) Attribute(name string) string {
	if v, ok := m.d.Headers[name].(string); ok {
		return v
	}

	return ""
}

// AMQP is a ResultChannel backed by a durable RabbitMQ queue consumed with
// manual acknowledgment. Unacknowledged deliveries are requeued by the broker
// when the consumer's connection drops.
type AMQP struct {
	ch         *amqp.Channel
	queue      string
	deliveries <-chan amqp.Delivery
}

// Compile-time assertion that AMQP implements ResultChannel.
var _ types.ResultChannel = (*AMQP)(nil)

// NewAMQP declares the durable queue and starts a manual-ack consumer on the
// provided channel. prefetch bounds unacknowledged deliveries in flight; use
// at least the consumer's batch size.
func NewAMQP(ch *amqp.Channel, queue string, prefetch int) (*AMQP, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declaring queue %q: %w", queue, err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("setting prefetch on %q: %w", queue, err)
	}
	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consuming %q: %w", queue, err)
	}

	return &AMQP{ch: ch, queue: queue, deliveries: deliveries}, nil
}

// Publish sends a result body to the queue with the job ID in a header.
func (c *AMQP) Publish(ctx context.Context, jobID string, body []byte) error {
	err := c.ch.PublishWithContext(ctx, "", c.queue, false, false, amqp.Publishing{
		MessageId:    uuid.NewString(),
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{types.AttrJobID: jobID},
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing result for job %s: %w", jobID, err)
	}

	return nil
}

// Fetch collects up to max deliveries, waiting at most wait for the first.
func (c *AMQP) Fetch(ctx context.Context, max int, wait time.Duration) ([]types.Message, error) {
	timeout := time.NewTimer(wait)
	defer timeout.Stop()

	var msgs []types.Message
	for len(msgs) < max {
		select {
		case <-ctx.Done():
			return msgs, ctx.Err()
		case <-timeout.C:
			return msgs, nil
		case d, ok := <-c.deliveries:
			if !ok {
				if len(msgs) > 0 {
					return msgs, nil
				}

				return nil, types.ErrChannelClosed
			}
			msgs = append(msgs, &amqpMsg{d: d})
		}
	}

	return msgs, nil
}

// Ack acknowledges routed deliveries individually.
func (c *AMQP) Ack(_ context.Context, msgs []types.Message) error {
	var firstErr error
	for _, m := range msgs {
		am, ok := m.(*amqpMsg)
		if !ok {
			continue
		}
		if err := am.d.Ack(false); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("acking message %s: %w", m.ID(), err)
		}
	}

	return firstErr
}
