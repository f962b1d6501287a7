package channel

import (
	"context"
	"sync"
	"time"

	"github.com/conveyal/r5-sub005/types"
	"github.com/google/uuid"
)

// memoryMsg implements types.Message for the in-memory channel.
type memoryMsg struct {
	id    string
	body  []byte
	attrs map[string]string
}

func (m *memoryMsg) ID() string   { return m.id }
func (m *memoryMsg) Body() []byte { return m.body }

func (m *memoryMsg) Attribute(name string) string {
	return m.attrs[name]
}

// Memory is an in-process at-least-once channel for tests and single-process
// pipelines. Fetched messages stay in flight until acknowledged; Redeliver
// makes all in-flight messages visible again, simulating a visibility
// timeout.
type Memory struct {
	mu       sync.Mutex
	pending  []*memoryMsg
	inflight map[string]*memoryMsg
	closed   bool
}

// Compile-time assertion that Memory implements ResultChannel.
var _ types.ResultChannel = (*Memory)(nil)

// NewMemory creates an empty in-memory channel.
func NewMemory() *Memory {
	return &Memory{inflight: make(map[string]*memoryMsg)}
}

// Publish enqueues a result body tagged with the owning job ID.
func (c *Memory) Publish(ctx context.Context, jobID string, body []byte) error {
	return c.PublishWithAttributes(ctx, map[string]string{types.AttrJobID: jobID}, body)
}

// PublishWithAttributes enqueues a message with arbitrary attributes. Tests
// use it to produce malformed messages with no job attribute.
func (c *Memory) PublishWithAttributes(_ context.Context, attrs map[string]string, body []byte) error {
	cp := make([]byte, len(body))
	copy(cp, body)
	attrCopy := make(map[string]string, len(attrs))
	for k, v := range attrs {
		attrCopy[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return types.ErrChannelClosed
	}
	c.pending = append(c.pending, &memoryMsg{id: uuid.NewString(), body: cp, attrs: attrCopy})

	return nil
}

// Fetch returns up to max pending messages, blocking up to wait for the first
// one. Returned messages move to the in-flight set.
func (c *Memory) Fetch(ctx context.Context, max int, wait time.Duration) ([]types.Message, error) {
	deadline := time.Now().Add(wait)
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()

			return nil, types.ErrChannelClosed
		}
		if len(c.pending) > 0 {
			n := min(max, len(c.pending))
			batch := c.pending[:n]
			c.pending = c.pending[n:]
			msgs := make([]types.Message, 0, n)
			for _, m := range batch {
				c.inflight[m.id] = m
				msgs = append(msgs, m)
			}
			c.mu.Unlock()

			return msgs, nil
		}
		c.mu.Unlock()

		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

// Ack removes acknowledged messages from the in-flight set.
func (c *Memory) Ack(_ context.Context, msgs []types.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range msgs {
		delete(c.inflight, m.ID())
	}

	return nil
}

// Redeliver returns all in-flight messages to the pending queue, as the
// transport would after a visibility timeout. Returns how many moved.
func (c *Memory) Redeliver() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.inflight)
	for id, m := range c.inflight {
		c.pending = append(c.pending, m)
		delete(c.inflight, id)
	}

	return n
}

// Close makes subsequent operations fail with ErrChannelClosed.
func (c *Memory) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Depth returns the number of pending (visible) messages.
func (c *Memory) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

// InFlight returns the number of fetched but unacknowledged messages.
func (c *Memory) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.inflight)
}
