package channel_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conveyal/r5-sub005/channel"
	assemblytest "github.com/conveyal/r5-sub005/testing"
	"github.com/conveyal/r5-sub005/types"
)

func newTestNATS(t *testing.T, cfg channel.NATSConfig) *channel.NATS {
	t.Helper()

	_, nc := assemblytest.StartEmbeddedNATS(t)
	ch, err := channel.NewNATS(t.Context(), nc, cfg)
	require.NoError(t, err)

	return ch
}

func TestNATSPublishFetchAck(t *testing.T) {
	ctx := context.Background()
	ch := newTestNATS(t, channel.NATSConfig{})

	require.NoError(t, ch.Publish(ctx, "job-1", []byte("result-0")))
	require.NoError(t, ch.Publish(ctx, "job-1", []byte("result-1")))

	msgs, err := ch.Fetch(ctx, 10, 2*time.Second)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "job-1", msgs[0].Attribute(types.AttrJobID))
	require.Equal(t, []byte("result-0"), msgs[0].Body())
	require.NotEmpty(t, msgs[0].ID())
	require.NotEqual(t, msgs[0].ID(), msgs[1].ID())

	require.NoError(t, ch.Ack(ctx, msgs))

	// Acked messages leave the work queue for good.
	msgs, err = ch.Fetch(ctx, 10, 200*time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestNATSRedeliversUnacked(t *testing.T) {
	ctx := context.Background()
	ch := newTestNATS(t, channel.NATSConfig{AckWait: time.Second})

	require.NoError(t, ch.Publish(ctx, "job-1", []byte("payload")))

	first, err := ch.Fetch(ctx, 1, 2*time.Second)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Never acked, so the message reappears after the ack deadline.
	var second []types.Message
	require.Eventually(t, func() bool {
		msgs, ferr := ch.Fetch(ctx, 1, 300*time.Millisecond)
		if ferr != nil || len(msgs) == 0 {
			return false
		}
		second = msgs

		return true
	}, 10*time.Second, 100*time.Millisecond)

	require.Equal(t, first[0].ID(), second[0].ID())
	require.Equal(t, first[0].Body(), second[0].Body())
	require.NoError(t, ch.Ack(ctx, second))
}

func TestNATSFetchTimesOutEmpty(t *testing.T) {
	ch := newTestNATS(t, channel.NATSConfig{})

	msgs, err := ch.Fetch(context.Background(), 10, 200*time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestNATSFetchRespectsCanceledContext(t *testing.T) {
	ch := newTestNATS(t, channel.NATSConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ch.Fetch(ctx, 10, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}
