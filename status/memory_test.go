package status

import (
	"context"
	"testing"

	"github.com/conveyal/r5-sub005/types"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	t.Run("unknown job", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		require.ErrorIs(t, err, types.ErrJobNotFound)
	})

	t.Run("upserts and reads back progress", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, types.JobStatus{JobID: "job-1", Received: 3, Total: 10}))
		require.NoError(t, store.Update(ctx, types.JobStatus{JobID: "job-1", Received: 10, Total: 10, Complete: true}))

		st, err := store.Get(ctx, "job-1")
		require.NoError(t, err)
		require.Equal(t, 10, st.Received)
		require.True(t, st.Complete)
	})
}
