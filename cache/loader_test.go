package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoaderGet(t *testing.T) {
	t.Run("first get enqueues a build and later gets see the value", func(t *testing.T) {
		loader := NewLoader(func(_ context.Context, key string) (int, error) {
			return len(key), nil
		})
		defer loader.Close()

		first := loader.Get("network-1")
		require.Contains(t, []Status{StatusWaiting, StatusBuilding, StatusPresent}, first.Status)

		require.Eventually(t, func() bool {
			return loader.Get("network-1").Status == StatusPresent
		}, 2*time.Second, time.Millisecond)

		state := loader.Get("network-1")
		require.Equal(t, 9, state.Value)
		require.NoError(t, state.Err)
	})

	t.Run("build error sticks to the key", func(t *testing.T) {
		buildErr := errors.New("corrupt bundle")
		var calls atomic.Int32
		loader := NewLoader(func(_ context.Context, _ string) (int, error) {
			calls.Add(1)

			return 0, buildErr
		})
		defer loader.Close()

		loader.Get("network-1")
		require.Eventually(t, func() bool {
			return loader.Get("network-1").Status == StatusError
		}, 2*time.Second, time.Millisecond)

		state := loader.Get("network-1")
		require.ErrorIs(t, state.Err, buildErr)
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("concurrent gets share a single build", func(t *testing.T) {
		var calls atomic.Int32
		release := make(chan struct{})
		loader := NewLoader(func(_ context.Context, key string) (string, error) {
			calls.Add(1)
			<-release

			return key, nil
		})
		defer loader.Close()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				loader.Get("network-1")
			}()
		}
		wg.Wait()
		close(release)

		require.Eventually(t, func() bool {
			return loader.Get("network-1").Status == StatusPresent
		}, 2*time.Second, time.Millisecond)
		require.Equal(t, int32(1), calls.Load())
	})
}

func TestLoaderStatus(t *testing.T) {
	buildErr := errors.New("no such network")
	loader := NewLoader(func(_ context.Context, key string) (int, error) {
		if key == "bad" {
			return 0, buildErr
		}

		return 1, nil
	})
	defer loader.Close()

	status, err := loader.Status("good")
	require.NoError(t, err)
	require.Contains(t, []Status{StatusWaiting, StatusBuilding, StatusPresent}, status)

	require.Eventually(t, func() bool {
		s, _ := loader.Status("good")

		return s == StatusPresent
	}, 2*time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		s, _ := loader.Status("bad")

		return s == StatusError
	}, 2*time.Second, time.Millisecond)

	_, err = loader.Status("bad")
	require.ErrorIs(t, err, buildErr)
}

func TestLoaderEvict(t *testing.T) {
	var calls atomic.Int32
	loader := NewLoader(func(_ context.Context, key string) (int, error) {
		return int(calls.Add(1)), nil
	})
	defer loader.Close()

	loader.Get("k")
	require.Eventually(t, func() bool {
		return loader.Get("k").Status == StatusPresent
	}, 2*time.Second, time.Millisecond)

	require.True(t, loader.Evict("k"))
	require.False(t, loader.Evict("k"))

	loader.Get("k")
	require.Eventually(t, func() bool {
		state := loader.Get("k")

		return state.Status == StatusPresent && state.Value == 2
	}, 2*time.Second, time.Millisecond)
}

func TestLoaderMaxEntries(t *testing.T) {
	loader := NewLoader(func(_ context.Context, key string) (string, error) {
		return key, nil
	}, WithMaxEntries(2))
	defer loader.Close()

	for _, key := range []string{"a", "b"} {
		loader.Get(key)
		require.Eventually(t, func() bool {
			return loader.Get(key).Status == StatusPresent
		}, 2*time.Second, time.Millisecond)
	}

	loader.Get("c")
	require.Eventually(t, func() bool {
		return loader.Len() <= 2
	}, 2*time.Second, time.Millisecond)
}

func TestLoaderCloseCancelsBuilds(t *testing.T) {
	started := make(chan struct{})
	loader := NewLoader(func(ctx context.Context, _ string) (int, error) {
		close(started)
		<-ctx.Done()

		return 0, ctx.Err()
	})

	loader.Get("k")
	<-started
	loader.Close()

	require.Eventually(t, func() bool {
		state := loader.Get("k")

		return state.Status == StatusError && errors.Is(state.Err, context.Canceled)
	}, 2*time.Second, time.Millisecond)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "waiting", StatusWaiting.String())
	require.Equal(t, "building", StatusBuilding.String())
	require.Equal(t, "present", StatusPresent.String())
	require.Equal(t, "error", StatusError.String())
}
