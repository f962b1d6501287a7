package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conveyal/r5-sub005/cache"
	"github.com/conveyal/r5-sub005/channel"
	"github.com/conveyal/r5-sub005/grid"
	"github.com/conveyal/r5-sub005/types"
	"github.com/conveyal/r5-sub005/worker"
)

// A string-keyed loader satisfies the Preloader seam directly.
var _ worker.Preloader = (*cache.Loader[string, int])(nil)

func singlePointTask() *types.Task {
	return &types.Task{
		Kind:      types.TaskSinglePoint,
		NetworkID: "net-1",
		Origin:    types.Cell{X: 1, Y: 1},
	}
}

func TestWorker_HandleSinglePointTask(t *testing.T) {
	ctx := context.Background()

	surfaceHeader := grid.Header{Zoom: 9, West: 100, North: 200, Width: 2, Height: 2, ValuesPerCell: 1}
	surfaceValues := []int32{10, 20, 30, 40}

	t.Run("ready network yields an encoded surface", func(t *testing.T) {
		computer := &fakeComputer{header: surfaceHeader, values: surfaceValues}
		w, err := worker.New(computer, channel.NewMemory(), &fakePreloader{status: cache.StatusPresent})
		require.NoError(t, err)

		res := w.HandleSinglePointTask(ctx, singlePointTask())
		require.Equal(t, worker.SinglePointReady, res.Status)
		require.NoError(t, res.Err)

		header, values, err := grid.Decode(res.Grid)
		require.NoError(t, err)
		require.Equal(t, surfaceHeader, header)
		require.Equal(t, surfaceValues, values)
	})

	t.Run("loading network yields a retry hint instead of blocking", func(t *testing.T) {
		for _, status := range []cache.Status{cache.StatusWaiting, cache.StatusBuilding} {
			w, err := worker.New(&fakeComputer{}, channel.NewMemory(), &fakePreloader{status: status},
				worker.WithRetryAfter(10*time.Second))
			require.NoError(t, err)

			res := w.HandleSinglePointTask(ctx, singlePointTask())
			require.Equal(t, worker.SinglePointNotReady, res.Status)
			require.Equal(t, 10*time.Second, res.RetryAfter)
			require.Empty(t, res.Grid)
		}
	})

	t.Run("failed network load is a hard error", func(t *testing.T) {
		loadErr := errors.New("corrupt bundle")
		w, err := worker.New(&fakeComputer{}, channel.NewMemory(),
			&fakePreloader{status: cache.StatusError, err: loadErr})
		require.NoError(t, err)

		res := w.HandleSinglePointTask(ctx, singlePointTask())
		require.Equal(t, worker.SinglePointError, res.Status)
		require.ErrorIs(t, res.Err, loadErr)
	})

	t.Run("surface computation failure is a hard error", func(t *testing.T) {
		computeErr := errors.New("origin outside network")
		w, err := worker.New(&fakeComputer{surfaceErr: computeErr}, channel.NewMemory(),
			&fakePreloader{status: cache.StatusPresent})
		require.NoError(t, err)

		res := w.HandleSinglePointTask(ctx, singlePointTask())
		require.Equal(t, worker.SinglePointError, res.Status)
		require.ErrorIs(t, res.Err, computeErr)
	})

	t.Run("rejects regional tasks", func(t *testing.T) {
		w, err := worker.New(&fakeComputer{}, channel.NewMemory(), &fakePreloader{status: cache.StatusPresent})
		require.NoError(t, err)

		task := singlePointTask()
		task.Kind = types.TaskRegional
		res := w.HandleSinglePointTask(ctx, task)
		require.Equal(t, worker.SinglePointError, res.Status)
		require.ErrorIs(t, res.Err, worker.ErrWrongTaskKind)
	})

	t.Run("missing preloader is a hard error", func(t *testing.T) {
		w, err := worker.New(&fakeComputer{}, channel.NewMemory(), nil)
		require.NoError(t, err)

		res := w.HandleSinglePointTask(ctx, singlePointTask())
		require.Equal(t, worker.SinglePointError, res.Status)
	})
}

func TestWorker_SinglePointWithLoader(t *testing.T) {
	ctx := context.Background()

	loader := cache.NewLoader(func(_ context.Context, _ string) (int, error) {
		return 1, nil
	})
	defer loader.Close()

	header := grid.Header{Zoom: 9, West: 0, North: 0, Width: 1, Height: 1, ValuesPerCell: 1}
	w, err := worker.New(&fakeComputer{header: header, values: []int32{5}}, channel.NewMemory(), loader)
	require.NoError(t, err)

	// First request kicks off the build; the caller polls until it settles.
	var res worker.SinglePointResult
	require.Eventually(t, func() bool {
		res = w.HandleSinglePointTask(ctx, singlePointTask())

		return res.Status != worker.SinglePointNotReady
	}, 2*time.Second, time.Millisecond)

	require.Equal(t, worker.SinglePointReady, res.Status)
	require.NotEmpty(t, res.Grid)
}
