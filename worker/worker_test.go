package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conveyal/r5-sub005/cache"
	"github.com/conveyal/r5-sub005/channel"
	"github.com/conveyal/r5-sub005/chaos"
	"github.com/conveyal/r5-sub005/grid"
	"github.com/conveyal/r5-sub005/types"
	"github.com/conveyal/r5-sub005/worker"
)

type fakeComputer struct {
	originErr  error
	surfaceErr error

	header grid.Header
	values []int32
}

func (c *fakeComputer) ComputeOrigin(_ context.Context, task *types.Task) (*types.OriginResult, error) {
	if c.originErr != nil {
		return nil, c.originErr
	}

	return &types.OriginResult{
		JobID:            task.JobID,
		TaskID:           task.TaskID,
		TravelTimeValues: [][]int32{{int32(task.TaskID), int32(task.TaskID) + 1}},
	}, nil
}

func (c *fakeComputer) ComputeSurface(_ context.Context, _ *types.Task) (grid.Header, []int32, error) {
	if c.surfaceErr != nil {
		return grid.Header{}, nil, c.surfaceErr
	}

	return c.header, c.values, nil
}

type fakePreloader struct {
	status cache.Status
	err    error
}

func (p *fakePreloader) Status(_ string) (cache.Status, error) {
	return p.status, p.err
}

func regionalTask(taskID int) *types.Task {
	return &types.Task{
		Kind:      types.TaskRegional,
		JobID:     "job-1",
		TaskID:    taskID,
		NetworkID: "net-1",
		Origin:    types.Cell{X: taskID, Y: 0},
	}
}

func fetchOne(t *testing.T, ch *channel.Memory) *types.OriginResult {
	t.Helper()

	msgs, err := ch.Fetch(context.Background(), 1, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "job-1", msgs[0].Attribute(types.AttrJobID))

	var res types.OriginResult
	require.NoError(t, json.Unmarshal(msgs[0].Body(), &res))

	return &res
}

func TestWorker_HandleRegionalTask(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes the computed result with the job attribute", func(t *testing.T) {
		ch := channel.NewMemory()
		w, err := worker.New(&fakeComputer{}, ch, nil)
		require.NoError(t, err)

		require.NoError(t, w.HandleRegionalTask(ctx, regionalTask(3)))

		res := fetchOne(t, ch)
		require.Equal(t, "job-1", res.JobID)
		require.Equal(t, 3, res.TaskID)
		require.False(t, res.Failed())
		require.Equal(t, []int32{3, 4}, res.CellValues())
	})

	t.Run("computation failure is delivered as a flagged result", func(t *testing.T) {
		ch := channel.NewMemory()
		w, err := worker.New(&fakeComputer{originErr: errors.New("no path")}, ch, nil)
		require.NoError(t, err)

		require.NoError(t, w.HandleRegionalTask(ctx, regionalTask(0)))

		res := fetchOne(t, ch)
		require.True(t, res.Failed())
		require.Contains(t, res.Error, "no path")
		require.Empty(t, res.CellValues())
	})

	t.Run("rejects non-regional tasks", func(t *testing.T) {
		ch := channel.NewMemory()
		w, err := worker.New(&fakeComputer{}, ch, nil)
		require.NoError(t, err)

		task := regionalTask(0)
		task.Kind = types.TaskSinglePoint
		require.ErrorIs(t, w.HandleRegionalTask(ctx, task), worker.ErrWrongTaskKind)
		require.Equal(t, 0, ch.Depth())
	})
}

func TestWorker_HandleRegionalTask_FaultInjection(t *testing.T) {
	ctx := context.Background()
	alwaysFail := chaos.WithDraw(func(int) int { return 0 })

	t.Run("dropTask discards silently before compute", func(t *testing.T) {
		ch := channel.NewMemory()
		w, err := worker.New(&fakeComputer{}, ch, nil, worker.WithChaosOptions(alwaysFail))
		require.NoError(t, err)

		task := regionalTask(0)
		task.Fault = &types.FaultSpec{Mode: types.FaultDropTask, FailurePercent: 100}
		require.NoError(t, w.HandleRegionalTask(ctx, task))
		require.Equal(t, 0, ch.Depth())
	})

	t.Run("error mode fails after compute without publishing", func(t *testing.T) {
		ch := channel.NewMemory()
		w, err := worker.New(&fakeComputer{}, ch, nil, worker.WithChaosOptions(alwaysFail))
		require.NoError(t, err)

		task := regionalTask(0)
		task.Fault = &types.FaultSpec{Mode: types.FaultError, FailurePercent: 100}
		require.ErrorIs(t, w.HandleRegionalTask(ctx, task), chaos.ErrInjected)
		require.Equal(t, 0, ch.Depth())
	})

	t.Run("exit mode terminates the process after compute", func(t *testing.T) {
		ch := channel.NewMemory()
		var exitCode int
		exited := false
		w, err := worker.New(&fakeComputer{}, ch, nil, worker.WithChaosOptions(
			alwaysFail,
			chaos.WithExit(func(code int) {
				exitCode = code
				exited = true
			}),
		))
		require.NoError(t, err)

		task := regionalTask(0)
		task.Fault = &types.FaultSpec{Mode: types.FaultExit, FailurePercent: 100}
		require.NoError(t, w.HandleRegionalTask(ctx, task))
		require.True(t, exited)
		require.Equal(t, 0, exitCode)
	})

	t.Run("tasks below startingAtTask are never failed", func(t *testing.T) {
		ch := channel.NewMemory()
		w, err := worker.New(&fakeComputer{}, ch, nil, worker.WithChaosOptions(alwaysFail))
		require.NoError(t, err)

		task := regionalTask(4)
		task.Fault = &types.FaultSpec{Mode: types.FaultDropTask, StartingAtTask: 5, FailurePercent: 100}
		require.NoError(t, w.HandleRegionalTask(ctx, task))
		require.Equal(t, 1, ch.Depth())
	})
}
