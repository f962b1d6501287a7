package assembly_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	assembly "github.com/conveyal/r5-sub005"
	"github.com/conveyal/r5-sub005/blob"
	"github.com/conveyal/r5-sub005/types"
)

func testJob(id string, width, height, valuesPerCell int) types.Job {
	return types.Job{
		ID:            id,
		Zoom:          9,
		West:          100,
		North:         200,
		Width:         width,
		Height:        height,
		ValuesPerCell: valuesPerCell,
	}
}

func testResult(jobID string, taskID int, values ...int32) *types.OriginResult {
	return &types.OriginResult{
		JobID:            jobID,
		TaskID:           taskID,
		TravelTimeValues: [][]int32{values},
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Run("registers a valid job", func(t *testing.T) {
		reg := assembly.NewRegistry(blob.NewMemory())

		asm, err := reg.Register(testJob("job-1", 2, 2, 1))
		require.NoError(t, err)
		require.NotNil(t, asm)
		require.Equal(t, 1, reg.ActiveJobs())
	})

	t.Run("rejects duplicate job IDs", func(t *testing.T) {
		reg := assembly.NewRegistry(blob.NewMemory())

		_, err := reg.Register(testJob("job-1", 2, 2, 1))
		require.NoError(t, err)
		_, err = reg.Register(testJob("job-1", 2, 2, 1))
		require.ErrorIs(t, err, assembly.ErrJobExists)
	})

	t.Run("rejects retired job IDs", func(t *testing.T) {
		reg := assembly.NewRegistry(blob.NewMemory())

		_, err := reg.Register(testJob("job-1", 2, 2, 1))
		require.NoError(t, err)
		reg.Retire("job-1")

		_, err = reg.Register(testJob("job-1", 2, 2, 1))
		require.ErrorIs(t, err, assembly.ErrJobRetired)
	})

	t.Run("rejects invalid jobs without registering", func(t *testing.T) {
		reg := assembly.NewRegistry(blob.NewMemory())

		_, err := reg.Register(testJob("job-1", 0, 2, 1))
		require.ErrorIs(t, err, assembly.ErrInvalidJob)
		require.Equal(t, 0, reg.ActiveJobs())
	})

	t.Run("rejects grids over the 31-bit capacity limit", func(t *testing.T) {
		reg := assembly.NewRegistry(blob.NewMemory())

		_, err := reg.Register(testJob("job-1", 50000, 50000, 10))
		require.ErrorIs(t, err, assembly.ErrCapacityExceeded)
		require.Equal(t, 0, reg.ActiveJobs())
	})
}

func TestRegistry_Dispatch(t *testing.T) {
	t.Run("routes results to the registered assembler", func(t *testing.T) {
		reg := assembly.NewRegistry(blob.NewMemory())
		_, err := reg.Register(testJob("job-1", 2, 2, 1))
		require.NoError(t, err)

		status, err := reg.Dispatch("job-1", testResult("job-1", 0, 7))
		require.NoError(t, err)
		require.Equal(t, assembly.Dispatched, status)

		received, total, ok := reg.Progress("job-1")
		require.True(t, ok)
		require.Equal(t, 1, received)
		require.Equal(t, 4, total)
	})

	t.Run("reports unknown jobs without error", func(t *testing.T) {
		reg := assembly.NewRegistry(blob.NewMemory())

		status, err := reg.Dispatch("nope", testResult("nope", 0, 7))
		require.NoError(t, err)
		require.Equal(t, assembly.JobUnknown, status)
	})

	t.Run("reports retired jobs distinctly from unknown ones", func(t *testing.T) {
		reg := assembly.NewRegistry(blob.NewMemory())
		_, err := reg.Register(testJob("job-1", 2, 2, 1))
		require.NoError(t, err)
		reg.Retire("job-1")

		status, err := reg.Dispatch("job-1", testResult("job-1", 0, 7))
		require.NoError(t, err)
		require.Equal(t, assembly.JobRetired, status)
	})

	t.Run("surfaces assembler rejections", func(t *testing.T) {
		reg := assembly.NewRegistry(blob.NewMemory())
		_, err := reg.Register(testJob("job-1", 2, 2, 1))
		require.NoError(t, err)

		status, err := reg.Dispatch("job-1", testResult("job-1", 99, 7))
		require.Equal(t, assembly.Dispatched, status)
		require.ErrorIs(t, err, assembly.ErrTaskOutOfRange)
	})
}

func TestRegistry_CompletionRetiresJob(t *testing.T) {
	store := blob.NewMemory()
	reg := assembly.NewRegistry(store)
	_, err := reg.Register(testJob("job-1", 2, 1, 1))
	require.NoError(t, err)

	for taskID := 0; taskID < 2; taskID++ {
		status, err := reg.Dispatch("job-1", testResult("job-1", taskID, int32(taskID)))
		require.NoError(t, err)
		require.Equal(t, assembly.Dispatched, status)
	}

	// The finished grid is persisted and the job leaves the registry.
	_, err = store.Get(t.Context(), types.GridKey("job-1"))
	require.NoError(t, err)
	require.Equal(t, 0, reg.ActiveJobs())

	status, err := reg.Dispatch("job-1", testResult("job-1", 0, 0))
	require.NoError(t, err)
	require.Equal(t, assembly.JobRetired, status)
}

func TestRegistry_RetireIsIdempotent(t *testing.T) {
	reg := assembly.NewRegistry(blob.NewMemory())
	_, err := reg.Register(testJob("job-1", 2, 2, 1))
	require.NoError(t, err)

	reg.Retire("job-1")
	reg.Retire("job-1")
	reg.Retire("never-registered")
	require.Equal(t, 0, reg.ActiveJobs())

	_, _, ok := reg.Progress("job-1")
	require.False(t, ok)
}
