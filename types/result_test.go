package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOriginResult_CellValues(t *testing.T) {
	t.Run("flattens travel time samples", func(t *testing.T) {
		res := OriginResult{TravelTimeValues: [][]int32{{1, 2}, {3}}}
		require.Equal(t, []int32{1, 2, 3}, res.CellValues())
	})

	t.Run("flattens accessibility values in destination, percentile, cutoff order", func(t *testing.T) {
		res := OriginResult{AccessibilityValues: [][][]int32{
			{{1, 2}, {3, 4}},
			{{5, 6}, {7, 8}},
		}}
		require.Equal(t, []int32{1, 2, 3, 4, 5, 6, 7, 8}, res.CellValues())
	})

	t.Run("empty result flattens to nothing", func(t *testing.T) {
		res := OriginResult{}
		require.Empty(t, res.CellValues())
	})
}

func TestOriginResult_Validate(t *testing.T) {
	job := Job{ID: "job-1", Width: 3, Height: 2, ValuesPerCell: 2}

	t.Run("accepts a matching result", func(t *testing.T) {
		res := OriginResult{JobID: "job-1", TaskID: 4, TravelTimeValues: [][]int32{{10, 20}}}
		require.NoError(t, res.Validate(&job))
	})

	t.Run("rejects results for another job", func(t *testing.T) {
		res := OriginResult{JobID: "job-2", TaskID: 0, TravelTimeValues: [][]int32{{10, 20}}}
		require.ErrorIs(t, res.Validate(&job), ErrMalformedResult)
	})

	t.Run("rejects out-of-range task IDs", func(t *testing.T) {
		res := OriginResult{JobID: "job-1", TaskID: 6, TravelTimeValues: [][]int32{{10, 20}}}
		require.ErrorIs(t, res.Validate(&job), ErrTaskOutOfRange)

		res.TaskID = -1
		require.ErrorIs(t, res.Validate(&job), ErrTaskOutOfRange)
	})

	t.Run("rejects value count mismatches", func(t *testing.T) {
		res := OriginResult{JobID: "job-1", TaskID: 0, TravelTimeValues: [][]int32{{10}}}
		require.ErrorIs(t, res.Validate(&job), ErrDimensionMismatch)
	})

	t.Run("failed results carry no values", func(t *testing.T) {
		res := OriginResult{JobID: "job-1", TaskID: 0, Error: "no path"}
		require.True(t, res.Failed())
		require.NoError(t, res.Validate(&job))
	})
}
