package types

import (
	"fmt"

	"github.com/google/uuid"
)

// Cell addresses one pixel of a destination grid. X counts columns from the
// west edge, Y counts rows from the north edge.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Job describes one multi-origin analysis whose per-origin results are
// assembled into a single output grid.
//
// For gridded jobs (OriginCells nil) every pixel of the Width x Height grid is
// an origin, and task ID t maps to cell (t % Width, t / Width) in row-major
// order. For non-gridded jobs OriginCells maps each task ID to an explicit
// pixel, and the task count is len(OriginCells).
//
// A Job is created when an analysis is submitted, mutated only by its
// assembler, and evicted from the registry on completion or cancellation.
type Job struct {
	// ID uniquely identifies the job. See NewJobID.
	ID string `json:"jobId" yaml:"jobId"`

	// Zoom is the web mercator zoom level of the destination grid.
	Zoom int `json:"zoom" yaml:"zoom"`

	// West and North are the pixel offsets of the grid's edges from the
	// left and top edges of the world at this zoom level.
	West  int `json:"west" yaml:"west"`
	North int `json:"north" yaml:"north"`

	// Width and Height are the grid dimensions in pixels.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// ValuesPerCell is the number of statistical samples stored per origin,
	// e.g. travel time percentiles or percentile x cutoff accessibility cells.
	ValuesPerCell int `json:"valuesPerCell" yaml:"valuesPerCell"`

	// OriginCells optionally maps task IDs to explicit grid cells for jobs
	// whose origins are a point list rather than every pixel of the grid.
	OriginCells []Cell `json:"originCells,omitempty" yaml:"originCells,omitempty"`
}

// TaskCount returns the number of distinct tasks (origins) the job expects
// results for.
func (j *Job) TaskCount() int {
	if len(j.OriginCells) > 0 {
		return len(j.OriginCells)
	}

	return j.Width * j.Height
}

// CellForTask maps a task ID to its grid cell.
//
// Returns ErrTaskOutOfRange if taskID is not in [0, TaskCount()).
func (j *Job) CellForTask(taskID int) (Cell, error) {
	if taskID < 0 || taskID >= j.TaskCount() {
		return Cell{}, fmt.Errorf("%w: task %d of %d in job %s", ErrTaskOutOfRange, taskID, j.TaskCount(), j.ID)
	}
	if len(j.OriginCells) > 0 {
		return j.OriginCells[taskID], nil
	}

	return Cell{X: taskID % j.Width, Y: taskID / j.Width}, nil
}

// Validate checks structural validity of the job definition.
//
// The grid capacity limit (31-bit addressable output) is enforced separately
// when the assembler allocates the grid buffer, before the job is registered.
func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("%w: job ID is required", ErrInvalidJob)
	}
	if j.Width <= 0 || j.Height <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive, got %dx%d", ErrInvalidJob, j.Width, j.Height)
	}
	if j.ValuesPerCell <= 0 {
		return fmt.Errorf("%w: valuesPerCell must be positive, got %d", ErrInvalidJob, j.ValuesPerCell)
	}
	for i, c := range j.OriginCells {
		if c.X < 0 || c.X >= j.Width || c.Y < 0 || c.Y >= j.Height {
			return fmt.Errorf("%w: origin cell %d (%d,%d) outside %dx%d grid", ErrInvalidJob, i, c.X, c.Y, j.Width, j.Height)
		}
	}

	return nil
}

// NewJobID returns a fresh unique job identifier.
func NewJobID() string {
	return uuid.NewString()
}

// GridKey derives the deterministic blob-store key for a job's assembled
// output grid. Reprocessing the same job overwrites the same key.
func GridKey(jobID string) string {
	return jobID + ".access"
}

// PathsKey derives the deterministic blob-store key for a single origin's
// path-detail side file.
func PathsKey(jobID string, taskID int) string {
	return fmt.Sprintf("%s/paths/%d.csv", jobID, taskID)
}
