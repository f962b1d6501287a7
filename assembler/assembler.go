package assembler

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/conveyal/r5-sub005/grid"
	"github.com/conveyal/r5-sub005/internal/logging"
	"github.com/conveyal/r5-sub005/internal/metrics"
	"github.com/conveyal/r5-sub005/types"
	"github.com/zeebo/xxh3"
)

// Assembler accumulates one job's origin results into a grid buffer and
// publishes the encoded artifact when all distinct tasks have reported.
//
// All methods are safe for concurrent use. The grid buffer is exclusively
// owned by the Assembler and never exposed for external mutation.
type Assembler struct {
	job    types.Job
	total  int
	store  types.BlobStore
	status types.StatusStore

	logger   types.Logger
	metrics  types.MetricsCollector
	onRetire func(jobID string)

	mu         sync.Mutex
	buf        *grid.Buffer
	received   []uint64 // bitset over task IDs, checked before any grid write
	nComplete  int
	nErrored   int
	finalized  bool
	terminated bool

	started time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger.
func WithLogger(logger types.Logger) Option {
	return func(a *Assembler) { a.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(a *Assembler) { a.metrics = m }
}

// WithStatusStore sets the store receiving "received N of M" progress updates.
func WithStatusStore(s types.StatusStore) Option {
	return func(a *Assembler) { a.status = s }
}

// WithRetireFunc sets the callback invoked exactly once when the job leaves
// the active set: after the artifact is published, or after a finalization
// failure. The registry uses this to evict and terminate the assembler.
func WithRetireFunc(fn func(jobID string)) Option {
	return func(a *Assembler) { a.onRetire = fn }
}

// New constructs the assembler for one job and allocates its sentinel-filled
// grid buffer.
//
// Returns grid.ErrCapacityExceeded if the output grid would exceed 31-bit
// addressable space. This check is fatal and happens here, before the job can
// be registered and before any result traffic is accepted.
func New(job types.Job, store types.BlobStore, opts ...Option) (*Assembler, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	buf, err := grid.NewBuffer(grid.Header{
		Zoom:          int32(job.Zoom),
		West:          int32(job.West),
		North:         int32(job.North),
		Width:         int32(job.Width),
		Height:        int32(job.Height),
		ValuesPerCell: int32(job.ValuesPerCell),
	})
	if err != nil {
		return nil, fmt.Errorf("allocating grid for job %s: %w", job.ID, err)
	}

	a := &Assembler{
		job:      job,
		total:    job.TaskCount(),
		store:    store,
		buf:      buf,
		received: make([]uint64, (job.TaskCount()+63)/64),
		logger:   logging.NewNop(),
		metrics:  metrics.NewNop(),
		onRetire: func(string) {},
		started:  time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// HandleResult merges one origin result into the grid.
//
// Duplicate deliveries of an already-received task ID are logged and
// discarded before any grid write; the completion counter never
// double-counts. Results flagged with an error marker are counted toward
// completion but leave their cells at the unreachable sentinel.
//
// The call that brings the distinct-result count to the job's task count
// triggers serialization and persistence exactly once, no matter how many
// redundant deliveries follow.
func (a *Assembler) HandleResult(res *types.OriginResult) error {
	if err := res.Validate(&a.job); err != nil {
		return err
	}

	a.mu.Lock()
	if a.terminated {
		a.mu.Unlock()
		a.logger.Debug("result for terminated job discarded", "jobId", a.job.ID, "taskId", res.TaskID)

		return nil
	}
	if a.bitGet(res.TaskID) {
		a.mu.Unlock()
		a.logger.Debug("duplicate result discarded", "jobId", a.job.ID, "taskId", res.TaskID)
		a.metrics.RecordDuplicateResult(a.job.ID)

		return nil
	}
	a.bitSet(res.TaskID)
	a.nComplete++
	if res.Failed() {
		a.nErrored++
	} else {
		cell, err := a.job.CellForTask(res.TaskID)
		if err == nil {
			err = a.buf.WriteCell(cell.X, cell.Y, res.CellValues())
		}
		if err != nil {
			// Validate() makes this unreachable; keep the invariant visible.
			a.mu.Unlock()

			return fmt.Errorf("writing result for job %s task %d: %w", a.job.ID, res.TaskID, err)
		}
	}
	finalize := a.nComplete == a.total && !a.finalized
	if finalize {
		a.finalized = true
	}
	buf := a.buf
	received, errored := a.nComplete, a.nErrored
	a.mu.Unlock()

	if res.Failed() {
		a.logger.Warn("origin computation failed, counting toward completion",
			"jobId", a.job.ID, "taskId", res.TaskID, "error", res.Error)
		a.metrics.RecordOriginError(a.job.ID)
	}
	a.metrics.RecordResultReceived(a.job.ID)
	a.updateStatus(received, errored, false, false)

	if finalize {
		return a.finalize(buf, received, errored)
	}

	return nil
}

// finalize encodes, compresses, and persists the grid, then retires the job.
// Runs outside the mutex: all task IDs are marked received by the time the
// one-shot guard is claimed, so every later delivery is discarded as a
// duplicate and the buffer is quiescent.
func (a *Assembler) finalize(buf *grid.Buffer, received, errored int) error {
	data, err := buf.Encode()
	if err != nil {
		return a.fail(received, errored, fmt.Errorf("encoding grid for job %s: %w", a.job.ID, err))
	}

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(data); err == nil {
		err = zw.Close()
	}
	if err != nil {
		return a.fail(received, errored, fmt.Errorf("compressing grid for job %s: %w", a.job.ID, err))
	}

	key := types.GridKey(a.job.ID)
	if err := a.store.Put(context.Background(), key, compressed.Bytes()); err != nil {
		return a.fail(received, errored, fmt.Errorf("storing grid for job %s under %q: %w", a.job.ID, key, err))
	}

	a.logger.Info("job complete, artifact stored",
		"jobId", a.job.ID,
		"key", key,
		"rawBytes", len(data),
		"gzipBytes", compressed.Len(),
		"digest", fmt.Sprintf("%016x", xxh3.Hash(data)),
		"erroredOrigins", errored,
	)
	a.metrics.RecordJobCompleted(a.job.ID, time.Since(a.started).Seconds())
	a.updateStatus(received, errored, true, false)
	a.onRetire(a.job.ID)

	return nil
}

// fail marks the job failed and retires it. Finalization is not retried; the
// caller decides whether to rerun the job.
func (a *Assembler) fail(received, errored int, cause error) error {
	a.logger.Error("job failed during finalization", "jobId", a.job.ID, "error", cause)
	a.updateStatus(received, errored, false, true)
	a.onRetire(a.job.ID)

	return fmt.Errorf("%w: %w", types.ErrJobFailed, cause)
}

func (a *Assembler) updateStatus(received, errored int, complete, failed bool) {
	if a.status == nil {
		return
	}
	err := a.status.Update(context.Background(), types.JobStatus{
		JobID:    a.job.ID,
		Received: received,
		Total:    a.total,
		Errored:  errored,
		Complete: complete,
		Failed:   failed,
	})
	if err != nil {
		a.logger.Warn("failed to update job status", "jobId", a.job.ID, "error", err)
	}
}

// IsComplete reports whether results for all distinct task IDs have been
// received.
func (a *Assembler) IsComplete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.nComplete == a.total
}

// Progress returns how many distinct results have been received out of the
// expected total.
func (a *Assembler) Progress() (received, total int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.nComplete, a.total
}

// Terminate releases the grid buffer. Safe to call on an incomplete job and
// safe to call more than once; results arriving afterwards are discarded.
func (a *Assembler) Terminate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.terminated {
		return
	}
	a.terminated = true
	a.buf = nil
	a.logger.Debug("assembler terminated", "jobId", a.job.ID, "received", a.nComplete, "total", a.total)
}

func (a *Assembler) bitGet(i int) bool {
	return a.received[i/64]&(1<<uint(i%64)) != 0
}

func (a *Assembler) bitSet(i int) {
	a.received[i/64] |= 1 << uint(i%64)
}
