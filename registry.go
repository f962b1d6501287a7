package assembly

import (
	"fmt"
	"sync"

	"github.com/conveyal/r5-sub005/assembler"
	"github.com/conveyal/r5-sub005/internal/logging"
	"github.com/conveyal/r5-sub005/internal/metrics"
	"github.com/conveyal/r5-sub005/types"
)

// DispatchStatus describes how the Registry routed (or failed to route) a
// result, so the Consumer can apply its own acknowledge/redeliver policy
// instead of catching errors.
type DispatchStatus int

const (
	// Dispatched means the result was handed to the job's assembler.
	Dispatched DispatchStatus = iota + 1

	// JobUnknown means no assembler is registered and the job was never
	// retired by this registry; the message may belong to a job that has not
	// been registered yet.
	JobUnknown

	// JobRetired means the job already completed or was cancelled; late
	// deliveries for it are expected and safe to discard.
	JobRetired
)

// Registry maps job IDs to their assemblers for the lifetime of each job.
//
// A single coarse lock guards the map: Register and Retire are the only
// writers, and the hot path is lookup-and-dispatch. Assemblers are looked up
// under the lock but run outside it, each behind its own per-job mutex.
type Registry struct {
	store   types.BlobStore
	status  types.StatusStore
	logger  types.Logger
	metrics types.MetricsCollector

	mu         sync.Mutex
	assemblers map[string]*assembler.Assembler
	retired    map[string]struct{}
}

// NewRegistry creates an empty registry persisting finished grids to store.
func NewRegistry(store types.BlobStore, opts ...Option) *Registry {
	o := options{
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Registry{
		store:      store,
		status:     o.status,
		logger:     o.logger,
		metrics:    o.metrics,
		assemblers: make(map[string]*assembler.Assembler),
		retired:    make(map[string]struct{}),
	}
}

// Register creates and registers the assembler for a newly submitted job.
//
// Fails with ErrCapacityExceeded (via assembler construction) for jobs whose
// grid would exceed the 31-bit limit, with ErrInvalidJob for malformed
// definitions, and with ErrJobExists or ErrJobRetired for reused IDs. On any
// failure nothing is registered and no result traffic is accepted.
func (r *Registry) Register(job types.Job) (*assembler.Assembler, error) {
	asm, err := assembler.New(job, r.store,
		assembler.WithLogger(r.logger),
		assembler.WithMetrics(r.metrics),
		assembler.WithStatusStore(r.status),
		assembler.WithRetireFunc(r.Retire),
	)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assemblers[job.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrJobExists, job.ID)
	}
	if _, ok := r.retired[job.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrJobRetired, job.ID)
	}
	r.assemblers[job.ID] = asm
	r.metrics.SetActiveJobs(len(r.assemblers))
	r.logger.Info("job registered", "jobId", job.ID, "tasks", job.TaskCount(),
		"grid", fmt.Sprintf("%dx%dx%d", job.Width, job.Height, job.ValuesPerCell))

	return asm, nil
}

// Dispatch routes a result to the assembler registered for jobID.
//
// Returns a DispatchStatus rather than an error for routing misses, so the
// caller can decide between acknowledging and leaving the message for
// redelivery. The returned error is non-nil only when the assembler rejected
// or failed to process a routed result.
func (r *Registry) Dispatch(jobID string, res *types.OriginResult) (DispatchStatus, error) {
	r.mu.Lock()
	asm, ok := r.assemblers[jobID]
	if !ok {
		_, wasRetired := r.retired[jobID]
		r.mu.Unlock()
		if wasRetired {
			return JobRetired, nil
		}

		return JobUnknown, nil
	}
	r.mu.Unlock()

	// HandleResult runs outside the registry lock; completion may call back
	// into Retire, which takes it.
	return Dispatched, asm.HandleResult(res)
}

// Retire removes a job's assembler and terminates it, releasing its buffers.
// Called on completion by the assembler itself, or directly for cancellation
// and operator cleanup. Tolerates unknown and already-retired IDs.
func (r *Registry) Retire(jobID string) {
	r.mu.Lock()
	asm, ok := r.assemblers[jobID]
	delete(r.assemblers, jobID)
	r.retired[jobID] = struct{}{}
	r.metrics.SetActiveJobs(len(r.assemblers))
	r.mu.Unlock()

	if !ok {
		return
	}
	asm.Terminate()
	r.logger.Info("job retired", "jobId", jobID)
}

// Progress reports how many distinct results a job has received out of its
// expected total. ok is false when the job is not currently registered.
func (r *Registry) Progress(jobID string) (received, total int, ok bool) {
	r.mu.Lock()
	asm, found := r.assemblers[jobID]
	r.mu.Unlock()
	if !found {
		return 0, 0, false
	}
	received, total = asm.Progress()

	return received, total, true
}

// ActiveJobs returns the number of registered assemblers.
func (r *Registry) ActiveJobs() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.assemblers)
}
