package cache

import (
	"context"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/conveyal/r5-sub005/internal/logging"
	"github.com/conveyal/r5-sub005/types"
)

// Status is the position of a requested value in its build cycle.
type Status int

const (
	// StatusWaiting means the build task is enqueued but not yet running.
	StatusWaiting Status = iota

	// StatusBuilding means the build task is currently running.
	StatusBuilding

	// StatusPresent means the value was built and is available.
	StatusPresent

	// StatusError means the build failed. The error sticks to the key; no
	// further build is attempted.
	StatusError
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusBuilding:
		return "building"
	case StatusPresent:
		return "present"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of a key's build cycle at the time Get was called.
// It is not updated in place; callers poll Get for fresh snapshots.
type State[V any] struct {
	Status Status
	Value  V
	Err    error
}

// BuildFunc computes the value for a key. It runs on a background goroutine;
// the context is canceled when the loader is closed.
type BuildFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Loader lazily builds values on first request and caches them. Exactly one
// build runs per key regardless of how many callers poll for it.
type Loader[K comparable, V any] struct {
	build  BuildFunc[K, V]
	states *xsync.Map[K, State[V]]
	logger types.Logger

	maxEntries int

	ctx    context.Context
	cancel context.CancelFunc
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	logger     types.Logger
	maxEntries int
}

// WithLoaderLogger sets the logger used for build lifecycle events.
func WithLoaderLogger(logger types.Logger) LoaderOption {
	return func(o *loaderOptions) {
		o.logger = logger
	}
}

// WithMaxEntries bounds the number of cached entries. When a new build would
// exceed the bound, a settled (present or failed) entry is evicted to make
// room. Zero means unbounded.
func WithMaxEntries(n int) LoaderOption {
	return func(o *loaderOptions) {
		o.maxEntries = n
	}
}

// NewLoader creates a loader that builds values with the supplied function.
func NewLoader[K comparable, V any](build BuildFunc[K, V], opts ...LoaderOption) *Loader[K, V] {
	o := loaderOptions{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Loader[K, V]{
		build:      build,
		states:     xsync.NewMap[K, State[V]](),
		logger:     o.logger,
		maxEntries: o.maxEntries,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Get returns the current state for key, enqueueing a build if this is the
// first request. The returned state may or may not contain the value; callers
// re-poll until it settles.
func (l *Loader[K, V]) Get(key K) State[V] {
	state, loaded := l.states.LoadOrStore(key, State[V]{Status: StatusWaiting})
	if loaded {
		return state
	}

	l.evictIfFull(key)
	go l.runBuild(key)

	return state
}

// Status reports the build status for key along with the build error when
// the status is StatusError. Like Get, the first call enqueues a build.
func (l *Loader[K, V]) Status(key K) (Status, error) {
	state := l.Get(key)

	return state.Status, state.Err
}

// Peek returns the state for key without triggering a build.
func (l *Loader[K, V]) Peek(key K) (State[V], bool) {
	return l.states.Load(key)
}

// Evict drops the cached entry for key. A later Get rebuilds it. Entries
// that are still waiting or building are left alone.
func (l *Loader[K, V]) Evict(key K) bool {
	state, ok := l.states.Load(key)
	if !ok || state.Status == StatusWaiting || state.Status == StatusBuilding {
		return false
	}
	l.states.Delete(key)

	return true
}

// Len returns the number of tracked entries, settled or not.
func (l *Loader[K, V]) Len() int {
	return l.states.Size()
}

// Close cancels any in-flight builds.
func (l *Loader[K, V]) Close() {
	l.cancel()
}

func (l *Loader[K, V]) runBuild(key K) {
	l.states.Store(key, State[V]{Status: StatusBuilding})
	l.logger.Debug("building cache entry", "key", key)

	value, err := l.build(l.ctx, key)
	if err != nil {
		l.logger.Error("cache build failed", "key", key, "error", err)
		l.states.Store(key, State[V]{Status: StatusError, Err: err})

		return
	}

	l.logger.Debug("cache entry ready", "key", key)
	l.states.Store(key, State[V]{Status: StatusPresent, Value: value})
}

// evictIfFull makes room for a new entry by dropping one settled entry.
// Entries still building are never evicted, so the map can transiently
// exceed the bound when every entry is in flight.
func (l *Loader[K, V]) evictIfFull(newKey K) {
	if l.maxEntries <= 0 || l.states.Size() <= l.maxEntries {
		return
	}

	var victim K
	found := false
	l.states.Range(func(k K, v State[V]) bool {
		if k == newKey || v.Status == StatusWaiting || v.Status == StatusBuilding {
			return true
		}
		victim = k
		found = true

		return false
	})
	if found {
		l.states.Delete(victim)
		l.logger.Debug("evicted cache entry", "key", victim)
	}
}
