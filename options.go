package assembly

import "github.com/conveyal/r5-sub005/types"

// Option configures a Registry or Consumer with optional dependencies.
type Option func(*options)

// options holds optional shared configuration.
type options struct {
	logger  types.Logger
	metrics types.MetricsCollector
	status  types.StatusStore
}

// WithLogger sets a structured logger. Defaults to a no-op logger.
//
// Example:
//
//	logger := logging.NewSlogDefault()
//	reg := assembly.NewRegistry(store, assembly.WithLogger(logger))
func WithLogger(logger types.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector. Defaults to a no-op collector.
//
// Example:
//
//	m := metrics.NewPrometheus(nil, "assembly")
//	reg := assembly.NewRegistry(store, assembly.WithMetrics(m))
func WithMetrics(m types.MetricsCollector) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithStatusStore sets the store receiving per-job progress updates, making
// "received N of M" queryable outside this process. Defaults to none.
func WithStatusStore(s types.StatusStore) Option {
	return func(o *options) {
		o.status = s
	}
}
