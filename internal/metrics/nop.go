// Package metrics provides types.MetricsCollector implementations: a no-op
// collector and a Prometheus-backed collector.
package metrics

import "github.com/conveyal/r5-sub005/types"

// NopMetrics implements a no-op metrics collector. All metrics are discarded.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordResultReceived discards the metric.
func (n *NopMetrics) RecordResultReceived(_ string) {}

// RecordDuplicateResult discards the metric.
func (n *NopMetrics) RecordDuplicateResult(_ string) {}

// RecordOriginError discards the metric.
func (n *NopMetrics) RecordOriginError(_ string) {}

// RecordJobCompleted discards the metric.
func (n *NopMetrics) RecordJobCompleted(_ string, _ float64) {}

// RecordUnroutableMessage discards the metric.
func (n *NopMetrics) RecordUnroutableMessage(_ string) {}

// RecordChannelError discards the metric.
func (n *NopMetrics) RecordChannelError() {}

// SetActiveJobs discards the metric.
func (n *NopMetrics) SetActiveJobs(_ int) {}
