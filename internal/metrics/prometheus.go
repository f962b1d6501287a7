package metrics

import (
	"sync"

	"github.com/conveyal/r5-sub005/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are registered lazily on first use so constructing the collector
// never panics on duplicate registration in tests.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	resultsReceived  *prometheus.CounterVec
	duplicateResults *prometheus.CounterVec
	originErrors     *prometheus.CounterVec
	jobsCompleted    prometheus.Counter
	assemblySeconds  prometheus.Histogram
	unroutable       *prometheus.CounterVec
	channelErrors    prometheus.Counter
	activeJobs       prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed metrics collector.
//
// Uses prometheus.DefaultRegisterer when reg is nil and the namespace
// "assembly" when namespace is empty.
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "assembly"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.resultsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "results_received_total",
			Help:      "Distinct origin results accepted into grids, by job.",
		}, []string{"job"})

		p.duplicateResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "duplicate_results_total",
			Help:      "Redelivered results discarded by the received-set check, by job.",
		}, []string{"job"})

		p.originErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "origin_errors_total",
			Help:      "Results delivered with the error marker set, by job.",
		}, []string{"job"})

		p.jobsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "jobs_completed_total",
			Help:      "Jobs that finalized and published an output artifact.",
		})

		p.assemblySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "job_assembly_seconds",
			Help:      "Wall time from job registration to finalization.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		})

		p.unroutable = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "unroutable_messages_total",
			Help:      "Channel messages that could not be routed, by reason.",
		}, []string{"reason"})

		p.channelErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "channel_errors_total",
			Help:      "Transient channel connectivity failures.",
		})

		p.activeJobs = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      "active_jobs",
			Help:      "Currently registered assemblers.",
		})

		p.reg.MustRegister(
			p.resultsReceived, p.duplicateResults, p.originErrors,
			p.jobsCompleted, p.assemblySeconds, p.unroutable,
			p.channelErrors, p.activeJobs,
		)
	})
}

// RecordResultReceived counts a distinct accepted result.
func (p *PrometheusCollector) RecordResultReceived(jobID string) {
	p.ensureRegistered()
	p.resultsReceived.WithLabelValues(jobID).Inc()
}

// RecordDuplicateResult counts a discarded redelivery.
func (p *PrometheusCollector) RecordDuplicateResult(jobID string) {
	p.ensureRegistered()
	p.duplicateResults.WithLabelValues(jobID).Inc()
}

// RecordOriginError counts an error-flagged result.
func (p *PrometheusCollector) RecordOriginError(jobID string) {
	p.ensureRegistered()
	p.originErrors.WithLabelValues(jobID).Inc()
}

// RecordJobCompleted counts a finalized job and observes its duration.
func (p *PrometheusCollector) RecordJobCompleted(_ string, seconds float64) {
	p.ensureRegistered()
	p.jobsCompleted.Inc()
	p.assemblySeconds.Observe(seconds)
}

// RecordUnroutableMessage counts an unroutable message by reason.
func (p *PrometheusCollector) RecordUnroutableMessage(reason string) {
	p.ensureRegistered()
	p.unroutable.WithLabelValues(reason).Inc()
}

// RecordChannelError counts a transient channel failure.
func (p *PrometheusCollector) RecordChannelError() {
	p.ensureRegistered()
	p.channelErrors.Inc()
}

// SetActiveJobs reports the registered assembler count.
func (p *PrometheusCollector) SetActiveJobs(n int) {
	p.ensureRegistered()
	p.activeJobs.Set(float64(n))
}
