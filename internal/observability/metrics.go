package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus instruments shared by all modules.
type Metrics struct {
	operationAttempts *prometheus.CounterVec
	operationFailures *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	MessagesProcessed *prometheus.CounterVec // outcome: processed|updated|removed|skipped
	SchedulerTicks    *prometheus.CounterVec // check: threads|rankings, outcome: ok|error
	ThreadsCreated    prometheus.Counter
	RankingsPublished prometheus.Counter
	ImportBatches     prometheus.Counter
}

// NewMetrics registers the instrument set on the given registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pomobot_operation_attempts_total",
			Help: "Service operations attempted.",
		}, []string{"module", "operation"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pomobot_operation_failures_total",
			Help: "Service operations that returned an error.",
		}, []string{"module", "operation"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pomobot_operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"module", "operation"}),
		MessagesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pomobot_messages_processed_total",
			Help: "Ledger message outcomes.",
		}, []string{"outcome"}),
		SchedulerTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pomobot_scheduler_checks_total",
			Help: "Scheduler check executions.",
		}, []string{"check", "outcome"}),
		ThreadsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pomobot_threads_created_total",
			Help: "Week threads created on the platform.",
		}),
		RankingsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pomobot_rankings_published_total",
			Help: "Weekly rankings posted and marked published.",
		}),
		ImportBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pomobot_import_batches_total",
			Help: "Historical message batches fetched during import.",
		}),
	}

	registry.MustRegister(
		m.operationAttempts,
		m.operationFailures,
		m.operationDuration,
		m.MessagesProcessed,
		m.SchedulerTicks,
		m.ThreadsCreated,
		m.RankingsPublished,
		m.ImportBatches,
	)
	return m
}

// RecordOperationAttempt counts an attempted service operation.
func (m *Metrics) RecordOperationAttempt(module, operation string) {
	m.operationAttempts.WithLabelValues(module, operation).Inc()
}

// RecordOperationFailure counts a failed service operation.
func (m *Metrics) RecordOperationFailure(module, operation string) {
	m.operationFailures.WithLabelValues(module, operation).Inc()
}

// RecordOperationDuration records a service operation's latency.
func (m *Metrics) RecordOperationDuration(module, operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(module, operation).Observe(d.Seconds())
}
