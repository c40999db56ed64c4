package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	QueueMessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_messages_received_total",
			Help: "Number of messages received from the queue",
		},
		[]string{"queue"},
	)
	QueueMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_messages_processed_total",
			Help: "Number of messages processed successfully",
		},
		[]string{"queue"},
	)
	QueueMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_messages_failed_total",
			Help: "Number of messages failed to process",
		},
		[]string{"queue"},
	)
	QueueMessagesDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_messages_deleted_total",
			Help: "Number of messages acknowledged (deleted) from the queue",
		},
		[]string{"queue"},
	)
	QueueMessagesDeadLettered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_messages_dead_lettered_total",
			Help: "Number of permanently failed messages routed to the dead-letter queue",
		},
		[]string{"queue"},
	)
)

var (
	EventsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_events_applied_total",
			Help: "Pipeline events applied by type",
		},
		[]string{"type"},
	)
	EventsDuplicate = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_events_duplicate_total",
			Help: "Redelivered events suppressed by the idempotency record",
		},
		[]string{"type"},
	)
)

var (
	StorageOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operations_total",
			Help: "Object storage operations",
		},
		[]string{"op"}, // put|get|list|ensure_bucket
	)
	StorageErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storage_errors_total",
			Help: "Object storage operations that returned an error",
		},
	)
)

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_cache_operations_total",
			Help: "Dedup cache lookups by outcome",
		},
		[]string{"op"}, // hit|miss|expired|evicted
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dedup_cache_size",
			Help: "Current number of event ids in the dedup cache",
		},
	)
)

var registerOnce sync.Once

// MustRegister — регистрирует все метрики; повторный вызов безопасен.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			QueueMessagesReceived, QueueMessagesProcessed, QueueMessagesFailed,
			QueueMessagesDeleted, QueueMessagesDeadLettered,
			EventsApplied, EventsDuplicate,
			StorageOps, StorageErrors,
			CacheOps, CacheSize,
		)
	})
}
