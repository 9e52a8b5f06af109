package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrphanedThoughts counts thoughts created without a resolvable owner.
	OrphanedThoughts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "social_orphaned_thoughts_total",
		Help: "Total number of thoughts created without a resolvable owner",
	})

	// DomainOperations counts service operations by entity, operation and outcome.
	DomainOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_domain_operations_total",
		Help: "Total number of domain operations by entity, operation and outcome",
	}, []string{"entity", "operation", "outcome"})

	// CacheLookups counts cache-aside lookups by key prefix and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_cache_lookups_total",
		Help: "Total number of cache lookups by key prefix and result",
	}, []string{"prefix", "result"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// EventsPublished counts domain events by type and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_events_published_total",
		Help: "Total number of domain events published",
	}, []string{"event_type", "outcome"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "social_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordOutcome increments DomainOperations for the result of an operation.
func RecordOutcome(entity, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DomainOperations.WithLabelValues(entity, operation, outcome).Inc()
}
