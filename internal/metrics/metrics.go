// Package metrics exposes Prometheus instrumentation for the collection
// engine: job lifecycle counters, the active-job gauge, cache efficiency
// counters, and collector attempt/fallback counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// JobsStarted counts jobs accepted by StartCollection.
	JobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collection_jobs_started_total",
		Help: "Total collection jobs started.",
	})

	// JobsCompleted counts jobs that reached COMPLETED.
	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collection_jobs_completed_total",
		Help: "Total collection jobs completed successfully.",
	})

	// JobsFailed counts jobs that reached FAILED.
	JobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collection_jobs_failed_total",
		Help: "Total collection jobs that failed with an orchestration error.",
	})

	// JobsCancelled counts jobs that reached CANCELLED.
	JobsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collection_jobs_cancelled_total",
		Help: "Total collection jobs cancelled.",
	})

	// ActiveJobs tracks the size of the in-flight task set.
	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "collection_jobs_active",
		Help: "Collection jobs currently executing.",
	})

	// JobDuration observes wall-clock seconds from start to terminal state.
	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "collection_job_duration_seconds",
		Help:    "Collection job duration from creation to terminal state.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	// CacheHits counts cache lookups answered without a collector call.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_cache_hits_total",
		Help: "Cache hits by data source.",
	}, []string{"source"})

	// CacheMisses counts cache lookups that fell through to a collector.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_cache_misses_total",
		Help: "Cache misses by data source.",
	}, []string{"source"})

	// CollectorAttempts counts individual network attempts.
	CollectorAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collector_attempts_total",
		Help: "Collector network attempts by data source.",
	}, []string{"source"})

	// CollectorFallbacks counts mock-fallback results by reason.
	CollectorFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collector_fallbacks_total",
		Help: "Deterministic mock fallbacks served, by source and reason.",
	}, []string{"source", "reason"})
)

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
