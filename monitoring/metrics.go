package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	occurrencesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "occurrences_created_total",
			Help: "Recurring-event occurrences persisted, by source operation",
		},
		[]string{"source"},
	)

	sweepRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "Overdue sweep passes executed",
		},
	)

	sweepEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_events_total",
			Help: "Overdue events processed by sweeps, by outcome",
		},
		[]string{"status"},
	)

	sweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Duration of overdue sweep passes",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	assetCopyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_copy_failures_total",
			Help: "Inline template asset copies that failed",
		},
	)

	assetRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_copy_retries_total",
			Help: "Retry-queue outcomes for failed asset copies",
		},
		[]string{"status"},
	)
)

// TrackOccurrencesCreated records n persisted occurrences attributed to a
// source operation ("materialize" or "generate").
func TrackOccurrencesCreated(source string, n int) {
	occurrencesCreated.WithLabelValues(source).Add(float64(n))
}

// TrackSweep records the outcome of one sweep pass.
func TrackSweep(succeeded, failed int, duration time.Duration) {
	sweepRuns.Inc()
	sweepEvents.WithLabelValues("completed").Add(float64(succeeded))
	sweepEvents.WithLabelValues("failed").Add(float64(failed))
	sweepDuration.Observe(duration.Seconds())
}

// TrackAssetCopyFailure records an inline asset copy failure.
func TrackAssetCopyFailure() {
	assetCopyFailures.Inc()
}

// TrackAssetRetry records a retry-queue outcome ("succeeded", "requeued",
// "dropped").
func TrackAssetRetry(status string) {
	assetRetries.WithLabelValues(status).Inc()
}
