package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// LikeToggles counts like toggles by outcome: liked, unliked, conflict.
	LikeToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sermon_like_toggles_total",
			Help: "Sermon like toggles by outcome.",
		},
		[]string{"outcome"},
	)

	// LikesPurged counts expired like records removed by the sweeper.
	LikesPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sermon_likes_purged_total",
			Help: "Expired sermon like records removed.",
		},
	)

	// ImageOps counts image store calls by operation and result.
	ImageOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_store_operations_total",
			Help: "Image store operations by operation and result.",
		},
		[]string{"op", "result"},
	)

	// ImageBytes records the size of stored (optimized) images.
	ImageBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_store_upload_bytes",
			Help:    "Size of uploaded images after optimization.",
			Buckets: prometheus.ExponentialBuckets(16<<10, 2, 10), // 16KiB..8MiB
		},
	)

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		},
		[]string{"name"},
	)

	// BreakerTransitions counts breaker state changes.
	BreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions.",
		},
		[]string{"name", "from", "to"},
	)
)

func init() {
	prometheus.MustRegister(LikeToggles, LikesPurged, ImageOps, ImageBytes, BreakerState, BreakerTransitions)
}
