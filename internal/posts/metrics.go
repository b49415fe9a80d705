// internal/posts/metrics.go
package posts

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of feed requests",
		},
		[]string{"mode"},
	)

	feedComposeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "feed_compose_duration_seconds",
			Help: "Time spent composing a feed response",
		},
	)

	trendingScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_trending_scores",
			Help:    "Distribution of computed trending scores",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	likeTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_like_toggles_total",
			Help: "Total number of like toggles",
		},
		[]string{"target", "result"},
	)
)

func recordFeedRequest(mode string) {
	feedRequestsTotal.WithLabelValues(mode).Inc()
}

func recordFeedComposeDuration(d time.Duration) {
	feedComposeDuration.Observe(d.Seconds())
}

func recordTrendingScore(score float64) {
	trendingScores.Observe(score)
}

func recordLikeToggle(target string, liked bool) {
	result := "unliked"
	if liked {
		result = "liked"
	}
	likeTogglesTotal.WithLabelValues(target, result).Inc()
}
