// internal/posts/trending.go
// Engagement-decay ranking for the discovery feed. Scores are never stored;
// every feed request recomputes them from live counts.

package posts

import (
	"time"
)

const (
	likeWeight    = 2.0
	commentWeight = 5.0

	// minAgeHours clamps the age of brand-new posts so a near-zero
	// denominator cannot produce an outsized score.
	minAgeHours = 0.5

	// ageOffsetHours keeps the denominator away from zero while still
	// letting recency dominate early.
	ageOffsetHours = 2.0
)

// TrendingScore computes the decay-weighted engagement score of a post.
// Comments weigh 2.5x a like to reward deeper engagement. A post with zero
// engagement scores 0 regardless of age.
func TrendingScore(createdAt time.Time, likes, comments int, now time.Time) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < minAgeHours {
		hours = minAgeHours
	}

	engagement := float64(likes)*likeWeight + float64(comments)*commentWeight

	return engagement / (hours + ageOffsetHours)
}
