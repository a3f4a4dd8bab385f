package service

import (
	"math"
	"sort"
	"time"

	"golang-news-analytics/internal/entity"
)

const (
	minSentimentMembers = 3
	trendDeltaThreshold = 0.2
	trendLevelThreshold = 0.3
)

// SentimentPoint is one member's numeric sentiment at its publish time.
type SentimentPoint struct {
	PublishedAt time.Time
	Score       float64
}

// ClassifySentimentTrend compares the mean sentiment of the later half of a cluster
// against the earlier half. The later half takes the extra point when the count is odd.
// All comparisons are strict.
func ClassifySentimentTrend(points []SentimentPoint) entity.SentimentTrend {
	if len(points) < minSentimentMembers {
		return entity.SentimentTrendNeutral
	}

	sorted := append([]SentimentPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.Before(sorted[j].PublishedAt)
	})

	split := len(sorted) / 2
	earlier := meanScore(sorted[:split])
	later := meanScore(sorted[split:])
	delta := roundScore(later - earlier)

	switch {
	case delta > trendDeltaThreshold:
		return entity.SentimentTrendImproving
	case delta < -trendDeltaThreshold:
		return entity.SentimentTrendWorsening
	case later > trendLevelThreshold:
		return entity.SentimentTrendPositive
	case later < -trendLevelThreshold:
		return entity.SentimentTrendNegative
	}
	return entity.SentimentTrendNeutral
}

func meanScore(points []SentimentPoint) float64 {
	sum := 0.0
	for _, p := range points {
		sum += p.Score
	}
	return roundScore(sum / float64(len(points)))
}

// roundScore drops float noise below 1e-9 so that boundary values compare as written.
func roundScore(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}
