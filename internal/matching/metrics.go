package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	suggestionsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_suggestions_generated_total",
			Help: "Total number of match suggestions persisted",
		},
		[]string{"source"}, // primary, fallback
	)

	duplicateSuggestionsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_duplicate_suggestions_skipped_total",
			Help: "Suggestions skipped because an active suggestion for the pair already existed",
		},
	)

	suggestionResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_suggestion_responses_total",
			Help: "Total number of suggestion transitions",
		},
		[]string{"action"},
	)

	matchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_scores",
			Help:    "Distribution of persisted buddy match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 12),
		},
	)

	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_generation_duration_seconds",
			Help:    "Time spent generating suggestions for one user",
			Buckets: prometheus.DefBuckets,
		},
	)

	suggestionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_suggestions_expired_total",
			Help: "Suggestions rejected by the expiry job",
		},
	)
)
