package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "events_recommendation_duration_seconds",
			Help:    "Time spent building event recommendations",
			Buckets: prometheus.DefBuckets,
		},
	)

	recommendationScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "events_recommendation_scores",
			Help:    "Distribution of returned recommendation scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	explainerFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_explainer_fallbacks_total",
			Help: "Explanations served by the heuristic after an explainer failure",
		},
	)
)
