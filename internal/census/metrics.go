package census

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// answersSaved counts SaveAnswer calls by result.
	answersSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamcensus_answers_saved_total",
		Help: "Answer saves by result (ok, invalid, not_found, error)",
	}, []string{"result"})

	// submissions counts whole-census submissions by result.
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamcensus_submissions_total",
		Help: "Census submissions by result",
	}, []string{"result"})

	// submittedDropped counts submitted keys that matched no question.
	submittedDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dreamcensus_submission_dropped_keys_total",
		Help: "Submitted answer keys that resolved to no answerable question",
	})

	// selections counts question selections by mode.
	selections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamcensus_selections_total",
		Help: "Question selections by mode",
	}, []string{"mode"})

	// selectionDuration tracks selection latency.
	selectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dreamcensus_selection_duration_seconds",
		Help:    "Question selection duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	}, []string{"mode"})

	// progressCache counts cache lookups by outcome.
	progressCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamcensus_progress_cache_total",
		Help: "Progress cache lookups by outcome (hit, miss, error)",
	}, []string{"outcome"})
)
