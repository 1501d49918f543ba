// Package metrics registers the Prometheus collectors of the recommender.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecommendationsTotal counts served recommendation requests by mode and outcome.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manhwarec_recommendations_total",
			Help: "Recommendation requests by mode (title, keyword) and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	// KeywordFallbackTotal counts keyword searches answered by lexical overlap.
	KeywordFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "manhwarec_keyword_lexical_fallback_total",
			Help: "Keyword searches with no tag-space match that fell back to lexical overlap.",
		},
	)

	// TranslationFailuresTotal counts translator errors.
	TranslationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "manhwarec_translation_failures_total",
			Help: "Keyword translations that failed and used the untranslated keyword.",
		},
	)

	// ReviewsSubmittedTotal counts review submissions by outcome.
	ReviewsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manhwarec_reviews_submitted_total",
			Help: "Review submissions by outcome (ok, invalid, error).",
		},
		[]string{"outcome"},
	)

	// HTTPRequestDuration observes HTTP handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "manhwarec_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern, method and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
