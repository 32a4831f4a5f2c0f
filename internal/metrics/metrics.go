package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
	OutcomeSkipped = "skipped"
)

var (
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articlegen_provider_calls_total",
			Help: "Upstream paraphrase/summarize calls by provider and outcome",
		},
		[]string{"kind", "provider", "outcome"},
	)

	ParagraphsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articlegen_paragraphs_total",
			Help: "Search results processed by source kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	GenerateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "articlegen_generate_duration_seconds",
			Help:    "Wall time of one article generation request",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"format"},
	)
)

// Outcome maps a success flag to a label value.
func Outcome(ok bool) string {
	if ok {
		return OutcomeOK
	}
	return OutcomeFailed
}
