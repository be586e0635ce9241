// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_evaluations_total",
			Help: "Total number of per-scheme eligibility evaluations",
		},
		[]string{"outcome"}, // eligible, ineligible, undetermined
	)

	BorderlineCriteriaTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_borderline_criteria_total",
			Help: "Total number of criteria classified borderline",
		},
	)

	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "engine_ranking_duration_seconds",
			Help: "Duration of a full match request (fan-out to ranked output)",
		},
	)

	ReasoningCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_reasoning_calls_total",
			Help: "Calls to the external reasoning collaborator",
		},
		[]string{"outcome"}, // supported, unsupported, undetermined, error, cache_hit
	)

	ChecklistsBuilt = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_checklists_built_total",
			Help: "Total number of document checklists built",
		},
	)

	CatalogSchemes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_catalog_schemes",
			Help: "Number of schemes in the current catalog snapshot",
		},
	)
)
