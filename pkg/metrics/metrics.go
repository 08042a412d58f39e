// Package metrics exposes the Prometheus collectors of the persona pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts freshness decisions by artifact and outcome
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "openbook_cache_lookups_total",
		Help: "Cache freshness decisions by artifact (profile, knowledge_base) and result (fresh, stale)",
	}, []string{"artifact", "result"})

	// Regenerations tracks how long a rebuild of an artifact took
	Regenerations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "openbook_regeneration_duration_seconds",
		Help:    "Duration of profile scrapes and knowledge base generations",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7min
	}, []string{"artifact", "result"})

	// SummaryCalls counts per-repository summarization outcomes
	SummaryCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "openbook_summary_calls_total",
		Help: "Per-repository summarization calls by result",
	}, []string{"result"})

	// LLMTokens counts tokens by call purpose and kind
	LLMTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "openbook_llm_tokens_total",
		Help: "Language model tokens by purpose (summary, intent, chat) and kind (prompt, completion)",
	}, []string{"purpose", "kind"})

	// Intents counts classifier outcomes
	Intents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "openbook_intent_classifications_total",
		Help: "Intent classifications by resulting context mode",
	}, []string{"mode"})

	// DomainEvents counts events seen by the consumer
	DomainEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "openbook_domain_events_total",
		Help: "Domain events consumed by type",
	}, []string{"type"})
)

// ObserveTokens adds one completion's usage under the given purpose.
func ObserveTokens(purpose string, promptTokens, completionTokens int) {
	LLMTokens.WithLabelValues(purpose, "prompt").Add(float64(promptTokens))
	LLMTokens.WithLabelValues(purpose, "completion").Add(float64(completionTokens))
}
