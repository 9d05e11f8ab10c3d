package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptune_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "promptune_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	RunsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "promptune_runs_active",
		Help: "Number of optimization runs currently in progress",
	})

	TrialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptune_trials_total",
		Help: "Total optimizer trials evaluated, by stage",
	}, []string{"stage"})

	TrialScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "promptune_trial_score",
		Help:    "Distribution of trial scores returned by the Evaluator",
		Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	}, []string{"stage"})

	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptune_llm_requests_total",
		Help: "Total LLM requests issued by Proposer/Runner/Evaluator adapters",
	}, []string{"model", "status"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "promptune_llm_request_duration_seconds",
		Help:    "LLM request duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"model"})

	EmbeddingRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "promptune_embedding_request_duration_seconds",
		Help:    "Embedding request duration for the semantic-similarity Evaluator",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
	})
)
