package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat questions processed",
		},
		[]string{"status"},
	)

	ChatDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_request_duration_seconds",
			Help:    "End-to-end duration of a chat question",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Total number of LLM completion calls",
		},
		[]string{"status"},
	)

	SandboxExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sandbox_executions_total",
			Help: "Total number of generated code executions",
		},
		[]string{"result"},
	)

	AnswerCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "answer_cache_hits_total",
			Help: "Chat questions answered from the cache",
		},
	)
)
