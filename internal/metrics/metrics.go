// Package metrics provides Prometheus metrics for newsrag.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EmbedRequests counts embedding batches by the path that served them.
	EmbedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsrag",
			Name:      "embed_requests_total",
			Help:      "Total number of embedding batches by mode (provider, fallback)",
		},
		[]string{"mode"},
	)

	// IngestBatches counts upserted ingestion batches.
	IngestBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "newsrag",
			Name:      "ingest_batches_total",
			Help:      "Total number of ingestion batches upserted into the vector index",
		},
	)

	// IngestedArticles reports the size of the current article catalog.
	IngestedArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsrag",
			Name:      "ingested_articles",
			Help:      "Number of articles in the current catalog",
		},
	)

	// RetrievalDuration measures retrieval (embed + search) latency.
	RetrievalDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newsrag",
			Name:      "retrieval_duration_seconds",
			Help:      "Duration of retrieval calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// AnswersTotal counts answer calls by outcome.
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsrag",
			Name:      "answers_total",
			Help:      "Total number of answer calls by status",
		},
		[]string{"status"},
	)

	// SessionPersistFailures counts best-effort history writes that failed.
	SessionPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "newsrag",
			Name:      "session_persist_failures_total",
			Help:      "Total number of failed session history writes after an answer",
		},
	)
)
