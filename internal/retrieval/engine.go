package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"newsrag/internal/domain"
	"newsrag/internal/embedding"
	"newsrag/internal/metrics"
	"newsrag/internal/vectorstore"
)

// DefaultTopK is the number of matches requested when the caller does not say.
const DefaultTopK = 20

// Embedder is the part of the embedding client retrieval needs.
type Embedder interface {
	Embed(ctx context.Context, texts []string) (embedding.Batch, error)
}

// Engine finds the articles closest to a query.
type Engine struct {
	embedder Embedder
	store    vectorstore.Storage
	topK     int
	logger   *slog.Logger
}

func NewEngine(embedder Embedder, store vectorstore.Storage, topK int, logger *slog.Logger) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{embedder: embedder, store: store, topK: topK, logger: logger}
}

// TopK returns the configured default result count.
func (e *Engine) TopK() int { return e.topK }

// Retrieve embeds query and returns at most topK results by descending score.
// topK <= 0 uses the configured default. Any failure yields a retrieval error
// and no results.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.Errorf(domain.ErrValidation, "query is empty")
	}
	if topK <= 0 {
		topK = e.topK
	}
	start := time.Now()
	defer func() { metrics.RetrievalDuration.Observe(time.Since(start).Seconds()) }()

	batch, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, domain.Wrap(err, domain.ErrRetrieval, "embedding query")
	}
	if len(batch.Vectors) != 1 {
		return nil, domain.Errorf(domain.ErrRetrieval, "embedding query: got %d vectors", len(batch.Vectors))
	}
	if batch.Fallback {
		e.logger.Debug("query embedded with fallback", "reason", batch.Reason)
	}

	results, err := e.store.Search(ctx, batch.Vectors[0], topK)
	if err != nil {
		return nil, domain.Wrap(err, domain.ErrRetrieval, "searching index", "top_k", topK)
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
