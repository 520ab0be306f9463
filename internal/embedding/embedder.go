package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"newsrag/internal/chunker"
	"newsrag/internal/domain"
	"newsrag/internal/embedding/bow"
	"newsrag/internal/metrics"
)

// Provider is a remote embedding backend. Embed returns one vector per text,
// in input order, from a single round trip.
type Provider interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ProviderResult is the outcome of a provider call: either the vectors, or the
// reason the provider could not serve them.
type ProviderResult struct {
	vectors [][]float32
	reason  error
}

// Success wraps vectors returned by the provider.
func Success(vectors [][]float32) ProviderResult { return ProviderResult{vectors: vectors} }

// Unavailable records why the provider could not be used.
func Unavailable(reason error) ProviderResult { return ProviderResult{reason: reason} }

// Vectors returns the vectors and true for a successful result.
func (r ProviderResult) Vectors() ([][]float32, bool) { return r.vectors, r.reason == nil }

// Reason returns why the provider was unavailable, or nil.
func (r ProviderResult) Reason() error { return r.reason }

// Batch is a set of vectors together with the path that produced them.
type Batch struct {
	Vectors  [][]float32
	Fallback bool
	Reason   error
}

// Client embeds texts with the configured provider and falls back to the
// deterministic bag-of-words embedder whenever the provider is missing or fails.
type Client struct {
	provider  Provider
	fallback  *bow.Embedder
	sentences *chunker.SentenceChunker
	dimension int
	maxInput  int
	logger    *slog.Logger
}

// Config configures the embedding client.
type Config struct {
	Dimension     int
	MaxInputChars int
}

// NewClient creates a client. provider may be nil, in which case every call
// uses the fallback.
func NewClient(provider Provider, cfg Config, logger *slog.Logger) *Client {
	if cfg.Dimension <= 0 {
		cfg.Dimension = 768
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		provider:  provider,
		fallback:  bow.NewEmbedder(cfg.Dimension),
		sentences: chunker.NewSentenceChunker(),
		dimension: cfg.Dimension,
		maxInput:  cfg.MaxInputChars,
		logger:    logger,
	}
}

// Dimension returns the fixed vector dimension.
func (c *Client) Dimension() int { return c.dimension }

// Truncate bounds text to the provider's maximum input length.
func (c *Client) Truncate(text string) string {
	return c.sentences.Bound(text, c.maxInput)
}

// Request calls the provider once for the whole batch.
func (c *Client) Request(ctx context.Context, texts []string) ProviderResult {
	if c.provider == nil {
		return Unavailable(domain.Errorf(domain.ErrProviderUnavailable, "no embedding provider configured"))
	}
	vectors, err := c.provider.Embed(ctx, texts)
	if err != nil {
		return Unavailable(domain.Wrap(err, domain.ErrProviderUnavailable, "embedding request failed", "provider", c.provider.Name()))
	}
	if len(vectors) != len(texts) {
		return Unavailable(domain.Errorf(domain.ErrProviderUnavailable, "provider returned %d vectors for %d texts", len(vectors), len(texts)))
	}
	for i, v := range vectors {
		if len(v) != c.dimension {
			return Unavailable(domain.Errorf(domain.ErrProviderUnavailable, "vector %d has dimension %d, want %d", i, len(v), c.dimension))
		}
	}
	return Success(vectors)
}

// Embed returns one vector per text. Provider failures are absorbed by the
// fallback; the only error is a cancelled context.
func (c *Client) Embed(ctx context.Context, texts []string) (Batch, error) {
	result := c.Request(ctx, texts)
	if err := ctx.Err(); err != nil {
		return Batch{}, fmt.Errorf("embedding: %w", err)
	}
	if vectors, ok := result.Vectors(); ok {
		metrics.EmbedRequests.WithLabelValues("provider").Inc()
		return Batch{Vectors: vectors}, nil
	}
	metrics.EmbedRequests.WithLabelValues("fallback").Inc()
	if c.provider != nil {
		c.logger.Warn("embedding provider unavailable, using fallback",
			"provider", c.provider.Name(), "texts", len(texts), "error", result.Reason())
	}
	return Batch{Vectors: c.fallback.EmbedAll(texts), Fallback: true, Reason: result.Reason()}, nil
}
