package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"newsrag/internal/domain"
	"newsrag/internal/embedding"
	"newsrag/internal/metrics"
	"newsrag/internal/vectorstore"
)

// Embedder is the part of the embedding client the pipeline needs.
type Embedder interface {
	Dimension() int
	Truncate(text string) string
	Embed(ctx context.Context, texts []string) (embedding.Batch, error)
}

// Report summarises one ingestion run.
type Report struct {
	Articles        int           `json:"articles"`
	Batches         int           `json:"batches"`
	FallbackBatches int           `json:"fallbackBatches"`
	Duration        time.Duration `json:"duration"`
	CompletedAt     time.Time     `json:"completedAt"`
}

type Config struct {
	BatchSize  int
	BatchDelay time.Duration
}

// Pipeline embeds articles batch by batch and upserts them into the vector index.
type Pipeline struct {
	embedder  Embedder
	store     vectorstore.Storage
	catalog   *Catalog
	batchSize int
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *slog.Logger

	mu   sync.Mutex
	last *Report
}

func NewPipeline(embedder Embedder, store vectorstore.Storage, catalog *Catalog, cfg Config, logger *slog.Logger) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		embedder:  embedder,
		store:     store,
		catalog:   catalog,
		batchSize: cfg.BatchSize,
		delay:     cfg.BatchDelay,
		sleep:     sleepCtx,
		logger:    logger,
	}
}

// Run ingests articles in consecutive batches. Point ids are the absolute
// positions in articles. Batches whose embedding call fails are embedded with
// the fallback; an index failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, articles []domain.Article) (Report, error) {
	start := time.Now()
	report := Report{Articles: len(articles)}

	if err := p.store.EnsureCollection(ctx, p.embedder.Dimension()); err != nil {
		return report, domain.Wrap(err, domain.ErrIndex, "preparing collection")
	}

	for begin := 0; begin < len(articles); begin += p.batchSize {
		end := min(begin+p.batchSize, len(articles))
		chunk := articles[begin:end]

		texts := make([]string, len(chunk))
		for i, a := range chunk {
			texts[i] = p.embedder.Truncate(a.FullText)
		}
		batch, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return report, err
		}
		if batch.Fallback {
			report.FallbackBatches++
		}

		points := make([]domain.Point, len(chunk))
		for i, a := range chunk {
			points[i] = domain.Point{ID: uint64(begin + i), Vector: batch.Vectors[i], Article: a}
		}
		if err := p.store.Upsert(ctx, points); err != nil {
			return report, domain.Wrap(err, domain.ErrIndex, "upserting batch", "batch", report.Batches, "first_id", begin)
		}
		report.Batches++
		metrics.IngestBatches.Inc()
		p.logger.Debug("ingested batch", "batch", report.Batches, "size", len(chunk), "fallback", batch.Fallback)

		if end < len(articles) && p.delay > 0 {
			if err := p.sleep(ctx, p.delay); err != nil {
				return report, err
			}
		}
	}

	p.catalog.Replace(articles)
	metrics.IngestedArticles.Set(float64(len(articles)))

	report.Duration = time.Since(start)
	report.CompletedAt = time.Now()
	p.mu.Lock()
	p.last = &report
	p.mu.Unlock()

	if report.FallbackBatches > 0 {
		p.logger.Warn("ingestion used fallback embeddings; retrieval quality may be degraded",
			"fallback_batches", report.FallbackBatches, "batches", report.Batches)
	}
	p.logger.Info("ingestion complete", "articles", report.Articles, "batches", report.Batches, "duration", report.Duration)
	return report, nil
}

// LastReport returns the report of the latest successful run.
func (p *Pipeline) LastReport() (Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Report{}, false
	}
	return *p.last, true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
