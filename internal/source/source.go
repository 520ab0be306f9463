// Package source gathers articles from the configured article sources.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"newsrag/internal/domain"
)

// Collect fetches every source in order and concatenates the results. A
// failing source is logged and skipped; Collect only fails when every
// source failed.
func Collect(ctx context.Context, sources []domain.ArticleSource, logger *slog.Logger) ([]domain.Article, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		all      []domain.Article
		failures int
		lastErr  error
	)
	for _, src := range sources {
		articles, err := src.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			lastErr = err
			logger.Warn("article source failed", "source", src.Name(), "error", err)
			continue
		}
		logger.Info("fetched articles", "source", src.Name(), "count", len(articles))
		all = append(all, articles...)
	}
	if len(sources) > 0 && failures == len(sources) {
		return nil, fmt.Errorf("all %d article sources failed: %w", failures, lastErr)
	}
	return all, nil
}

// Static serves a fixed article list.
type Static struct {
	Label    string
	Articles []domain.Article
}

func (s Static) Name() string { return s.Label }

func (s Static) Fetch(_ context.Context) ([]domain.Article, error) {
	out := make([]domain.Article, len(s.Articles))
	copy(out, s.Articles)
	return out, nil
}
