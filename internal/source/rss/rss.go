// Package rss reads news articles from RSS and Atom feeds.
package rss

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"newsrag/internal/chunker"
	"newsrag/internal/domain"
)

// Feed is one configured feed. Name becomes the article source label and
// the prefix of article ids.
type Feed struct {
	Name string
	URL  string
}

type Config struct {
	Feeds           []Feed
	MaxItemsPerFeed int
	MaxTextChars    int
	// SummarySentences bounds descriptions synthesized from content.
	SummarySentences int
	Timeout          time.Duration
	UserAgent        string
}

// Source fetches all feeds concurrently and returns their items in feed order.
type Source struct {
	cfg        Config
	client     *http.Client
	policy     *bluemonday.Policy
	chunker    *chunker.SentenceChunker
	summarizer domain.Summarizer
	logger     *slog.Logger
}

func New(cfg Config, summarizer domain.Summarizer, logger *slog.Logger) *Source {
	if cfg.MaxItemsPerFeed <= 0 {
		cfg.MaxItemsPerFeed = 25
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = 4000
	}
	if cfg.SummarySentences <= 0 {
		cfg.SummarySentences = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "newsrag/1.0"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		cfg:        cfg,
		client:     &http.Client{Timeout: cfg.Timeout},
		policy:     bluemonday.StrictPolicy(),
		chunker:    chunker.NewSentenceChunker(),
		summarizer: summarizer,
		logger:     logger.With("component", "rss"),
	}
}

func (s *Source) Name() string { return "rss" }

func (s *Source) Fetch(ctx context.Context) ([]domain.Article, error) {
	perFeed := make([][]domain.Article, len(s.cfg.Feeds))
	failed := make([]error, len(s.cfg.Feeds))

	g, gctx := errgroup.WithContext(ctx)
	for i, feed := range s.cfg.Feeds {
		g.Go(func() error {
			articles, err := s.fetchFeed(gctx, feed)
			if err != nil {
				failed[i] = err
				s.logger.Warn("skipping feed", "feed", feed.Name, "url", feed.URL, "error", err)
				return nil
			}
			perFeed[i] = articles
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.Article
	failures := 0
	for i := range perFeed {
		if failed[i] != nil {
			failures++
			continue
		}
		out = append(out, perFeed[i]...)
	}
	if len(s.cfg.Feeds) > 0 && failures == len(s.cfg.Feeds) {
		return nil, fmt.Errorf("all %d feeds failed: %w", failures, failed[0])
	}
	return out, nil
}

func (s *Source) fetchFeed(ctx context.Context, feed Feed) ([]domain.Article, error) {
	fp := gofeed.NewParser()
	fp.Client = s.client
	fp.UserAgent = s.cfg.UserAgent
	parsed, err := fp.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feed.Name, err)
	}

	items := parsed.Items
	if len(items) > s.cfg.MaxItemsPerFeed {
		items = items[:s.cfg.MaxItemsPerFeed]
	}
	articles := make([]domain.Article, 0, len(items))
	for i, item := range items {
		articles = append(articles, s.toArticle(feed.Name, i, item))
	}
	return articles, nil
}

func (s *Source) toArticle(feedName string, index int, item *gofeed.Item) domain.Article {
	title := s.stripTags(item.Title)
	description := s.stripTags(item.Description)
	content := s.stripTags(item.Content)
	if description == "" && content != "" && s.summarizer != nil {
		if summary, err := s.summarizer.Summarize(content, s.cfg.SummarySentences); err == nil {
			description = summary
		}
	}

	var pub time.Time
	switch {
	case item.PublishedParsed != nil:
		pub = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		pub = *item.UpdatedParsed
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{title, description, content} {
		if p != "" && !containsPart(parts, p) {
			parts = append(parts, p)
		}
	}
	fullText := s.chunker.Bound(strings.Join(parts, "\n\n"), s.cfg.MaxTextChars)

	return domain.Article{
		ID:          fmt.Sprintf("%s-%d", feedName, index),
		Title:       title,
		Description: description,
		Link:        strings.TrimSpace(item.Link),
		PubDate:     pub,
		FullText:    fullText,
		Source:      feedName,
	}
}

// stripTags removes all markup and collapses whitespace.
func (s *Source) stripTags(raw string) string {
	if raw == "" {
		return ""
	}
	clean := html.UnescapeString(s.policy.Sanitize(raw))
	return strings.Join(strings.Fields(clean), " ")
}

func containsPart(parts []string, p string) bool {
	for _, existing := range parts {
		if existing == p {
			return true
		}
	}
	return false
}
