// Package answer composes grounded prompts from retrieved articles and the
// session's recent history, calls the language model and records the
// exchange in the session store.
package answer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"newsrag/internal/domain"
	"newsrag/internal/llm"
	"newsrag/internal/metrics"
	"newsrag/internal/session"
)

// Retriever finds the articles most similar to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}

// Source is an article cited by an answer, shaped for callers.
type Source struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	PubDate   string `json:"pubDate"`
	Source    string `json:"source"`
	Relevance string `json:"relevance"`
}

// Answer is the generated text plus its sources in retrieval order.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type Config struct {
	// TopK is passed to the retriever; zero lets the retriever use its default.
	TopK          int
	SessionTTL    time.Duration
	HistoryWindow int
	// Serialize runs the read-modify-write of a session's history under a
	// per-session lock. Off, concurrent answers on one session race and the
	// last write wins.
	Serialize bool
}

type Service struct {
	retriever Retriever
	sessions  domain.SessionStore
	generator domain.Generator
	cfg       Config
	locks     *session.KeyedMutex
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(retriever Retriever, sessions domain.SessionStore, generator domain.Generator, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = DefaultHistoryWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		retriever: retriever,
		sessions:  sessions,
		generator: generator,
		cfg:       cfg,
		locks:     session.NewKeyedMutex(),
		logger:    logger.With("component", "answer"),
		now:       time.Now,
	}
}

// Answer retrieves articles for query, asks the model for a grounded answer
// and appends the exchange to the session's history. Nothing is written to
// the session unless an answer was produced; a failed history write is
// logged and the answer is still returned.
func (s *Service) Answer(ctx context.Context, query, sessionID string) (Answer, error) {
	ans, err := s.answer(ctx, query, sessionID)
	if err != nil {
		metrics.AnswersTotal.WithLabelValues("error").Inc()
		return Answer{}, err
	}
	metrics.AnswersTotal.WithLabelValues("ok").Inc()
	return ans, nil
}

func (s *Service) answer(ctx context.Context, query, sessionID string) (Answer, error) {
	if strings.TrimSpace(query) == "" {
		return Answer{}, domain.Errorf(domain.ErrValidation, "query must not be empty")
	}
	if err := session.ValidateID(sessionID); err != nil {
		return Answer{}, err
	}

	results, err := s.retriever.Retrieve(ctx, query, s.cfg.TopK)
	if err != nil {
		return Answer{}, err
	}
	sources := RenderSources(results)

	if s.cfg.Serialize {
		unlock := s.locks.Lock(sessionID)
		defer unlock()
	}

	history, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Answer{}, err
	}

	prompt := ComposePrompt(query, sources, RenderHistory(history, s.cfg.HistoryWindow))
	text, err := llm.Generate(ctx, s.generator, prompt)
	if err != nil {
		s.logger.Error("generation failed", "session_id", sessionID, "error", err)
		return Answer{}, err
	}

	now := s.now()
	refs := make([]domain.SourceRef, len(results))
	for i, r := range results {
		refs[i] = domain.SourceRef{Title: r.Article.Title, Link: r.Article.Link, Source: r.Article.Source, Score: r.Score}
	}
	updated := make([]domain.Turn, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated,
		domain.Turn{Role: domain.RoleUser, Content: query, Timestamp: now},
		domain.Turn{Role: domain.RoleAssistant, Content: text, Timestamp: now, Sources: refs},
	)
	if err := s.sessions.Set(ctx, sessionID, updated, s.cfg.SessionTTL); err != nil {
		metrics.SessionPersistFailures.Inc()
		s.logger.Warn("failed to persist session history", "session_id", sessionID, "turns", len(updated), "error", err)
	}

	return Answer{Text: text, Sources: callerSources(results)}, nil
}

func callerSources(results []domain.SearchResult) []Source {
	out := make([]Source, len(results))
	for i, r := range results {
		out[i] = Source{
			Title:     r.Article.Title,
			Link:      r.Article.Link,
			PubDate:   FormatPubDate(r.Article.PubDate),
			Source:    r.Article.Source,
			Relevance: FormatRelevance(r.Score),
		}
	}
	return out
}
