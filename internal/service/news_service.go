// Package service exposes the caller-facing operations of the news assistant:
// sessions, chat, article listing, statistics and re-ingestion.
package service

import (
	"context"
	"log/slog"
	"sync"

	"newsrag/internal/answer"
	"newsrag/internal/domain"
	"newsrag/internal/ingest"
	"newsrag/internal/session"
	"newsrag/internal/source"
	"newsrag/internal/vectorstore"
)

// Answerer produces a grounded answer for a session.
type Answerer interface {
	Answer(ctx context.Context, query, sessionID string) (answer.Answer, error)
}

// ChatResult is the reply to one chat message.
type ChatResult struct {
	SessionID string          `json:"sessionId"`
	Answer    string          `json:"answer"`
	Sources   []answer.Source `json:"sources"`
}

// Stats describes the state of the index and the last ingestion.
type Stats struct {
	IndexedPoints int            `json:"indexedPoints"`
	Articles      int            `json:"articles"`
	LastIngest    *ingest.Report `json:"lastIngest,omitempty"`
}

type NewsService struct {
	sources  []domain.ArticleSource
	pipeline *ingest.Pipeline
	catalog  *ingest.Catalog
	index    vectorstore.Storage
	sessions domain.SessionStore
	answers  Answerer
	logger   *slog.Logger

	// re-ingestion has a single writer
	ingestMu sync.Mutex
}

type Deps struct {
	Sources  []domain.ArticleSource
	Pipeline *ingest.Pipeline
	Catalog  *ingest.Catalog
	Index    vectorstore.Storage
	Sessions domain.SessionStore
	Answers  Answerer
	Logger   *slog.Logger
}

func NewNewsService(d Deps) *NewsService {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsService{
		sources:  d.Sources,
		pipeline: d.Pipeline,
		catalog:  d.Catalog,
		index:    d.Index,
		sessions: d.Sessions,
		answers:  d.Answers,
		logger:   logger.With("component", "service"),
	}
}

// CreateSession issues a new session id. Nothing is stored until the first
// message is answered.
func (s *NewsService) CreateSession() string {
	return session.NewID()
}

// Chat answers query within sessionID, issuing a new session when the id is empty.
func (s *NewsService) Chat(ctx context.Context, query, sessionID string) (ChatResult, error) {
	if sessionID == "" {
		sessionID = session.NewID()
	}
	ans, err := s.answers.Answer(ctx, query, sessionID)
	if err != nil {
		return ChatResult{}, err
	}
	return ChatResult{SessionID: sessionID, Answer: ans.Text, Sources: ans.Sources}, nil
}

// History returns the stored turns of a session, empty when it is unknown or expired.
func (s *NewsService) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	if err := session.ValidateID(sessionID); err != nil {
		return nil, err
	}
	return s.sessions.Get(ctx, sessionID)
}

// DeleteSession removes a session and reports whether it existed.
func (s *NewsService) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	if err := session.ValidateID(sessionID); err != nil {
		return false, err
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Articles lists the articles of the latest successful ingestion.
func (s *NewsService) Articles() []domain.Article {
	return s.catalog.List()
}

func (s *NewsService) Stats(ctx context.Context) (Stats, error) {
	n, err := s.index.Count(ctx)
	if err != nil {
		return Stats{}, domain.Wrap(err, domain.ErrIndex, "counting indexed points")
	}
	st := Stats{IndexedPoints: n, Articles: s.catalog.Len()}
	if r, ok := s.pipeline.LastReport(); ok {
		st.LastIngest = &r
	}
	return st, nil
}

// Ingest fetches articles from every source and replaces the index contents
// and catalog with them.
func (s *NewsService) Ingest(ctx context.Context) (ingest.Report, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	articles, err := source.Collect(ctx, s.sources, s.logger)
	if err != nil {
		return ingest.Report{}, err
	}
	s.logger.Info("starting ingestion", "articles", len(articles))
	return s.pipeline.Run(ctx, articles)
}
