package domain

import (
	"context"
	"time"
)

// Article is a single news item produced by an article source.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	PubDate     time.Time `json:"pubDate"`
	FullText    string    `json:"fullText"`
	Source      string    `json:"source"`
}

// Point is one entry of the vector index. ID is the article's absolute
// position in the ingestion run and never leaves the core.
type Point struct {
	ID      uint64
	Vector  []float32
	Article Article
}

// SearchResult is an article matched by similarity search.
type SearchResult struct {
	Article Article
	Score   float64
}

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SourceRef is a retrieved article cited by an assistant turn.
type SourceRef struct {
	Title  string  `json:"title"`
	Link   string  `json:"link"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Turn is one message of a conversation.
type Turn struct {
	Role      Role        `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Sources   []SourceRef `json:"sources,omitempty"`
}

// ArticleSource produces an ordered batch of articles.
type ArticleSource interface {
	Name() string
	Fetch(ctx context.Context) ([]Article, error)
}

// SessionStore keeps conversation histories with a sliding expiry.
// Every write replaces the whole history.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) ([]Turn, error)
	Set(ctx context.Context, sessionID string, history []Turn, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) (bool, error)
}

// Generator turns a prompt into model output.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
