package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsrag/internal/domain"
)

// Storage is a minimal REST client to Qdrant.
// It uses cosine distance and creates the collection if missing.
type Storage struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.Collection == "" {
		cfg.Collection = "news_articles"
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

type payload struct {
	ArticleID   string `json:"article_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	PubDate     string `json:"pub_date"`
	FullText    string `json:"full_text"`
	Source      string `json:"source"`
}

func toPayload(a domain.Article) payload {
	p := payload{
		ArticleID:   a.ID,
		Title:       a.Title,
		Description: a.Description,
		Link:        a.Link,
		FullText:    a.FullText,
		Source:      a.Source,
	}
	if !a.PubDate.IsZero() {
		p.PubDate = a.PubDate.UTC().Format(time.RFC3339)
	}
	return p
}

func (p payload) article() domain.Article {
	a := domain.Article{
		ID:          p.ArticleID,
		Title:       p.Title,
		Description: p.Description,
		Link:        p.Link,
		FullText:    p.FullText,
		Source:      p.Source,
	}
	if t, err := time.Parse(time.RFC3339, p.PubDate); err == nil {
		a.PubDate = t
	}
	return a
}

func (s *Storage) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

func (s *Storage) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return domain.Errorf(domain.ErrIndex, "invalid dimension %d", dimension)
	}
	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodGet, s.collectionURL(), nil, &info)
	if err == nil {
		if size := info.Result.Config.Params.Vectors.Size; size != 0 && size != dimension {
			return domain.Errorf(domain.ErrIndex, "collection %s has dimension %d, want %d", s.collection, size, dimension)
		}
		return nil
	}
	if status != http.StatusNotFound {
		return domain.Wrap(err, domain.ErrIndex, "inspecting collection", "collection", s.collection)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if _, err := s.do(ctx, http.MethodPut, s.collectionURL(), body, nil); err != nil {
		return domain.Wrap(err, domain.ErrIndex, "creating collection", "collection", s.collection)
	}
	return nil
}

func (s *Storage) Upsert(ctx context.Context, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}
	type point struct {
		ID      uint64    `json:"id"`
		Vector  []float32 `json:"vector"`
		Payload payload   `json:"payload"`
	}
	body := struct {
		Points []point `json:"points"`
	}{Points: make([]point, len(points))}
	for i, p := range points {
		body.Points[i] = point{ID: p.ID, Vector: p.Vector, Payload: toPayload(p.Article)}
	}
	if _, err := s.do(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", body, nil); err != nil {
		return domain.Wrap(err, domain.ErrIndex, "upserting points", "collection", s.collection, "points", len(points))
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float32, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload payload `json:"payload"`
		} `json:"result"`
	}
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/search", req, &resp); err != nil {
		return nil, domain.Wrap(err, domain.ErrIndex, "searching points", "collection", s.collection)
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{Article: r.Payload.article(), Score: r.Score})
	}
	return results, nil
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/count", map[string]any{"exact": true}, &resp); err != nil {
		return 0, domain.Wrap(err, domain.ErrIndex, "counting points", "collection", s.collection)
	}
	return resp.Result.Count, nil
}

func (s *Storage) do(ctx context.Context, method, url string, body any, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding qdrant response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
