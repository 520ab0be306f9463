package ingest

import (
	"sync"

	"newsrag/internal/domain"
)

// Catalog owns the articles of the latest successful ingestion run. Only the
// pipeline replaces it; everybody else reads copies.
type Catalog struct {
	mu       sync.RWMutex
	articles []domain.Article
}

func NewCatalog() *Catalog { return &Catalog{} }

// Replace swaps in a new article set wholesale.
func (c *Catalog) Replace(articles []domain.Article) {
	next := make([]domain.Article, len(articles))
	copy(next, articles)
	c.mu.Lock()
	c.articles = next
	c.mu.Unlock()
}

// List returns a copy of the current articles in ingestion order.
func (c *Catalog) List() []domain.Article {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Article, len(c.articles))
	copy(out, c.articles)
	return out
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.articles)
}
