package vectorstore

import (
	"context"

	"newsrag/internal/domain"
)

// Storage persists article vectors and supports cosine similarity search.
type Storage interface {
	// EnsureCollection creates the collection with the given dimension and
	// cosine distance if it does not exist yet.
	EnsureCollection(ctx context.Context, dimension int) error
	// Upsert writes points, overwriting existing ids, and returns once the
	// index has acknowledged them.
	Upsert(ctx context.Context, points []domain.Point) error
	// Search returns at most limit matches ordered by descending score.
	Search(ctx context.Context, vector []float32, limit int) ([]domain.SearchResult, error)
	// Count returns the number of stored points.
	Count(ctx context.Context) (int, error)
}
