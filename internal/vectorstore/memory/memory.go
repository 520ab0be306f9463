package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"newsrag/internal/domain"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	points    map[uint64]domain.Point
}

func NewStorage() *Storage { return &Storage{points: make(map[uint64]domain.Point)} }

func (s *Storage) EnsureCollection(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return domain.Errorf(domain.ErrIndex, "invalid dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return domain.Errorf(domain.ErrIndex, "collection has dimension %d, want %d", s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

func (s *Storage) Upsert(_ context.Context, points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return domain.Errorf(domain.ErrIndex, "collection not created")
	}
	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return domain.Errorf(domain.ErrIndex, "point %d has dimension %d, want %d", p.ID, len(p.Vector), s.dimension)
		}
	}
	for _, p := range points {
		s.points[p.ID] = p
	}
	return nil
}

func (s *Storage) Search(_ context.Context, vector []float32, limit int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	if s.dimension != 0 && len(vector) != s.dimension {
		return nil, domain.Errorf(domain.ErrIndex, "query has dimension %d, want %d", len(vector), s.dimension)
	}
	type scored struct {
		id    uint64
		score float64
	}
	scores := make([]scored, 0, len(s.points))
	for id, p := range s.points {
		scores = append(scores, scored{id: id, score: cosine(p.Vector, vector)})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].id < scores[j].id
	})
	if limit > len(scores) {
		limit = len(scores)
	}
	results := make([]domain.SearchResult, 0, limit)
	for _, sc := range scores[:limit] {
		results = append(results, domain.SearchResult{Article: s.points[sc.id].Article, Score: sc.score})
	}
	return results, nil
}

func (s *Storage) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points), nil
}

// cosine returns 0 when either vector has zero norm.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
