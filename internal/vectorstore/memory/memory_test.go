package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsrag/internal/domain"
)

func point(id uint64, v ...float32) domain.Point {
	return domain.Point{ID: id, Vector: v, Article: domain.Article{ID: "a-" + string(rune('0'+id))}}
}

func TestSearchOrdersByScore(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.EnsureCollection(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []domain.Point{point(0, 0, 1), point(1, 1, 0), point(2, 1, 1)}))

	res, err := s.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "a-1", res[0].Article.ID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
	assert.Equal(t, "a-2", res[1].Article.ID)
	assert.GreaterOrEqual(t, res[0].Score, res[1].Score)
}

func TestSearchReturnsAllWhenFewerThanLimit(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.EnsureCollection(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []domain.Point{point(0, 1, 0), point(1, 0, 1)}))

	res, err := s.Search(ctx, []float32{1, 1}, 20)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestUpsertOverwritesByID(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.EnsureCollection(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []domain.Point{point(0, 1, 0)}))
	require.NoError(t, s.Upsert(ctx, []domain.Point{point(0, 0, 1)}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	res, err := s.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
}

func TestDimensionChecks(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	err := s.Upsert(ctx, []domain.Point{point(0, 1)})
	assert.True(t, domain.IsIndexError(err))

	require.NoError(t, s.EnsureCollection(ctx, 2))
	assert.True(t, domain.IsIndexError(s.EnsureCollection(ctx, 3)))
	assert.True(t, domain.IsIndexError(s.Upsert(ctx, []domain.Point{point(0, 1, 2, 3)})))
	_, err = s.Search(ctx, []float32{1}, 1)
	assert.True(t, domain.IsIndexError(err))
}

func TestCosineZeroVector(t *testing.T) {
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 1}))
}
