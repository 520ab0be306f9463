package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsrag/internal/domain"
)

type brokenSource struct{}

func (brokenSource) Name() string { return "broken" }
func (brokenSource) Fetch(context.Context) ([]domain.Article, error) {
	return nil, errors.New("dns failure")
}

func TestCollectKeepsOrderAndSkipsFailures(t *testing.T) {
	a := Static{Label: "a", Articles: []domain.Article{{ID: "a-0"}, {ID: "a-1"}}}
	b := Static{Label: "b", Articles: []domain.Article{{ID: "b-0"}}}

	got, err := Collect(context.Background(), []domain.ArticleSource{a, brokenSource{}, b}, nil)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, art := range got {
		ids[i] = art.ID
	}
	assert.Equal(t, []string{"a-0", "a-1", "b-0"}, ids)
}

func TestCollectFailsWhenAllSourcesFail(t *testing.T) {
	_, err := Collect(context.Background(), []domain.ArticleSource{brokenSource{}, brokenSource{}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dns failure")
}

func TestCollectNoSources(t *testing.T) {
	got, err := Collect(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
