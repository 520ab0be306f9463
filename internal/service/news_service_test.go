package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsrag/internal/answer"
	"newsrag/internal/domain"
	"newsrag/internal/embedding"
	"newsrag/internal/ingest"
	"newsrag/internal/llm"
	"newsrag/internal/retrieval"
	"newsrag/internal/session/memory"
	"newsrag/internal/source"
	vsmemory "newsrag/internal/vectorstore/memory"
)

func newsArticles() []domain.Article {
	texts := []string{
		"Chipmakers report record semiconductor revenue as chip demand soars",
		"Central bank raises interest rates to fight inflation",
		"Football club wins the championship after dramatic final",
	}
	out := make([]domain.Article, len(texts))
	for i, txt := range texts {
		out[i] = domain.Article{
			ID:       fmt.Sprintf("wire-%d", i),
			Title:    txt,
			Link:     fmt.Sprintf("https://example.com/%d", i),
			FullText: txt,
			Source:   "wire",
			PubDate:  time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func newTestService(t *testing.T) *NewsService {
	t.Helper()
	emb := embedding.NewClient(nil, embedding.Config{Dimension: 64}, nil)
	index := vsmemory.NewStorage()
	catalog := ingest.NewCatalog()
	pipeline := ingest.NewPipeline(emb, index, catalog, ingest.Config{BatchSize: 2}, nil)
	engine := retrieval.NewEngine(emb, index, 2, nil)
	sessions := memory.NewStore()
	answers := answer.NewService(engine, sessions, llm.Static{Text: "Chip revenue is up (Source 1)."}, answer.Config{SessionTTL: time.Minute}, nil)

	return NewNewsService(Deps{
		Sources:  []domain.ArticleSource{source.Static{Label: "wire", Articles: newsArticles()}},
		Pipeline: pipeline,
		Catalog:  catalog,
		Index:    index,
		Sessions: sessions,
		Answers:  answers,
	})
}

func TestIngestAndStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.IndexedPoints)
	assert.Nil(t, st.LastIngest)

	report, err := svc.Ingest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Articles)
	assert.Equal(t, 2, report.Batches)
	assert.Equal(t, 2, report.FallbackBatches)

	st, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.IndexedPoints)
	assert.Equal(t, 3, st.Articles)
	require.NotNil(t, st.LastIngest)
	assert.Equal(t, 2, st.LastIngest.Batches)
	assert.Len(t, svc.Articles(), 3)
}

func TestChatFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.Ingest(ctx)
	require.NoError(t, err)

	id := svc.CreateSession()
	require.NotEmpty(t, id)

	res, err := svc.Chat(ctx, "What happened with chip revenue?", id)
	require.NoError(t, err)
	assert.Equal(t, id, res.SessionID)
	assert.NotEmpty(t, res.Answer)
	assert.LessOrEqual(t, len(res.Sources), 2)
	require.NotEmpty(t, res.Sources)
	assert.Equal(t, "wire", res.Sources[0].Source)
	assert.Contains(t, res.Sources[0].Relevance, "%")

	history, err := svc.History(ctx, id)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	deleted, err := svc.DeleteSession(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = svc.DeleteSession(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)

	history, err = svc.History(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatIssuesSessionWhenMissing(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	res, err := svc.Chat(context.Background(), "interest rates", "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
}

func TestHistoryValidatesID(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.History(context.Background(), "")
	assert.True(t, domain.IsValidationError(err))
	_, err = svc.DeleteSession(context.Background(), "no spaces allowed")
	assert.True(t, domain.IsValidationError(err))
}
