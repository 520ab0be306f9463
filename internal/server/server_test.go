package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsrag/internal/answer"
	"newsrag/internal/domain"
	"newsrag/internal/ingest"
	"newsrag/internal/service"
)

type stubPort struct {
	chatErr    error
	lastQuery  string
	lastID     string
	history    []domain.Turn
	historyErr error
	deleted    bool
	statsErr   error
	articles   []domain.Article
}

func (p *stubPort) CreateSession() string { return "new-session" }

func (p *stubPort) Chat(_ context.Context, query, sessionID string) (service.ChatResult, error) {
	p.lastQuery, p.lastID = query, sessionID
	if p.chatErr != nil {
		return service.ChatResult{}, p.chatErr
	}
	if sessionID == "" {
		sessionID = "issued"
	}
	return service.ChatResult{
		SessionID: sessionID,
		Answer:    "Answer (Source 1)",
		Sources:   []answer.Source{{Title: "T", Link: "L", PubDate: "Thu, 02 Jan 2025 03:04:05 GMT", Source: "bbc", Relevance: "87.3%"}},
	}, nil
}

func (p *stubPort) History(context.Context, string) ([]domain.Turn, error) {
	return p.history, p.historyErr
}

func (p *stubPort) DeleteSession(context.Context, string) (bool, error) { return p.deleted, nil }
func (p *stubPort) Articles() []domain.Article                           { return p.articles }

func (p *stubPort) Stats(context.Context) (service.Stats, error) {
	return service.Stats{IndexedPoints: 3, Articles: 3}, p.statsErr
}

func (p *stubPort) Ingest(context.Context) (ingest.Report, error) {
	return ingest.Report{Articles: 3, Batches: 2}, nil
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestChat(t *testing.T) {
	port := &stubPort{}
	s := New(port, Config{}, nil)

	rec, body := do(t, s, http.MethodPost, "/api/chat", `{"query":"What happened in tech?","sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", body["sessionId"])
	assert.Equal(t, "Answer (Source 1)", body["answer"])
	sources := body["sources"].([]any)
	require.Len(t, sources, 1)
	assert.Equal(t, "87.3%", sources[0].(map[string]any)["relevance"])
	assert.Equal(t, "What happened in tech?", port.lastQuery)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestChatWithoutSession(t *testing.T) {
	port := &stubPort{}
	rec, body := do(t, New(port, Config{}, nil), http.MethodPost, "/api/chat", `{"query":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "issued", body["sessionId"])
	assert.Empty(t, port.lastID)
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{"empty query", `{"query":"  "}`, nil, http.StatusBadRequest, string(domain.CodeRequestInvalid)},
		{"bad json", `{"query":`, nil, http.StatusBadRequest, string(domain.CodeRequestInvalid)},
		{"retrieval", `{"query":"q"}`, domain.Errorf(domain.ErrRetrieval, "index down"), http.StatusBadGateway, string(domain.CodeRetrievalFailure)},
		{"generation", `{"query":"q"}`, domain.Errorf(domain.ErrGeneration, "quota"), http.StatusBadGateway, string(domain.CodeGenerationFailure)},
		{"session store", `{"query":"q"}`, domain.Errorf(domain.ErrSessionStore, "redis down"), http.StatusServiceUnavailable, string(domain.CodeSessionStoreFailure)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, New(&stubPort{chatErr: tt.err}, Config{}, nil), http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSessionEndpoints(t *testing.T) {
	port := &stubPort{
		deleted: true,
		history: []domain.Turn{{Role: domain.RoleUser, Content: "q"}, {Role: domain.RoleAssistant, Content: "a"}},
	}
	s := New(port, Config{}, nil)

	rec, body := do(t, s, http.MethodPost, "/api/session", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "new-session", body["sessionId"])

	rec, body = do(t, s, http.MethodGet, "/api/session/s1/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", body["sessionId"])
	assert.Len(t, body["history"], 2)

	rec, body = do(t, s, http.MethodDelete, "/api/session/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["deleted"])
}

func TestHistoryStoreFailure(t *testing.T) {
	port := &stubPort{historyErr: domain.Errorf(domain.ErrSessionStore, "redis down")}
	rec, _ := do(t, New(port, Config{}, nil), http.MethodGet, "/api/session/s1/history", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestArticlesStatsIngest(t *testing.T) {
	port := &stubPort{articles: []domain.Article{{ID: "bbc-0", Title: "A"}}}
	s := New(port, Config{}, nil)

	rec, body := do(t, s, http.MethodGet, "/api/articles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])

	rec, body = do(t, s, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["indexedPoints"])

	rec, body = do(t, s, http.MethodPost, "/api/ingest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["batches"])

	port.statsErr = domain.Errorf(domain.ErrIndex, "qdrant down")
	rec, _ = do(t, s, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := New(&stubPort{}, Config{}, nil)
	rec, body := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mrec := httptest.NewRecorder()
	s.Handler().ServeHTTP(mrec, req)
	assert.Equal(t, http.StatusOK, mrec.Code)
	assert.Contains(t, mrec.Body.String(), "go_goroutines")
}
