package gemini

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/"+DefaultModel+":generateContent"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "Markets rallied (Source 2)."}]}}]}`))
	}))
	defer srv.Close()

	g, err := New(t.Context(), Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "gemini", g.Name())

	out, err := g.Generate(t.Context(), "What moved markets?")
	require.NoError(t, err)
	assert.Equal(t, "Markets rallied (Source 2).", out)
	assert.Contains(t, body, "contents")
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(t.Context(), Config{})
	assert.Error(t, err)
}
