package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Wire</title>
  <item><title>Chipmakers report record revenue</title><link>https://example.com/1</link><description>Chip demand soars.</description></item>
  <item><title>Central bank raises rates</title><link>https://example.com/2</link><description>Inflation remains high.</description></item>
  <item><title>Club wins the final</title><link>https://example.com/3</link><description>Fans celebrate.</description></item>
</channel></rss>`

func TestRootHasSubcommands(t *testing.T) {
	root := NewRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "chat", "ingest"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestIngestCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfgBody := fmt.Sprintf(`
log:
  level: error
source:
  feeds:
    - name: wire
      url: %s/rss
ingest:
  batch_size: 2
  batch_delay_ms: 1
embedder:
  type: bow
  dimension: 32
llm:
  type: static
`, srv.URL)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgBody), 0o644))

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"ingest", "--config", cfgPath})
	require.NoError(t, root.Execute())

	var got struct {
		Report struct {
			Articles        int `json:"articles"`
			Batches         int `json:"batches"`
			FallbackBatches int `json:"fallbackBatches"`
		} `json:"report"`
		IndexedPoints int `json:"indexedPoints"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 3, got.Report.Articles)
	assert.Equal(t, 2, got.Report.Batches)
	assert.Equal(t, 2, got.Report.FallbackBatches)
	assert.Equal(t, 3, got.IndexedPoints)
}

func TestIngestCommandBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("vector_store:\n  type: pinecone\n"), 0o644))

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"ingest", "--config", cfgPath})
	assert.Error(t, root.Execute())
}
