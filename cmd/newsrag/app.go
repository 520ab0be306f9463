package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"newsrag/internal/answer"
	"newsrag/internal/config"
	"newsrag/internal/domain"
	"newsrag/internal/embedding"
	embopenai "newsrag/internal/embedding/openai"
	"newsrag/internal/ingest"
	"newsrag/internal/llm"
	"newsrag/internal/retrieval"
	"newsrag/internal/service"
	"newsrag/internal/session/memory"
	"newsrag/internal/session/redis"
	"newsrag/internal/source/rss"
	"newsrag/internal/summarizer"
	"newsrag/internal/vectorstore"
	vsmemory "newsrag/internal/vectorstore/memory"
	"newsrag/internal/vectorstore/qdrant"
)

// app holds the assembled components and what must be released on exit.
type app struct {
	service *service.NewsService
	closers []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

func secret(envName string) string {
	if envName == "" {
		return ""
	}
	return os.Getenv(envName)
}

func buildApp(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*app, error) {
	a := &app{}

	var provider embedding.Provider
	switch cfg.Embedder.Type {
	case "bow":
	case "openai":
		oc := cfg.Embedder.OpenAI
		key := secret(oc.APIKeyEnv)
		if key == "" {
			logger.Warn("embedding API key not set; using bag-of-words embeddings", "env", oc.APIKeyEnv)
			break
		}
		client, err := embopenai.NewClient(embopenai.Config{
			BaseURL:    oc.BaseURL,
			APIKey:     key,
			Model:      oc.Model,
			Dimensions: cfg.Embedder.Dimension,
			Timeout:    time.Duration(oc.TimeoutSecs) * time.Second,
			MaxRetries: oc.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		provider = client
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
	emb := embedding.NewClient(provider, embedding.Config{
		Dimension:     cfg.Embedder.Dimension,
		MaxInputChars: cfg.Embedder.MaxInputChars,
	}, logger.With("component", "embedding"))

	var index vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory":
		index = vsmemory.NewStorage()
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		index = qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	var sessions domain.SessionStore
	switch cfg.Session.Type {
	case "memory":
		sessions = memory.NewStore()
	case "redis":
		r := cfg.Session.Redis
		client, err := redis.Connect(ctx, redis.Config{
			Addr:        r.Addr,
			Password:    secret(r.PasswordEnv),
			DB:          r.DB,
			DialTimeout: time.Duration(r.DialTimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		sessions = redis.NewStore(client, r.KeyPrefix)
	default:
		return nil, fmt.Errorf("unknown session store: %s", cfg.Session.Type)
	}

	var generator domain.Generator
	if cfg.LLM.Type == "static" {
		generator = llm.Static{Text: "No language model is configured; here are the most relevant articles (Source 1)."}
	} else if key := secret(cfg.LLM.APIKeyEnv); key == "" {
		logger.Warn("language model API key not set; chat requests will fail", "llm", cfg.LLM.Type, "env", cfg.LLM.APIKeyEnv)
	} else {
		g, err := llm.New(ctx, llm.Config{
			Type:        cfg.LLM.Type,
			Model:       cfg.LLM.Model,
			APIKey:      key,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("llm init failed: %w", err)
		}
		generator = g
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	default:
		a.Close()
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	var sources []domain.ArticleSource
	switch cfg.Source.Type {
	case "rss":
		feeds := make([]rss.Feed, len(cfg.Source.Feeds))
		for i, f := range cfg.Source.Feeds {
			feeds[i] = rss.Feed{Name: f.Name, URL: f.URL}
		}
		sources = append(sources, rss.New(rss.Config{
			Feeds:            feeds,
			MaxItemsPerFeed:  cfg.Source.MaxItemsPerFeed,
			MaxTextChars:     cfg.Source.MaxTextChars,
			SummarySentences: cfg.Summarizer.MaxSentences,
			Timeout:          time.Duration(cfg.Source.TimeoutSecs) * time.Second,
		}, sum, logger))
	default:
		a.Close()
		return nil, fmt.Errorf("unknown article source: %s", cfg.Source.Type)
	}

	catalog := ingest.NewCatalog()
	pipeline := ingest.NewPipeline(emb, index, catalog, ingest.Config{
		BatchSize:  cfg.Ingest.BatchSize,
		BatchDelay: cfg.BatchDelay(),
	}, logger.With("component", "ingest"))
	engine := retrieval.NewEngine(emb, index, cfg.Retrieval.TopK, logger.With("component", "retrieval"))
	answers := answer.NewService(engine, sessions, generator, answer.Config{
		TopK:          cfg.Retrieval.TopK,
		SessionTTL:    cfg.SessionTTL(),
		HistoryWindow: cfg.Session.HistoryWindow,
		Serialize:     cfg.Session.Serialize,
	}, logger)

	a.service = service.NewNewsService(service.Deps{
		Sources:  sources,
		Pipeline: pipeline,
		Catalog:  catalog,
		Index:    index,
		Sessions: sessions,
		Answers:  answers,
		Logger:   logger,
	})
	return a, nil
}
