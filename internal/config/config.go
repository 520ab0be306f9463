package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen           string `yaml:"listen"`
	ReadTimeoutSecs  int    `yaml:"read_timeout_secs"`
	WriteTimeoutSecs int    `yaml:"write_timeout_secs"`
}

// LogConfig selects log level and output format (text or json).
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FeedConfig is one RSS or Atom feed.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// SourceConfig configures where articles come from.
type SourceConfig struct {
	Type            string       `yaml:"type"`
	Feeds           []FeedConfig `yaml:"feeds"`
	MaxItemsPerFeed int          `yaml:"max_items_per_feed"`
	MaxTextChars    int          `yaml:"max_text_chars"`
	TimeoutSecs     int          `yaml:"timeout_secs"`
}

// IngestConfig configures the batched ingestion pipeline.
type IngestConfig struct {
	BatchSize    int  `yaml:"batch_size"`
	// BatchDelayMS is nil when unset; an explicit 0 disables the pause.
	BatchDelayMS *int `yaml:"batch_delay_ms"`
	OnStartup    bool `yaml:"on_startup"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// EmbedderConfig selects the embedding provider. Type "bow" skips the
// provider and always uses the bag-of-words fallback.
type EmbedderConfig struct {
	Type          string                `yaml:"type"`
	Dimension     int                   `yaml:"dimension"`
	MaxInputChars int                   `yaml:"max_input_chars"`
	OpenAI        *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// LLMConfig selects the answer generator.
type LLMConfig struct {
	Type        string  `yaml:"type"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// RedisConfig contains connection details for the Redis session store.
type RedisConfig struct {
	Addr            string `yaml:"addr"`
	PasswordEnv     string `yaml:"password_env"`
	DB              int    `yaml:"db"`
	KeyPrefix       string `yaml:"key_prefix"`
	DialTimeoutSecs int    `yaml:"dial_timeout_secs"`
}

// SessionConfig configures conversation storage.
type SessionConfig struct {
	Type          string       `yaml:"type"`
	TTLSeconds    int          `yaml:"ttl_seconds"`
	HistoryWindow int          `yaml:"history_window"`
	Serialize     bool         `yaml:"serialize"`
	Redis         *RedisConfig `yaml:"redis,omitempty"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Source      SourceConfig      `yaml:"source"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	LLM         LLMConfig         `yaml:"llm"`
	Session     SessionConfig     `yaml:"session"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
}

// LoadEnv reads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/newsrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/newsrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings no component can run with.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "openai", "bow":
	default:
		return fmt.Errorf("unknown embedder: %s", c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "" {
			return errors.New("qdrant vector store needs vector_store.qdrant.url")
		}
	default:
		return fmt.Errorf("unknown vector store: %s", c.VectorStore.Type)
	}
	switch c.Session.Type {
	case "memory":
	case "redis":
		if c.Session.Redis == nil || c.Session.Redis.Addr == "" {
			return errors.New("redis session store needs session.redis.addr")
		}
	default:
		return fmt.Errorf("unknown session store: %s", c.Session.Type)
	}
	switch c.LLM.Type {
	case "gemini", "openai", "static":
	default:
		return fmt.Errorf("unknown llm: %s", c.LLM.Type)
	}
	if c.Session.TTLSeconds <= 0 {
		return fmt.Errorf("session.ttl_seconds must be positive, got %d", c.Session.TTLSeconds)
	}
	if c.Embedder.Dimension <= 0 {
		return fmt.Errorf("embedder.dimension must be positive, got %d", c.Embedder.Dimension)
	}
	if c.Ingest.BatchDelayMS != nil && *c.Ingest.BatchDelayMS < 0 {
		return fmt.Errorf("ingest.batch_delay_ms must not be negative, got %d", *c.Ingest.BatchDelayMS)
	}
	return nil
}

// SessionTTL returns the session expiry as a duration.
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLSeconds) * time.Second
}

// BatchDelay returns the pause between ingestion batches.
func (c *AppConfig) BatchDelay() time.Duration {
	if c.Ingest.BatchDelayMS == nil {
		return 0
	}
	return time.Duration(*c.Ingest.BatchDelayMS) * time.Millisecond
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "newsrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Server: ServerConfig{Listen: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
		Source: SourceConfig{
			Type: "rss",
			Feeds: []FeedConfig{
				{Name: "bbc", URL: "https://feeds.bbci.co.uk/news/rss.xml"},
				{Name: "npr", URL: "https://feeds.npr.org/1001/rss.xml"},
			},
		},
		Ingest:      IngestConfig{OnStartup: true},
		Embedder:    EmbedderConfig{Type: "bow"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		LLM:         LLMConfig{Type: "gemini"},
		Session:     SessionConfig{Type: "memory"},
		Summarizer:  SummarizerConfig{Type: "frequency"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.ReadTimeoutSecs == 0 {
		cfg.Server.ReadTimeoutSecs = 30
	}
	if cfg.Server.WriteTimeoutSecs == 0 {
		cfg.Server.WriteTimeoutSecs = 120
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Source.Type == "" {
		cfg.Source.Type = "rss"
	}
	if cfg.Source.MaxItemsPerFeed == 0 {
		cfg.Source.MaxItemsPerFeed = 25
	}
	if cfg.Source.MaxTextChars == 0 {
		cfg.Source.MaxTextChars = 4000
	}
	if cfg.Source.TimeoutSecs == 0 {
		cfg.Source.TimeoutSecs = 15
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 10
	}
	if cfg.Ingest.BatchDelayMS == nil {
		delay := 500
		cfg.Ingest.BatchDelayMS = &delay
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "bow"
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 768
	}
	if cfg.Embedder.MaxInputChars == 0 {
		cfg.Embedder.MaxInputChars = 8000
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.jina.ai/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "JINA_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "jina-embeddings-v2-base-en"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.MaxRetries == 0 {
			cfg.Embedder.OpenAI.MaxRetries = 3
		}
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.URL == "" {
			cfg.VectorStore.Qdrant.URL = "http://localhost:6333"
		}
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "news_articles"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 20
	}
	if cfg.LLM.Type == "" {
		cfg.LLM.Type = "gemini"
	}
	if cfg.LLM.APIKeyEnv == "" {
		switch cfg.LLM.Type {
		case "gemini":
			cfg.LLM.APIKeyEnv = "GEMINI_API_KEY"
		case "openai":
			cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.Session.Type == "" {
		cfg.Session.Type = "memory"
	}
	if cfg.Session.TTLSeconds == 0 {
		cfg.Session.TTLSeconds = 3600
	}
	if cfg.Session.HistoryWindow == 0 {
		cfg.Session.HistoryWindow = 6
	}
	if cfg.Session.Type == "redis" {
		if cfg.Session.Redis == nil {
			cfg.Session.Redis = &RedisConfig{}
		}
		if cfg.Session.Redis.Addr == "" {
			cfg.Session.Redis.Addr = "localhost:6379"
		}
		if cfg.Session.Redis.KeyPrefix == "" {
			cfg.Session.Redis.KeyPrefix = "chat:"
		}
		if cfg.Session.Redis.DialTimeoutSecs == 0 {
			cfg.Session.Redis.DialTimeoutSecs = 5
		}
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "frequency"
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 2
	}
}

// applyEnvOverrides lets deployments point at services without editing the file.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("NEWSRAG_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("QDRANT_URL"); v != "" && cfg.VectorStore.Qdrant != nil {
		cfg.VectorStore.Qdrant.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" && cfg.Session.Redis != nil {
		cfg.Session.Redis.Addr = v
	}
}
