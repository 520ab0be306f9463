// Package llm builds the language-model generator the answer flow calls.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsrag/internal/domain"
	"newsrag/internal/llm/gemini"
	"newsrag/internal/llm/openai"
)

// Config selects and configures a generator backend.
type Config struct {
	Type        string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// New returns the generator named by cfg.Type.
func New(ctx context.Context, cfg Config) (domain.Generator, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "gemini":
		return gemini.New(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
	case "openai":
		return openai.New(openai.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm type %q", cfg.Type)
	}
}

// Generate calls g and normalizes the outcome: provider errors and blank
// output both become generation errors. Non-blank output is returned as is.
func Generate(ctx context.Context, g domain.Generator, prompt string) (string, error) {
	if g == nil {
		return "", domain.Errorf(domain.ErrGeneration, "no language model configured")
	}
	out, err := g.Generate(ctx, prompt)
	if err != nil {
		return "", domain.Wrap(fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err), domain.ErrGeneration, "generating answer", "generator", g.Name())
	}
	if strings.TrimSpace(out) == "" {
		return "", domain.Errorf(domain.ErrGeneration, "%s returned an empty answer", g.Name())
	}
	return out, nil
}

// Static always answers with the same text. Used when no model credential
// is configured and in tests.
type Static struct {
	Text string
}

func (s Static) Name() string { return "static" }

func (s Static) Generate(_ context.Context, _ string) (string, error) {
	return s.Text, nil
}
