// Package openai generates answers with an OpenAI-compatible chat completions API.
package openai

import (
	"context"
	"fmt"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const DefaultModel = "gpt-4.1-mini"

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string // optional, useful for compatible servers and tests
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
}

type Generator struct {
	client openaisdk.Client
	config Config
}

func New(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: missing api key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Generator{client: openaisdk.NewClient(opts...), config: cfg}, nil
}

func (g *Generator) Name() string { return "openai" }

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(g.config.Model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
	}
	if g.config.Temperature > 0 {
		params.Temperature = param.NewOpt(g.config.Temperature)
	}
	if g.config.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(g.config.MaxTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
