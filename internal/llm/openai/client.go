// Package openai implements llm.Client for OpenAI and OpenAI-compatible chat
// completion endpoints (DeepSeek, Moonshot, local gateways).
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"novel-backend/internal/llm"
	"novel-backend/internal/shared/telemetry"
)

const defaultTimeout = 120 * time.Second

// Config describes one OpenAI-compatible endpoint.
type Config struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements llm.Client using Chat Completions.
type Client struct {
	name   string
	model  string
	client oai.Client
}

// NewClient constructs a client. BaseURL is optional and defaults to api.openai.com.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%w: model is required for %s", llm.ErrNotConfigured, cfg.Name)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: api key is required for %s", llm.ErrNotConfigured, cfg.Name)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		// retries are handled by llm.WithRetry
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	name := cfg.Name
	if name == "" {
		name = "openai"
	}
	return &Client{
		name:   name,
		model:  cfg.Model,
		client: oai.NewClient(opts...),
	}, nil
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	messages := make([]oai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, oai.SystemMessage(req.System))
	}
	messages = append(messages, oai.UserMessage(req.Prompt))

	params := oai.ChatCompletionNewParams{
		Model:    oai.ChatModel(c.model),
		Messages: messages,
	}
	if req.Temperature > 0 && !isReasoningModel(c.model) {
		params.Temperature = oai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = oai.Int(int64(req.MaxTokens))
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.Response{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llm.Response{}, fmt.Errorf("openai response missing choices: %w", llm.ErrEmptyResponse)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return llm.Response{}, llm.ErrEmptyResponse
	}

	out := llm.Response{
		Text:             text,
		Provider:         c.name,
		Model:            c.model,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
	}
	telemetry.Info("llm.response", map[string]any{
		"provider":          c.name,
		"model":             c.model,
		"operation":         string(req.Operation),
		"prompt_tokens":     out.PromptTokens,
		"completion_tokens": out.CompletionTokens,
		"duration_ms":       time.Since(start).Milliseconds(),
	})
	return out, nil
}

// isReasoningModel reports models that reject a custom temperature.
func isReasoningModel(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	return strings.HasPrefix(m, "gpt-5") || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4")
}

var _ llm.Client = (*Client)(nil)
