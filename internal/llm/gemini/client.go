// Package gemini implements llm.Client on the Google GenAI SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"novel-backend/internal/llm"
	"novel-backend/internal/shared/telemetry"
)

const defaultModel = "gemini-2.5-flash"

// Config describes the Gemini endpoint.
type Config struct {
	Name   string
	APIKey string
	Model  string
	// BaseURL overrides the public endpoint, e.g. for a proxy.
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	name    string
	model   string
	timeout time.Duration
	client  *genai.Client
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: api key is required for gemini", llm.ErrNotConfigured)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: strings.TrimSpace(cfg.BaseURL)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	name := cfg.Name
	if name == "" {
		name = "gemini"
	}
	return &Client{name: name, model: model, timeout: cfg.Timeout, client: client}, nil
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return llm.Response{}, fmt.Errorf("gemini generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return llm.Response{}, llm.ErrEmptyResponse
	}

	out := llm.Response{Text: text, Provider: c.name, Model: c.model}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
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

var _ llm.Client = (*Client)(nil)
