// Package registry builds the provider router from configuration.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"novel-backend/internal/llm"
	"novel-backend/internal/llm/gemini"
	"novel-backend/internal/llm/openai"
	"novel-backend/internal/shared/telemetry"
)

const (
	KindOpenAI = "openai"
	KindGemini = "gemini"
	KindMock   = "mock"
)

// Provider is one entry of the provider file.
type Provider struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// APIKeyEnv names the environment variable holding the key; keys never live in the file.
	APIKeyEnv string `yaml:"api_key_env"`

	apiKey string
}

// File is the YAML layout of LLM_PROVIDERS_FILE.
type File struct {
	Default   string     `yaml:"default"`
	Providers []Provider `yaml:"providers"`
}

// Options carries the environment-derived settings used when no provider file is set.
type Options struct {
	DefaultProvider string
	ProvidersFile   string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string
	Timeout         time.Duration
}

// LoadFile parses a provider file.
func LoadFile(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read providers file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes provider YAML and validates names and kinds.
func Parse(raw []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return File{}, fmt.Errorf("parse providers file: %w", err)
	}
	seen := map[string]bool{}
	for i := range f.Providers {
		p := &f.Providers[i]
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		p.Kind = strings.ToLower(strings.TrimSpace(p.Kind))
		if p.Name == "" {
			return File{}, fmt.Errorf("provider %d: name is required", i)
		}
		if seen[p.Name] {
			return File{}, fmt.Errorf("provider %s: duplicate name", p.Name)
		}
		seen[p.Name] = true
		switch p.Kind {
		case KindOpenAI, KindGemini, KindMock:
		case "":
			p.Kind = KindOpenAI
		default:
			return File{}, fmt.Errorf("provider %s: unsupported kind %q", p.Name, p.Kind)
		}
	}
	return f, nil
}

// FromEnv derives the provider list from individual environment settings.
func FromEnv(opts Options) File {
	f := File{Default: opts.DefaultProvider}
	if opts.OpenAIAPIKey != "" {
		f.Providers = append(f.Providers, Provider{
			Name:    KindOpenAI,
			Kind:    KindOpenAI,
			BaseURL: opts.OpenAIBaseURL,
			Model:   opts.OpenAIModel,
			apiKey:  opts.OpenAIAPIKey,
		})
	}
	if opts.GeminiAPIKey != "" {
		f.Providers = append(f.Providers, Provider{
			Name:   KindGemini,
			Kind:   KindGemini,
			Model:  opts.GeminiModel,
			apiKey: opts.GeminiAPIKey,
		})
	}
	return f
}

// Build constructs the router. The mock provider is always registered so dev setups
// without keys keep working; it only becomes the default when nothing else is.
func Build(ctx context.Context, opts Options) (*llm.Router, error) {
	f := FromEnv(opts)
	if opts.ProvidersFile != "" {
		loaded, err := LoadFile(opts.ProvidersFile)
		if err != nil {
			return nil, err
		}
		if loaded.Default == "" {
			loaded.Default = opts.DefaultProvider
		}
		f = loaded
	}
	return BuildFile(ctx, f, opts.Timeout)
}

func BuildFile(ctx context.Context, f File, timeout time.Duration) (*llm.Router, error) {
	router := llm.NewRouter(f.Default)
	for _, p := range f.Providers {
		client, err := newClient(ctx, p, timeout)
		if err != nil {
			if errors.Is(err, llm.ErrNotConfigured) {
				telemetry.Warn("llm.provider_skipped", map[string]any{
					"provider": p.Name,
					"error":    err.Error(),
				})
				continue
			}
			return nil, err
		}
		if p.Kind == KindMock {
			router.Register(p.Name, client)
			continue
		}
		router.Register(p.Name, llm.WithRetry(p.Name, client))
	}
	if _, _, err := router.Resolve(KindMock); err != nil {
		router.Register(KindMock, llm.NewMockClient())
	}
	if _, _, err := router.Resolve(""); err != nil {
		return nil, fmt.Errorf("default provider: %w", err)
	}
	telemetry.Info("llm.providers", map[string]any{
		"providers": router.Names(),
		"default":   router.Default(),
	})
	return router, nil
}

func newClient(ctx context.Context, p Provider, timeout time.Duration) (llm.Client, error) {
	key := p.apiKey
	if key == "" && p.APIKeyEnv != "" {
		key = os.Getenv(p.APIKeyEnv)
	}
	switch p.Kind {
	case KindMock:
		return &llm.MockClient{Name: p.Name}, nil
	case KindGemini:
		return gemini.NewClient(ctx, gemini.Config{
			Name:    p.Name,
			APIKey:  key,
			BaseURL: p.BaseURL,
			Model:   p.Model,
			Timeout: timeout,
		})
	default:
		return openai.NewClient(openai.Config{
			Name:    p.Name,
			APIKey:  key,
			BaseURL: p.BaseURL,
			Model:   p.Model,
			Timeout: timeout,
		})
	}
}
