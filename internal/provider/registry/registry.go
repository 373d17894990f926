// Package registry builds a vision provider from its configured name.
package registry

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/colortune/internal/provider"
	"github.com/jmylchreest/colortune/internal/provider/anthropic"
	"github.com/jmylchreest/colortune/internal/provider/gemini"
	"github.com/jmylchreest/colortune/internal/provider/openai"
	"github.com/jmylchreest/colortune/internal/provider/plugin"
)

// Config selects and configures a provider.
type Config struct {
	// Provider is one of AvailableProviders. Matching ignores case.
	Provider string
	// Model overrides the provider's default model.
	Model string
	// APIKeys and BaseURLs are keyed by provider name.
	APIKeys    map[string]string
	BaseURLs   map[string]string
	PluginPath string
	MaxTokens  int
	HTTPClient *http.Client
	Logger     hclog.Logger
}

var openAIEndpoints = map[string]openai.Endpoint{
	provider.NameOpenAI:   openai.OpenAI,
	provider.NameDeepSeek: openai.DeepSeek,
	provider.NameGLM:      openai.GLM,
	provider.NameQwen:     openai.Qwen,
}

// AvailableProviders lists the names New accepts.
func AvailableProviders() []string {
	return []string{
		provider.NameOpenAI,
		provider.NameClaude,
		provider.NameGemini,
		provider.NameDeepSeek,
		provider.NameGLM,
		provider.NameQwen,
		provider.NamePlugin,
	}
}

// DefaultModel returns the model a provider uses when none is configured.
func DefaultModel(name string) string {
	name = normalize(name)
	if ep, ok := openAIEndpoints[name]; ok {
		return ep.DefaultModel
	}
	switch name {
	case provider.NameClaude:
		return anthropic.DefaultModel
	case provider.NameGemini:
		return gemini.DefaultModel
	}
	return ""
}

// wrap keeps a failed constructor from yielding a non-nil interface.
func wrap[T provider.Provider](p T, err error) (provider.Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// New creates the provider named in cfg.
func New(ctx context.Context, cfg Config) (provider.Provider, error) {
	name := normalize(cfg.Provider)
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named(name)
	key := cfg.APIKeys[name]
	baseURL := cfg.BaseURLs[name]

	if ep, ok := openAIEndpoints[name]; ok {
		return wrap(openai.New(openai.Config{
			Endpoint:   ep,
			APIKey:     key,
			BaseURL:    baseURL,
			Model:      cfg.Model,
			MaxTokens:  cfg.MaxTokens,
			HTTPClient: cfg.HTTPClient,
			Logger:     logger,
		}))
	}

	switch name {
	case provider.NameClaude:
		return wrap(anthropic.New(anthropic.Config{
			APIKey:     key,
			BaseURL:    baseURL,
			Model:      cfg.Model,
			MaxTokens:  cfg.MaxTokens,
			HTTPClient: cfg.HTTPClient,
			Logger:     logger,
		}))
	case provider.NameGemini:
		return wrap(gemini.New(ctx, gemini.Config{
			APIKey:     key,
			BaseURL:    baseURL,
			Model:      cfg.Model,
			MaxTokens:  cfg.MaxTokens,
			HTTPClient: cfg.HTTPClient,
			Logger:     logger,
		}))
	case provider.NamePlugin:
		return wrap(plugin.New(plugin.Config{
			Path:      cfg.PluginPath,
			MaxTokens: cfg.MaxTokens,
			Logger:    logger,
		}))
	}

	return nil, fmt.Errorf("%w: %q (available: %s)", provider.ErrUnknownProvider,
		cfg.Provider, strings.Join(AvailableProviders(), ", "))
}
