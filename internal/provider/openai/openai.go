// Package openai implements the vision provider for OpenAI and the
// OpenAI-compatible APIs of DeepSeek, GLM and Qwen.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/jmylchreest/colortune/internal/provider"
)

// Endpoint describes a vendor exposing the OpenAI chat completions API.
type Endpoint struct {
	Name         string
	BaseURL      string
	DefaultModel string
}

// Known endpoints. An empty BaseURL uses the library default.
var (
	OpenAI   = Endpoint{Name: provider.NameOpenAI, DefaultModel: "gpt-4o"}
	DeepSeek = Endpoint{Name: provider.NameDeepSeek, BaseURL: "https://api.deepseek.com", DefaultModel: "deepseek-chat"}
	GLM      = Endpoint{Name: provider.NameGLM, BaseURL: "https://open.bigmodel.cn/api/paas/v4", DefaultModel: "glm-4v-flash"}
	Qwen     = Endpoint{Name: provider.NameQwen, BaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1", DefaultModel: "qwen-vl-max"}
)

// Config configures a Provider.
type Config struct {
	Endpoint Endpoint
	APIKey   string
	// BaseURL and Model override the endpoint defaults when set.
	BaseURL   string
	Model     string
	MaxTokens int
	// HTTPClient is optional; tests point it at an httptest server.
	HTTPClient *http.Client
	Logger     hclog.Logger
}

// Provider calls a chat completions endpoint.
type Provider struct {
	client    *goopenai.Client
	name      string
	model     string
	maxTokens int
	logger    hclog.Logger
}

// New creates a Provider.
func New(cfg Config) (*Provider, error) {
	if cfg.Endpoint.Name == "" {
		cfg.Endpoint = OpenAI
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Endpoint.Name, provider.ErrMissingAPIKey)
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	switch {
	case cfg.BaseURL != "":
		clientConfig.BaseURL = cfg.BaseURL
	case cfg.Endpoint.BaseURL != "":
		clientConfig.BaseURL = cfg.Endpoint.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = cfg.Endpoint.DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = provider.DefaultMaxTokens
	}
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Provider{
		client:    goopenai.NewClientWithConfig(clientConfig),
		name:      cfg.Endpoint.Name,
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}, nil
}

// Name returns the endpoint name.
func (p *Provider) Name() string { return p.name }

// Model returns the model in use.
func (p *Provider) Model() string { return p.model }

// AnalyzeImage sends the prompt, with image as a data URL when present.
func (p *Provider) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	var parts []goopenai.ChatMessagePart
	if len(image) > 0 {
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    "data:" + provider.ImageMediaType + ";base64," + base64.StdEncoding.EncodeToString(image),
				Detail: goopenai.ImageURLDetailAuto,
			},
		})
	}
	parts = append(parts, goopenai.ChatMessagePart{Type: goopenai.ChatMessagePartTypeText, Text: prompt})

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []goopenai.ChatCompletionMessage{{
			Role:         goopenai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%s API error (status %d): %s", p.name, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("%s request failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.name)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == goopenai.FinishReasonLength {
		p.logger.Warn("response truncated by token limit", "model", p.model, "max_tokens", p.maxTokens)
	}
	return choice.Message.Content, nil
}
