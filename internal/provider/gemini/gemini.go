// Package gemini implements the vision provider for Google Gemini models
// through the Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/genai"

	"github.com/jmylchreest/colortune/internal/provider"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config configures a Provider.
type Config struct {
	APIKey string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
	Logger     hclog.Logger
}

// Provider calls GenerateContent on the Gemini API backend.
type Provider struct {
	client    *genai.Client
	model     string
	maxTokens int
	logger    hclog.Logger
}

// New creates the Gen AI client.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", provider.NameGemini, provider.ErrMissingAPIKey)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}

	p := &Provider{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
	}
	if p.model == "" {
		p.model = DefaultModel
	}
	if p.maxTokens == 0 {
		p.maxTokens = provider.DefaultMaxTokens
	}
	if p.logger == nil {
		p.logger = hclog.NewNullLogger()
	}
	return p, nil
}

// Name returns "gemini".
func (p *Provider) Name() string { return provider.NameGemini }

// Model returns the model in use.
func (p *Provider) Model() string { return p.model }

// AnalyzeImage sends the image as inline data followed by the prompt.
func (p *Provider) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	var parts []*genai.Part
	if len(image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image, provider.ImageMediaType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(p.maxTokens),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini API error (status %d): %s", apiErr.Code, apiErr.Message)
		}
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		p.logger.Warn("response truncated by token limit", "model", p.model, "max_tokens", p.maxTokens)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned no text content")
	}
	return text, nil
}
