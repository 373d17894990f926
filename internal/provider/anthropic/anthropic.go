// Package anthropic implements the vision provider for Claude models using
// the Messages API over plain HTTP.
package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/colortune/internal/provider"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-5-20250929"
	// APIVersion is sent in the anthropic-version header.
	APIVersion = "2023-06-01"

	defaultTimeout = 120 * time.Second
	errorBodyLimit = 4 << 10
)

// Config configures a Provider.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
	Logger     hclog.Logger
}

// Provider calls the Messages API.
type Provider struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
	logger    hclog.Logger
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// New creates a Provider.
func New(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s: %w", provider.NameClaude, provider.ErrMissingAPIKey)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = provider.DefaultMaxTokens
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Provider{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		baseURL:   baseURL,
		model:     model,
		maxTokens: maxTokens,
		client:    client,
		logger:    logger,
	}, nil
}

// Name returns "claude".
func (p *Provider) Name() string { return provider.NameClaude }

// Model returns the model in use.
func (p *Provider) Model() string { return p.model }

// AnalyzeImage sends the prompt, preceded by the image when present.
func (p *Provider) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	var blocks []contentBlock
	if len(image) > 0 {
		blocks = append(blocks, contentBlock{
			Type: "image",
			Source: &imageSource{
				Type:      "base64",
				MediaType: provider.ImageMediaType,
				Data:      base64.StdEncoding.EncodeToString(image),
			},
		})
	}
	blocks = append(blocks, contentBlock{Type: "text", Text: prompt})

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(messagesRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  []message{{Role: "user", Content: blocks}},
	}); err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", APIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("claude API error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("claude API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if out.StopReason == "max_tokens" {
		p.logger.Warn("response truncated by token limit", "model", p.model, "max_tokens", p.maxTokens)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("claude returned no text content")
	}
	return text.String(), nil
}
