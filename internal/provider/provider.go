// Package provider defines the vision model capability and the structured
// operations built on it: scene analysis, style options, preference analysis
// and personalised suggestions.
package provider

import (
	"context"
	"errors"
)

// Provider names understood by the registry.
const (
	NameOpenAI   = "openai"
	NameClaude   = "claude"
	NameGemini   = "gemini"
	NameDeepSeek = "deepseek"
	NameGLM      = "glm"
	NameQwen     = "qwen"
	NamePlugin   = "plugin"
)

// DefaultMaxTokens caps the length of model responses.
const DefaultMaxTokens = 4096

// ImageMediaType is the encoding of images sent to providers.
const ImageMediaType = "image/jpeg"

// ErrUnknownProvider is returned for a provider name with no backend.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrMissingAPIKey is returned when a backend has no credentials.
var ErrMissingAPIKey = errors.New("missing API key")

// Provider sends one prompt, optionally with a JPEG image, to a model and
// returns its text reply. A nil or empty image makes a text-only call.
type Provider interface {
	Name() string
	AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error)
}

// Func adapts a function to the Provider interface.
type Func struct {
	ProviderName string
	Fn           func(ctx context.Context, image []byte, prompt string) (string, error)
}

// Name returns the configured name.
func (f Func) Name() string { return f.ProviderName }

// AnalyzeImage calls Fn.
func (f Func) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	return f.Fn(ctx, image, prompt)
}
