package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/colortune/internal/prompts"
)

// Default candidate counts.
const (
	DefaultStyleCount      = 4
	DefaultSuggestionCount = 3
)

// Analyzer runs the structured operations against any Provider.
type Analyzer struct {
	provider Provider
	prompts  *prompts.Renderer
	logger   hclog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithPrompts sets the prompt renderer, for example one with overrides.
func WithPrompts(r *prompts.Renderer) AnalyzerOption {
	return func(a *Analyzer) {
		if r != nil {
			a.prompts = r
		}
	}
}

// NewAnalyzer wraps p.
func NewAnalyzer(p Provider, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		provider: p,
		prompts:  prompts.New(),
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Provider returns the wrapped provider.
func (a *Analyzer) Provider() Provider {
	return a.provider
}

func (a *Analyzer) call(ctx context.Context, op string, image []byte, prompt string) (string, error) {
	start := time.Now()
	a.logger.Debug("calling provider", "op", op, "provider", a.provider.Name(),
		"image_bytes", len(image), "prompt_chars", len(prompt))

	text, err := a.provider.AnalyzeImage(ctx, image, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %s request failed: %w", op, a.provider.Name(), err)
	}

	a.logger.Debug("provider responded", "op", op, "chars", len(text), "elapsed", time.Since(start))
	return text, nil
}

// AnalyzeScene describes the photograph in image.
func (a *Analyzer) AnalyzeScene(ctx context.Context, image []byte) (SceneAnalysis, error) {
	prompt, err := a.prompts.Scene()
	if err != nil {
		return SceneAnalysis{}, err
	}
	text, err := a.call(ctx, "scene analysis", image, prompt)
	if err != nil {
		return SceneAnalysis{}, err
	}

	var scene SceneAnalysis
	if err := decodeResponse(text, &scene); err != nil {
		return SceneAnalysis{}, err
	}
	scene.Clean()
	return scene, nil
}

// StyleOptions controls style option generation.
type StyleOptions struct {
	Count int
	Avoid []string
}

// GenerateStyleOptions asks for Count distinct grades suited to the scene.
// Candidates come back unsanitised; use StyleCandidate.Params.
func (a *Analyzer) GenerateStyleOptions(ctx context.Context, image []byte, scene SceneAnalysis, opts StyleOptions) ([]StyleCandidate, error) {
	if opts.Count == 0 {
		opts.Count = DefaultStyleCount
	}
	prompt, err := a.prompts.Styles(prompts.StyleData{Count: opts.Count, Scene: scene, Avoid: opts.Avoid})
	if err != nil {
		return nil, err
	}
	text, err := a.call(ctx, "style options", image, prompt)
	if err != nil {
		return nil, err
	}
	return a.decodeCandidates(text, opts.Count)
}

// ErrNoSelections is returned when preference analysis has nothing to read.
var ErrNoSelections = errors.New("no selections to analyze")

// AnalyzePreferences summarises a user's taste from past selections. The
// call is text-only.
func (a *Analyzer) AnalyzePreferences(ctx context.Context, selections []Selection) (StyleProfile, error) {
	if len(selections) == 0 {
		return StyleProfile{}, ErrNoSelections
	}
	prompt, err := a.prompts.Preferences(prompts.PreferenceData{Selections: selections, Rounds: len(selections)})
	if err != nil {
		return StyleProfile{}, err
	}
	text, err := a.call(ctx, "preference analysis", nil, prompt)
	if err != nil {
		return StyleProfile{}, err
	}

	var profile StyleProfile
	if err := decodeResponse(text, &profile); err != nil {
		return StyleProfile{}, err
	}
	profile.Clean()
	return profile, nil
}

// SuggestionOptions controls personalised suggestion generation.
type SuggestionOptions struct {
	Count int
	// CustomPrompt is free text from the user appended to the prompt.
	CustomPrompt string
}

// GenerateGradingSuggestions proposes grades for image matching profile.
// A nil profile asks for suggestions without personalisation.
func (a *Analyzer) GenerateGradingSuggestions(ctx context.Context, image []byte, profile *StyleProfile, opts SuggestionOptions) ([]StyleCandidate, error) {
	if opts.Count == 0 {
		opts.Count = DefaultSuggestionCount
	}
	var p any = map[string]any{}
	if profile != nil {
		p = profile
	}
	prompt, err := a.prompts.Suggestions(prompts.SuggestionData{
		Count:        opts.Count,
		Profile:      p,
		CustomPrompt: opts.CustomPrompt,
	})
	if err != nil {
		return nil, err
	}
	text, err := a.call(ctx, "grading suggestions", image, prompt)
	if err != nil {
		return nil, err
	}
	return a.decodeCandidates(text, opts.Count)
}

func (a *Analyzer) decodeCandidates(text string, want int) ([]StyleCandidate, error) {
	candidates, err := decodeList[StyleCandidate](text)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, newResponseError("response contained no candidates", text)
	}
	for i := range candidates {
		candidates[i].clean()
	}
	if len(candidates) != want {
		a.logger.Warn("provider returned a different number of candidates", "want", want, "got", len(candidates))
	}
	return candidates, nil
}
