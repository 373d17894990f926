// Package grading ties the vision provider, the processing pipeline and
// storage together into the operations a caller actually runs: discovering
// styles for a photograph, personalised suggestions, preference analysis,
// previews and exports.
package grading

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/colortune/internal/image"
	"github.com/jmylchreest/colortune/internal/params"
	"github.com/jmylchreest/colortune/internal/processor"
	"github.com/jmylchreest/colortune/internal/prompts"
	"github.com/jmylchreest/colortune/internal/provider"
	"github.com/jmylchreest/colortune/internal/raster"
	"github.com/jmylchreest/colortune/internal/storage"
)

// DefaultAITimeout bounds one provider call including response parsing.
const DefaultAITimeout = 120 * time.Second

// Storage prefixes for generated files.
const (
	PreviewPrefix = "previews"
	ExportPrefix  = "exports"
)

// ErrNoUsableCandidates is returned when every candidate in a response failed
// validation.
var ErrNoUsableCandidates = errors.New("no usable candidates in response")

// ErrNoProvider is returned by provider operations on a Service built
// without an analyzer.
var ErrNoProvider = errors.New("no vision provider configured")

// Service runs grading operations. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	analyzer    *provider.Analyzer
	processor   *processor.Processor
	store       storage.Store
	logger      hclog.Logger
	maxParallel int
	aiTimeout   time.Duration
	jpegQuality int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxParallel limits how many candidates are rendered at once.
func WithMaxParallel(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxParallel = n
		}
	}
}

// WithAITimeout bounds each provider call.
func WithAITimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.aiTimeout = d
		}
	}
}

// WithJPEGQuality sets the default quality of JPEG exports.
func WithJPEGQuality(q int) Option {
	return func(s *Service) {
		if q > 0 {
			s.jpegQuality = q
		}
	}
}

// New creates a Service. A nil processor gets the defaults. A nil analyzer
// limits the service to local grading.
func New(analyzer *provider.Analyzer, proc *processor.Processor, store storage.Store, opts ...Option) *Service {
	if proc == nil {
		proc = processor.New()
	}
	s := &Service{
		analyzer:    analyzer,
		processor:   proc,
		store:       store,
		logger:      hclog.NewNullLogger(),
		maxParallel: runtime.NumCPU(),
		aiTimeout:   DefaultAITimeout,
		jpegQuality: image.DefaultJPEGQuality,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Candidate is a validated grade proposed by the provider, rendered onto the
// preview of the source image.
type Candidate struct {
	Name        string             `json:"style_name"`
	Description string             `json:"description"`
	Params      params.ColorParams `json:"parameters"`
	// PreviewKey is the storage key of the rendered preview JPEG.
	PreviewKey string `json:"preview_key,omitempty"`
}

// Rejection records a candidate dropped because its parameters did not
// validate after sanitising.
type Rejection struct {
	Name  string `json:"style_name"`
	Error string `json:"error"`
}

// Result is the outcome of a style or suggestion request.
type Result struct {
	Scene      *provider.SceneAnalysis `json:"scene,omitempty"`
	Candidates []Candidate             `json:"candidates"`
	Rejected   []Rejection             `json:"rejected,omitempty"`
	Diversity  prompts.DiversityReport `json:"-"`
}

// Names returns the candidate names in order.
func (r *Result) Names() []string {
	names := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		names[i] = c.Name
	}
	return names
}

// StyleRequest controls style discovery.
type StyleRequest struct {
	Count int
	// Avoid lists style names already shown to the user.
	Avoid []string
	// Render stores a preview for each candidate when true.
	Render bool
}

// payload downsizes img to the preview width and encodes it for the
// provider. The preview is returned for rendering candidates.
func (s *Service) payload(img *raster.Image) (*raster.Image, []byte, error) {
	if s.analyzer == nil {
		return nil, nil, ErrNoProvider
	}
	preview := s.processor.GeneratePreview(img, 0)
	data, err := image.EncodePreviewJPEG(preview)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode image for provider: %w", err)
	}
	return preview, data, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.aiTimeout)
}

// AnalyzeScene describes img.
func (s *Service) AnalyzeScene(ctx context.Context, img *raster.Image) (provider.SceneAnalysis, error) {
	_, data, err := s.payload(img)
	if err != nil {
		return provider.SceneAnalysis{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.analyzer.AnalyzeScene(ctx, data)
}

// GenerateStyles analyses the scene and asks for req.Count distinct grades.
// Candidates whose parameters fail validation are reported in Rejected; the
// call fails only when none survive.
func (s *Service) GenerateStyles(ctx context.Context, img *raster.Image, req StyleRequest) (*Result, error) {
	preview, data, err := s.payload(img)
	if err != nil {
		return nil, err
	}

	aiCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	scene, err := s.analyzer.AnalyzeScene(aiCtx, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("analysed scene", "type", scene.SceneType, "mood", scene.Mood)

	raw, err := s.analyzer.GenerateStyleOptions(aiCtx, data, scene, provider.StyleOptions{
		Count: req.Count,
		Avoid: req.Avoid,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.build(ctx, preview, raw, req.Render)
	if err != nil {
		return nil, err
	}
	result.Scene = &scene
	return result, nil
}

// GenerateSuggestions proposes grades for img personalised to profile. A nil
// profile gives unpersonalised suggestions.
func (s *Service) GenerateSuggestions(ctx context.Context, img *raster.Image, profile *provider.StyleProfile, opts provider.SuggestionOptions, render bool) (*Result, error) {
	preview, data, err := s.payload(img)
	if err != nil {
		return nil, err
	}

	aiCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.analyzer.GenerateGradingSuggestions(aiCtx, data, profile, opts)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, preview, raw, render)
}

// AnalyzePreferences summarises a user's taste from past selections.
func (s *Service) AnalyzePreferences(ctx context.Context, selections []provider.Selection) (provider.StyleProfile, error) {
	if s.analyzer == nil {
		return provider.StyleProfile{}, ErrNoProvider
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.analyzer.AnalyzePreferences(ctx, selections)
}

// build sanitises and validates raw candidates, checks the set for
// diversity and optionally renders previews in parallel.
func (s *Service) build(ctx context.Context, preview *raster.Image, raw []provider.StyleCandidate, render bool) (*Result, error) {
	result := &Result{}
	for _, c := range raw {
		p, err := c.Params()
		if err != nil {
			s.logger.Warn("dropping candidate", "style", c.StyleName, "error", err)
			result.Rejected = append(result.Rejected, Rejection{Name: c.StyleName, Error: err.Error()})
			continue
		}
		result.Candidates = append(result.Candidates, Candidate{
			Name:        c.StyleName,
			Description: c.Description,
			Params:      p,
		})
	}
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("%w: %d rejected", ErrNoUsableCandidates, len(result.Rejected))
	}

	all := make([]params.ColorParams, len(result.Candidates))
	for i, c := range result.Candidates {
		all[i] = c.Params
	}
	result.Diversity = prompts.CheckDiversity(all)
	if !result.Diversity.Passed || !result.Diversity.PairwiseOK() {
		s.logger.Warn("candidates are not diverse", "report", result.Diversity.String())
	}

	if render {
		if err := s.renderAll(ctx, preview, result.Candidates); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// renderAll grades preview once per candidate and stores each result.
// Candidates are independent so they render concurrently; each goroutine
// writes only its own slice element.
func (s *Service) renderAll(ctx context.Context, preview *raster.Image, candidates []Candidate) error {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)

	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			graded := s.processor.ApplyParams(preview, candidates[i].Params)
			data, err := image.EncodePreviewJPEG(graded)
			if err != nil {
				return fmt.Errorf("failed to encode preview for %q: %w", candidates[i].Name, err)
			}
			key, err := s.store.Save(gctx, storage.NewKey(PreviewPrefix, image.FormatJPEG.Extension()), data)
			if err != nil {
				return fmt.Errorf("failed to store preview for %q: %w", candidates[i].Name, err)
			}
			candidates[i].PreviewKey = key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Debug("rendered candidates", "count", len(candidates), "elapsed", time.Since(start))
	return nil
}

// Output describes a stored render.
type Output struct {
	Key    string       `json:"key"`
	Format image.Format `json:"format"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Bytes  int          `json:"bytes"`
}

// Preview grades a downscaled copy of img and stores it as JPEG. width <= 0
// uses the processor's preview width.
func (s *Service) Preview(ctx context.Context, img *raster.Image, cp params.ColorParams, adjustments []processor.LocalAdjustment, width int) (Output, error) {
	small := s.processor.GeneratePreview(img, width)
	graded, err := s.processor.Grade(small, cp, adjustments)
	if err != nil {
		return Output{}, err
	}
	data, err := image.EncodePreviewJPEG(graded)
	if err != nil {
		return Output{}, fmt.Errorf("failed to encode preview: %w", err)
	}
	return s.save(ctx, PreviewPrefix, image.FormatJPEG, graded, data)
}

// Render grades img at full resolution and encodes it without storing the
// result. A zero JPEG quality uses the configured default.
func (s *Service) Render(img *raster.Image, cp params.ColorParams, adjustments []processor.LocalAdjustment, opts image.EncodeOptions) (*raster.Image, []byte, error) {
	if opts.Format == "" {
		opts.Format = image.FormatJPEG
	}
	if opts.Format == image.FormatJPEG && opts.Quality == 0 {
		opts.Quality = s.jpegQuality
	}

	graded, err := s.processor.Grade(img, cp, adjustments)
	if err != nil {
		return nil, nil, err
	}
	data, err := image.EncodeBytes(graded, opts)
	if err != nil {
		return nil, nil, err
	}
	return graded, data, nil
}

// Export renders img and stores it in the requested format.
func (s *Service) Export(ctx context.Context, img *raster.Image, cp params.ColorParams, adjustments []processor.LocalAdjustment, opts image.EncodeOptions) (Output, error) {
	if opts.Format == "" {
		opts.Format = image.FormatJPEG
	}

	start := time.Now()
	graded, data, err := s.Render(img, cp, adjustments, opts)
	if err != nil {
		return Output{}, err
	}
	out, err := s.save(ctx, ExportPrefix, opts.Format, graded, data)
	if err != nil {
		return Output{}, err
	}
	s.logger.Info("exported image", "key", out.Key, "format", opts.Format,
		"width", out.Width, "height", out.Height, "elapsed", time.Since(start))
	return out, nil
}

func (s *Service) save(ctx context.Context, prefix string, format image.Format, img *raster.Image, data []byte) (Output, error) {
	key, err := s.store.Save(ctx, storage.NewKey(prefix, format.Extension()), data)
	if err != nil {
		return Output{}, fmt.Errorf("failed to store %s: %w", prefix, err)
	}
	return Output{Key: key, Format: format, Width: img.Width, Height: img.Height, Bytes: len(data)}, nil
}
