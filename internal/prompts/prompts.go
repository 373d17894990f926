// Package prompts renders the text sent to vision models. Templates are
// embedded and can be overridden per file from a user directory.
package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/colortune/internal/params"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Template file names.
const (
	SceneTemplate       = "scene.tmpl"
	StylesTemplate      = "styles.tmpl"
	PreferencesTemplate = "preferences.tmpl"
	SuggestionsTemplate = "suggestions.tmpl"
	schemaTemplate      = "schema.tmpl"
	diversityTemplate   = "diversity.tmpl"
)

// partials are parsed into every prompt so it can use {{ template "schema" }}.
var partials = []string{schemaTemplate, diversityTemplate}

// StyleData feeds the style option prompt.
type StyleData struct {
	Count int
	Scene any
	// Avoid lists style names already shown to the user.
	Avoid []string
}

// PreferenceData feeds the preference analysis prompt.
type PreferenceData struct {
	Selections any
	Rounds     int
}

// SuggestionData feeds the personalised suggestion prompt.
type SuggestionData struct {
	Count        int
	Profile      any
	CustomPrompt string
}

type schemaData struct {
	HSLChannels []string
}

type diversityData struct {
	MinTemperatureSpread float64
	MinContrastSpread    float64
}

// Renderer renders prompt templates.
type Renderer struct {
	customDir string
	logger    hclog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCustomDir sets the directory searched for template overrides.
func WithCustomDir(dir string) Option {
	return func(r *Renderer) {
		r.customDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Renderer that uses only embedded templates unless
// WithCustomDir is given.
func New(opts ...Option) *Renderer {
	r := &Renderer{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultCustomDir returns ~/.config/colortune/prompts, or "" when the home
// directory is unknown.
func DefaultCustomDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "colortune", "prompts")
}

// Scene renders the scene analysis prompt.
func (r *Renderer) Scene() (string, error) {
	return r.render(SceneTemplate, nil)
}

// Styles renders the style option prompt.
func (r *Renderer) Styles(data StyleData) (string, error) {
	if data.Count < 1 {
		return "", fmt.Errorf("style count must be at least 1, got %d", data.Count)
	}
	return r.render(StylesTemplate, struct {
		StyleData
		Schema    schemaData
		Diversity diversityData
	}{data, newSchemaData(), newDiversityData()})
}

// Preferences renders the preference analysis prompt.
func (r *Renderer) Preferences(data PreferenceData) (string, error) {
	return r.render(PreferencesTemplate, data)
}

// Suggestions renders the personalised suggestion prompt.
func (r *Renderer) Suggestions(data SuggestionData) (string, error) {
	if data.Count < 1 {
		return "", fmt.Errorf("suggestion count must be at least 1, got %d", data.Count)
	}
	return r.render(SuggestionsTemplate, struct {
		SuggestionData
		Schema    schemaData
		Diversity diversityData
	}{data, newSchemaData(), newDiversityData()})
}

func newSchemaData() schemaData {
	return schemaData{HSLChannels: params.HSLChannelNames}
}

func newDiversityData() diversityData {
	return diversityData{
		MinTemperatureSpread: MinTemperatureSpread,
		MinContrastSpread:    MinContrastSpread,
	}
}

func (r *Renderer) render(name string, data any) (string, error) {
	tmpl := template.New(name).Funcs(funcs())
	for _, file := range append(slices.Clone(partials), name) {
		content, err := r.load(file)
		if err != nil {
			return "", err
		}
		if _, err := tmpl.New(file).Parse(string(content)); err != nil {
			return "", fmt.Errorf("failed to parse prompt template %s: %w", file, err)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// load reads a template, preferring an override in the custom directory.
func (r *Renderer) load(name string) ([]byte, error) {
	if r.customDir != "" {
		path := filepath.Join(r.customDir, name)
		if content, err := os.ReadFile(path); err == nil { // #nosec G304 - user prompt override
			r.logger.Debug("using custom prompt template", "path", path)
			return content, nil
		}
	}
	content, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt template %q: %w", name, err)
	}
	return content, nil
}

// List returns the embedded template names.
func List() ([]string, error) {
	entries, err := fs.ReadDir(templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt templates: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// Dump writes the embedded template name into dir so it can be edited.
// Existing files are kept unless force is set.
func Dump(dir, name string, force bool) (string, error) {
	content, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("unknown prompt template %q", name)
	}

	path := filepath.Join(dir, name)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("prompt template already exists: %s (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create prompt directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", fmt.Errorf("failed to write prompt template: %w", err)
	}
	return path, nil
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"json": func(v any) (string, error) {
			if v == nil {
				return "{}", nil
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
		"last": func(i int, list []string) bool {
			return i == len(list)-1
		},
		"join": strings.Join,
	}
}
