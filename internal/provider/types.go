package provider

import (
	"encoding/json"
	"fmt"

	"github.com/jmylchreest/colortune/internal/params"
)

// SceneAnalysis is the model's description of a photograph.
type SceneAnalysis struct {
	SceneType            string   `json:"scene_type"`
	TimeOfDay            string   `json:"time_of_day"`
	Weather              string   `json:"weather"`
	DominantColors       []string `json:"dominant_colors"`
	ColorTemperatureFeel string   `json:"color_temperature_feel"`
	Mood                 string   `json:"mood"`
	Subjects             []string `json:"subjects"`
	Composition          string   `json:"composition"`
}

// Clean strips markup from every text field.
func (s *SceneAnalysis) Clean() {
	s.SceneType = params.SanitizeText(s.SceneType)
	s.TimeOfDay = params.SanitizeText(s.TimeOfDay)
	s.Weather = params.SanitizeText(s.Weather)
	s.ColorTemperatureFeel = params.SanitizeText(s.ColorTemperatureFeel)
	s.Mood = params.SanitizeText(s.Mood)
	s.Composition = params.SanitizeText(s.Composition)
	s.DominantColors = cleanList(s.DominantColors)
	s.Subjects = cleanList(s.Subjects)
}

func cleanList(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if c := params.SanitizeText(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// UntitledStyle names candidates the model left unnamed.
const UntitledStyle = "Untitled"

// StyleCandidate is one grade proposed by a model. Parameters are the raw,
// unsanitised map from the response.
type StyleCandidate struct {
	StyleName   string         `json:"style_name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// UnmarshalJSON accepts suggestion_name as an alias of style_name.
func (c *StyleCandidate) UnmarshalJSON(data []byte) error {
	var raw struct {
		StyleName      string         `json:"style_name"`
		SuggestionName string         `json:"suggestion_name"`
		Description    string         `json:"description"`
		Parameters     map[string]any `json:"parameters"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.StyleName = raw.StyleName
	if c.StyleName == "" {
		c.StyleName = raw.SuggestionName
	}
	c.Description = raw.Description
	c.Parameters = raw.Parameters
	return nil
}

// Params sanitises the raw parameters and builds a validated parameter set.
func (c StyleCandidate) Params() (params.ColorParams, error) {
	if c.Parameters == nil {
		return params.ColorParams{}, fmt.Errorf("style %q has no parameters", c.StyleName)
	}
	p, err := params.FromMap(params.Sanitize(c.Parameters))
	if err != nil {
		return params.ColorParams{}, fmt.Errorf("style %q: %w", c.StyleName, err)
	}
	return p, nil
}

func (c *StyleCandidate) clean() {
	c.StyleName = params.SanitizeText(c.StyleName)
	if c.StyleName == "" {
		c.StyleName = UntitledStyle
	}
	c.Description = params.SanitizeText(c.Description)
}

// RoundInfo describes the scene of one style discovery round.
type RoundInfo struct {
	SceneType string `json:"scene_type,omitempty"`
	TimeOfDay string `json:"time_of_day,omitempty"`
	Weather   string `json:"weather,omitempty"`
}

// OfferedOption is one style shown in a round.
type OfferedOption struct {
	StyleName   string `json:"style_name"`
	WasSelected bool   `json:"was_selected"`
}

// Selection is the user's choice in one round, with everything offered.
type Selection struct {
	Round              RoundInfo       `json:"round"`
	SelectedStyle      string          `json:"selected_style"`
	SelectedParameters map[string]any  `json:"selected_parameters"`
	AllOptions         []OfferedOption `json:"all_options"`
}

// StyleProfile is the model's summary of a user's taste.
type StyleProfile struct {
	TemperaturePreference string   `json:"temperature_preference"`
	ContrastPreference    string   `json:"contrast_preference"`
	SaturationPreference  string   `json:"saturation_preference"`
	TonePreference        string   `json:"tone_preference"`
	ColorTendencies       []string `json:"color_tendencies"`
	EffectsNotes          string   `json:"effects_notes"`
	OverallStyleSummary   string   `json:"overall_style_summary"`
	ReferenceStyles       []string `json:"reference_styles"`
}

// Clean strips markup from every text field.
func (p *StyleProfile) Clean() {
	p.TemperaturePreference = params.SanitizeText(p.TemperaturePreference)
	p.ContrastPreference = params.SanitizeText(p.ContrastPreference)
	p.SaturationPreference = params.SanitizeText(p.SaturationPreference)
	p.TonePreference = params.SanitizeText(p.TonePreference)
	p.EffectsNotes = params.SanitizeText(p.EffectsNotes)
	p.OverallStyleSummary = params.SanitizeText(p.OverallStyleSummary)
	p.ColorTendencies = cleanList(p.ColorTendencies)
	p.ReferenceStyles = cleanList(p.ReferenceStyles)
}
