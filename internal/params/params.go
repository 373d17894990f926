// Package params defines the colour grading parameter model shared by the
// processor, the sanitizer, presets and the AI providers.
package params

import (
	"encoding/json"
	"fmt"
	"slices"
)

// SchemaVersion is the parameter schema version written by Identity.
const SchemaVersion = "1.0"

// NeutralTemperature is the white balance in Kelvin that applies no shift.
const NeutralTemperature = 6500.0

// Curve is a list of [x, y] control points with both coordinates in [0, 255].
type Curve [][]int

// DefaultCurve returns a fresh copy of the five point diagonal master curve.
func DefaultCurve() Curve {
	return Curve{{0, 0}, {64, 64}, {128, 128}, {192, 192}, {255, 255}}
}

// IsDefault reports whether c is exactly the default diagonal curve.
func (c Curve) IsDefault() bool {
	return slices.EqualFunc(c, DefaultCurve(), slices.Equal[[]int])
}

// Clone returns a deep copy of c. A nil curve stays nil.
func (c Curve) Clone() Curve {
	if c == nil {
		return nil
	}
	out := make(Curve, len(c))
	for i, p := range c {
		out[i] = slices.Clone(p)
	}
	return out
}

// Basic holds global tonal adjustments.
type Basic struct {
	Exposure   float64 `json:"exposure" validate:"gte=-3,lte=3"`
	Contrast   float64 `json:"contrast" validate:"gte=-100,lte=100"`
	Highlights float64 `json:"highlights" validate:"gte=-100,lte=100"`
	Shadows    float64 `json:"shadows" validate:"gte=-100,lte=100"`
	Whites     float64 `json:"whites" validate:"gte=-100,lte=100"`
	Blacks     float64 `json:"blacks" validate:"gte=-100,lte=100"`
}

// Color holds white balance and global chroma adjustments.
type Color struct {
	Temperature float64 `json:"temperature" validate:"gte=2000,lte=12000"`
	Tint        float64 `json:"tint" validate:"gte=-100,lte=100"`
	Vibrance    float64 `json:"vibrance" validate:"gte=-100,lte=100"`
	Saturation  float64 `json:"saturation" validate:"gte=-100,lte=100"`
}

// ToneCurve holds the master curve and optional per-channel overrides.
// A non-nil channel curve replaces the master curve for that channel.
type ToneCurve struct {
	Points Curve `json:"points" validate:"dive,len=2,dive,gte=0,lte=255"`
	Red    Curve `json:"red" validate:"omitempty,dive,len=2,dive,gte=0,lte=255"`
	Green  Curve `json:"green" validate:"omitempty,dive,len=2,dive,gte=0,lte=255"`
	Blue   Curve `json:"blue" validate:"omitempty,dive,len=2,dive,gte=0,lte=255"`
}

// HSLChannel is a selective adjustment for one hue band.
type HSLChannel struct {
	Hue        float64 `json:"hue" validate:"gte=-180,lte=180"`
	Saturation float64 `json:"saturation" validate:"gte=-100,lte=100"`
	Luminance  float64 `json:"luminance" validate:"gte=-100,lte=100"`
}

// IsZero reports whether the channel applies no adjustment.
func (c HSLChannel) IsZero() bool {
	return c.Hue == 0 && c.Saturation == 0 && c.Luminance == 0
}

// HSL holds the eight hue band adjustments.
type HSL struct {
	Red     HSLChannel `json:"red"`
	Orange  HSLChannel `json:"orange"`
	Yellow  HSLChannel `json:"yellow"`
	Green   HSLChannel `json:"green"`
	Aqua    HSLChannel `json:"aqua"`
	Blue    HSLChannel `json:"blue"`
	Purple  HSLChannel `json:"purple"`
	Magenta HSLChannel `json:"magenta"`
}

// HSLChannelNames lists the hue bands in processing order.
var HSLChannelNames = []string{"red", "orange", "yellow", "green", "aqua", "blue", "purple", "magenta"}

// Channels returns the bands in the same order as HSLChannelNames.
func (h HSL) Channels() []HSLChannel {
	return []HSLChannel{h.Red, h.Orange, h.Yellow, h.Green, h.Aqua, h.Blue, h.Purple, h.Magenta}
}

// ToneZone is a tint applied to one luminance range.
type ToneZone struct {
	Hue        float64 `json:"hue" validate:"gte=0,lte=360"`
	Saturation float64 `json:"saturation" validate:"gte=0,lte=100"`
}

// SplitToning tints highlights, midtones and shadows independently.
// Balance moves the boundary between the zones.
type SplitToning struct {
	Highlights ToneZone `json:"highlights"`
	Midtones   ToneZone `json:"midtones"`
	Shadows    ToneZone `json:"shadows"`
	Balance    float64  `json:"balance" validate:"gte=-100,lte=100"`
}

// Effects holds local contrast, haze and finishing effects.
type Effects struct {
	Clarity       float64 `json:"clarity" validate:"gte=-100,lte=100"`
	Dehaze        float64 `json:"dehaze" validate:"gte=-100,lte=100"`
	Vignette      float64 `json:"vignette" validate:"gte=-100,lte=100"`
	Grain         float64 `json:"grain" validate:"gte=0,lte=100"`
	Texture       float64 `json:"texture" validate:"gte=-100,lte=100"`
	Fade          float64 `json:"fade" validate:"gte=0,lte=100"`
	Sharpening    float64 `json:"sharpening" validate:"gte=0,lte=100"`
	SharpenRadius float64 `json:"sharpen_radius" validate:"gte=0.5,lte=5"`
}

// ColorParams is the complete, validated description of a grade.
// Every field has a neutral default; Identity returns the instance that
// leaves any image unchanged.
type ColorParams struct {
	Version     string      `json:"version"`
	Basic       Basic       `json:"basic"`
	Color       Color       `json:"color"`
	ToneCurve   ToneCurve   `json:"tone_curve"`
	HSL         HSL         `json:"hsl"`
	SplitToning SplitToning `json:"split_toning"`
	Effects     Effects     `json:"effects"`
}

// Identity returns the no-op parameter set.
func Identity() ColorParams {
	return ColorParams{
		Version:   SchemaVersion,
		Color:     Color{Temperature: NeutralTemperature},
		ToneCurve: ToneCurve{Points: DefaultCurve()},
		Effects:   Effects{SharpenRadius: 1.0},
	}
}

// Clone returns a deep copy of p.
func (p ColorParams) Clone() ColorParams {
	out := p
	out.ToneCurve = ToneCurve{
		Points: p.ToneCurve.Points.Clone(),
		Red:    p.ToneCurve.Red.Clone(),
		Green:  p.ToneCurve.Green.Clone(),
		Blue:   p.ToneCurve.Blue.Clone(),
	}
	return out
}

// FromMap builds parameters from a nested map, such as decoded JSON.
// Missing groups and fields keep their defaults, unknown keys are ignored.
// Wrong shapes and out-of-range values return a *ValidationError.
func FromMap(m map[string]any) (ColorParams, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return ColorParams{}, &ValidationError{Field: "", Tag: "encode", Value: err.Error()}
	}
	return Parse(data)
}

// Parse decodes JSON parameters on top of the defaults and validates them.
func Parse(data []byte) (ColorParams, error) {
	p := Identity()
	if err := json.Unmarshal(data, &p); err != nil {
		return ColorParams{}, decodeError(err)
	}
	if p.ToneCurve.Points == nil {
		p.ToneCurve.Points = DefaultCurve()
	}
	if p.Version == "" {
		p.Version = SchemaVersion
	}
	if err := p.Validate(); err != nil {
		return ColorParams{}, err
	}
	return p, nil
}

// ToMap serialises p into the nested map form accepted by FromMap.
func (p ColorParams) ToMap() (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}
	return out, nil
}

// MarshalIndent returns p as indented JSON.
func (p ColorParams) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
