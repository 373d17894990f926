package params

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityDefaults(t *testing.T) {
	p := Identity()

	assert.Equal(t, SchemaVersion, p.Version)
	assert.Equal(t, 6500.0, p.Color.Temperature)
	assert.Equal(t, 1.0, p.Effects.SharpenRadius)
	assert.True(t, p.ToneCurve.Points.IsDefault())
	assert.Nil(t, p.ToneCurve.Red)
	require.NoError(t, p.Validate())
}

func TestIdentityReturnsIndependentCurves(t *testing.T) {
	a := Identity()
	b := Identity()
	a.ToneCurve.Points[1][1] = 80

	assert.True(t, b.ToneCurve.Points.IsDefault())
}

func TestFromMapPartial(t *testing.T) {
	p, err := FromMap(map[string]any{
		"basic": map[string]any{"exposure": 1.0},
		"hsl":   map[string]any{"orange": map[string]any{"saturation": -15}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, p.Basic.Exposure)
	assert.Equal(t, 0.0, p.Basic.Contrast)
	assert.Equal(t, -15.0, p.HSL.Orange.Saturation)
	assert.Equal(t, 6500.0, p.Color.Temperature)
	assert.True(t, p.ToneCurve.Points.IsDefault())
}

func TestFromMapReplacesCurve(t *testing.T) {
	p, err := FromMap(map[string]any{
		"tone_curve": map[string]any{
			"points": []any{[]any{0, 20}, []any{255, 240}},
			"red":    []any{[]any{0, 0}, []any{128, 140}, []any{255, 255}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, Curve{{0, 20}, {255, 240}}, p.ToneCurve.Points)
	assert.Equal(t, Curve{{0, 0}, {128, 140}, {255, 255}}, p.ToneCurve.Red)
	assert.Nil(t, p.ToneCurve.Green)
}

func TestFromMapValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
		field string
		tag   string
	}{
		{
			name:  "exposure above range",
			input: map[string]any{"basic": map[string]any{"exposure": 5.0}},
			field: "basic.exposure",
			tag:   "lte",
		},
		{
			name:  "temperature below range",
			input: map[string]any{"color": map[string]any{"temperature": 1000}},
			field: "color.temperature",
			tag:   "gte",
		},
		{
			name:  "negative grain",
			input: map[string]any{"effects": map[string]any{"grain": -1}},
			field: "effects.grain",
			tag:   "gte",
		},
		{
			name:  "sharpen radius too small",
			input: map[string]any{"effects": map[string]any{"sharpen_radius": 0.1}},
			field: "effects.sharpen_radius",
			tag:   "gte",
		},
		{
			name:  "hsl hue out of range",
			input: map[string]any{"hsl": map[string]any{"blue": map[string]any{"hue": 200}}},
			field: "hsl.blue.hue",
			tag:   "lte",
		},
		{
			name:  "split tone saturation out of range",
			input: map[string]any{"split_toning": map[string]any{"midtones": map[string]any{"saturation": 120}}},
			field: "split_toning.midtones.saturation",
			tag:   "lte",
		},
		{
			name:  "curve coordinate out of range",
			input: map[string]any{"tone_curve": map[string]any{"points": []any{[]any{0, 0}, []any{300, 255}}}},
			field: "tone_curve.points[1][0]",
			tag:   "lte",
		},
		{
			name:  "curve point with three coordinates",
			input: map[string]any{"tone_curve": map[string]any{"points": []any{[]any{0, 0, 0}}}},
			field: "tone_curve.points[0]",
			tag:   "len",
		},
		{
			name:  "string where number expected",
			input: map[string]any{"basic": map[string]any{"contrast": "high"}},
			field: "basic.contrast",
			tag:   "type",
		},
		{
			name:  "group with wrong shape",
			input: map[string]any{"effects": []any{1, 2}},
			field: "effects",
			tag:   "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.input)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %T: %v", err, err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.tag, verr.Tag)
			assert.Contains(t, verr.Error(), tt.field)
		})
	}
}

func TestToMapRoundTrip(t *testing.T) {
	p := Identity()
	p.Basic.Exposure = 0.35
	p.Color.Temperature = 5200
	p.HSL.Aqua = HSLChannel{Hue: -8, Saturation: 12, Luminance: 4}
	p.SplitToning.Midtones = ToneZone{Hue: 40, Saturation: 8}
	p.ToneCurve.Blue = Curve{{0, 10}, {255, 250}}
	p.Effects.Fade = 12

	m, err := p.ToMap()
	require.NoError(t, err)
	assert.Equal(t, "1.0", m["version"])

	back, err := FromMap(m)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestParseKeepsVersion(t *testing.T) {
	p, err := Parse([]byte(`{"version":"1.1","basic":{"contrast":12}}`))
	require.NoError(t, err)
	assert.Equal(t, "1.1", p.Version)
	assert.Equal(t, 12.0, p.Basic.Contrast)

	data, err := p.MarshalIndent()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "split_toning")
}

func TestCloneIsDeep(t *testing.T) {
	p := Identity()
	p.ToneCurve.Red = Curve{{0, 0}, {255, 255}}
	c := p.Clone()
	c.ToneCurve.Red[1][1] = 200
	c.ToneCurve.Points[0][1] = 10

	assert.Equal(t, 255, p.ToneCurve.Red[1][1])
	assert.Equal(t, 0, p.ToneCurve.Points[0][1])
}
