package params

import (
	"encoding/json"
	"html"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Tighter bounds applied to AI-generated parameters. Values past these
// produce halos and noise even though the model accepts them.
const (
	ClarityMin = -30.0
	ClarityMax = 30.0
	DehazeMin  = -20.0
	DehazeMax  = 25.0
)

type rangeRule struct {
	path     string
	min, max float64
}

var rangeRules = []rangeRule{
	{"basic.exposure", -3, 3},
	{"basic.contrast", -100, 100},
	{"basic.highlights", -100, 100},
	{"basic.shadows", -100, 100},
	{"basic.whites", -100, 100},
	{"basic.blacks", -100, 100},
	{"color.temperature", 2000, 12000},
	{"color.tint", -100, 100},
	{"color.vibrance", -100, 100},
	{"color.saturation", -100, 100},
	{"effects.clarity", -100, 100},
	{"effects.dehaze", -100, 100},
	{"effects.vignette", -100, 100},
	{"effects.grain", 0, 100},
	{"effects.texture", -100, 100},
	{"effects.fade", 0, 100},
	{"effects.sharpening", 0, 100},
	{"effects.sharpen_radius", 0.5, 5},
	{"split_toning.balance", -100, 100},
}

var splitToneZones = []string{"highlights", "midtones", "shadows"}

var curveKeys = []string{"points", "red", "green", "blue"}

// Sanitize clamps AI-originated parameters into range so that FromMap will
// not reject them for range violations. It rewrites raw in place and also
// returns it. Non-numeric values are left for FromMap to reject.
//
// Keys are canonicalised first: a key that only differs in case from a
// known field is renamed to it and any other unknown key is dropped, so the
// case-insensitive JSON decoder never sees a value the clamps skipped.
//
// Grain is always forced to zero and clarity and dehaze are held to tighter
// bounds than the model allows.
func Sanitize(raw map[string]any) map[string]any {
	if raw == nil {
		return map[string]any{}
	}
	canonicalize(raw, reflect.TypeFor[ColorParams]())

	for _, rule := range rangeRules {
		group, key, _ := strings.Cut(rule.path, ".")
		clampKey(asMap(raw[group]), key, rule.min, rule.max)
	}

	if effects := asMap(raw["effects"]); effects != nil {
		effects["grain"] = 0.0
		clampKey(effects, "clarity", ClarityMin, ClarityMax)
		clampKey(effects, "dehaze", DehazeMin, DehazeMax)
	}

	if hsl := asMap(raw["hsl"]); hsl != nil {
		for _, name := range HSLChannelNames {
			ch := asMap(hsl[name])
			clampKey(ch, "hue", -180, 180)
			clampKey(ch, "saturation", -100, 100)
			clampKey(ch, "luminance", -100, 100)
		}
	}

	if split := asMap(raw["split_toning"]); split != nil {
		for _, zone := range splitToneZones {
			z := asMap(split[zone])
			clampKey(z, "hue", 0, 360)
			clampKey(z, "saturation", 0, 100)
		}
	}

	if curve := asMap(raw["tone_curve"]); curve != nil {
		for _, key := range curveKeys {
			if pts, ok := curve[key]; ok && pts != nil {
				if cleaned, ok := sanitizeCurve(pts); ok {
					curve[key] = cleaned
				}
			}
		}
	}

	return raw
}

// canonicalize rewrites the keys of m to the JSON field names of struct
// type t, recursing into nested structs. Exact names win over case
// variants; among variants the lexically first is kept.
func canonicalize(m map[string]any, t reflect.Type) {
	fields := jsonFields(t)

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if _, ok := fields[k]; ok {
			continue
		}
		v := m[k]
		delete(m, k)
		name := strings.ToLower(k)
		if _, known := fields[name]; !known {
			continue
		}
		if _, taken := m[name]; !taken {
			m[name] = v
		}
	}

	for name, ft := range fields {
		if ft.Kind() != reflect.Struct {
			continue
		}
		if nested := asMap(m[name]); nested != nil {
			canonicalize(nested, ft)
		}
	}
}

// jsonFields maps the JSON names of t's exported fields to their types.
func jsonFields(t reflect.Type) map[string]reflect.Type {
	out := make(map[string]reflect.Type, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		out[name] = f.Type
	}
	return out
}

// sanitizeCurve keeps well-formed [x, y] points, clamping each coordinate to
// [0, 255] and truncating it to an integer. ok is false when pts is not a list.
func sanitizeCurve(pts any) ([]any, bool) {
	items, ok := asSlice(pts)
	if !ok {
		return nil, false
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		pair, ok := asSlice(item)
		if !ok || len(pair) != 2 {
			continue
		}
		x, okX := toFloat(pair[0])
		y, okY := toFloat(pair[1])
		if !okX || !okY || math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		out = append(out, []any{int(clamp(x, 0, 255)), int(clamp(y, 0, 255))})
	}
	return out, true
}

// clampKey clamps m[key] when present and numeric. NaN is removed so the
// default applies.
func clampKey(m map[string]any, key string, lo, hi float64) {
	if m == nil {
		return
	}
	v, ok := m[key]
	if !ok {
		return
	}
	f, ok := toFloat(v)
	if !ok {
		return
	}
	if math.IsNaN(f) {
		delete(m, key)
		return
	}
	m[key] = clamp(f, lo, hi)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint8:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup from free text supplied by a model, such as a
// style name or description, and collapses surrounding whitespace.
func SanitizeText(s string) string {
	clean := html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}
