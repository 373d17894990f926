// Package preset loads named grades from HCL files. Built-in presets are
// embedded; user presets with the same name replace them.
package preset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/jmylchreest/colortune/internal/params"
)

//go:embed builtin.hcl
var builtinHCL []byte

// BuiltinSource marks presets loaded from the embedded file.
const BuiltinSource = "builtin"

// FileExtension is the suffix LoadDir looks for.
const FileExtension = ".hcl"

// ErrNotFound is returned for an unknown preset name.
var ErrNotFound = errors.New("preset not found")

// Preset is a named, validated grade.
type Preset struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Params      params.ColorParams `json:"parameters"`
	Source      string             `json:"source"`
}

// Parse reads every preset block in src.
func Parse(src []byte, filename string) ([]Preset, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("failed to parse %s: unexpected body type", filename)
	}

	if len(body.Attributes) > 0 {
		return nil, fmt.Errorf("%s: only preset blocks are allowed at the top level", filename)
	}

	var presets []Preset
	seen := map[string]bool{}
	for _, block := range body.Blocks {
		if block.Type != "preset" {
			return nil, fmt.Errorf("%s: unexpected block %q", filename, block.Type)
		}
		if len(block.Labels) != 1 || strings.TrimSpace(block.Labels[0]) == "" {
			return nil, fmt.Errorf("%s: preset block needs exactly one name label", filename)
		}
		name := block.Labels[0]
		if seen[name] {
			return nil, fmt.Errorf("%s: duplicate preset %q", filename, name)
		}
		seen[name] = true

		p, err := parsePreset(name, block.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: preset %q: %w", filename, name, err)
		}
		p.Source = filename
		presets = append(presets, p)
	}
	return presets, nil
}

func parsePreset(name string, body *hclsyntax.Body) (Preset, error) {
	m, err := bodyToMap(body)
	if err != nil {
		return Preset{}, err
	}

	p := Preset{Name: name}
	if d, ok := m["description"]; ok {
		s, ok := d.(string)
		if !ok {
			return Preset{}, errors.New("description must be a string")
		}
		p.Description = s
		delete(m, "description")
	}

	cp, err := params.FromMap(m)
	if err != nil {
		return Preset{}, err
	}
	p.Params = cp
	return p, nil
}

// bodyToMap turns attributes into values and nested blocks into maps.
func bodyToMap(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating %s: %w", name, diags)
		}
		v, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = v
	}
	for _, block := range body.Blocks {
		if len(block.Labels) != 0 {
			return nil, fmt.Errorf("block %q does not take labels", block.Type)
		}
		if _, dup := out[block.Type]; dup {
			return nil, fmt.Errorf("duplicate %q", block.Type)
		}
		nested, err := bodyToMap(block.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", block.Type, err)
		}
		out[block.Type] = nested
	}
	return out, nil
}

func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, errors.New("value is not known")
	}

	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString(), nil
	case t == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case t == cty.Bool:
		return v.True(), nil
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		var out []any
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			e, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case t.IsObjectType() || t.IsMapType():
		out := map[string]any{}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			e, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = e
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", t.FriendlyName())
}

// Library is a set of presets by name.
type Library struct {
	presets map[string]Preset
}

// Builtin returns the embedded presets.
func Builtin() (*Library, error) {
	lib := &Library{presets: map[string]Preset{}}
	presets, err := Parse(builtinHCL, BuiltinSource)
	if err != nil {
		return nil, err
	}
	lib.add(presets)
	return lib, nil
}

// Load returns the built-in presets overlaid with those in dir. An empty or
// missing dir yields only the built-ins.
func Load(dir string) (*Library, error) {
	lib, err := Builtin()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return lib, nil
	}
	if err := lib.LoadDir(dir); err != nil {
		return nil, err
	}
	return lib, nil
}

// LoadDir adds every *.hcl file in dir, in name order.
func (l *Library) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read preset directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), FileExtension) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read preset file: %w", err)
		}
		presets, err := Parse(src, path)
		if err != nil {
			return err
		}
		l.add(presets)
	}
	return nil
}

func (l *Library) add(presets []Preset) {
	for _, p := range presets {
		l.presets[p.Name] = p
	}
}

// Get returns the named preset.
func (l *Library) Get(name string) (Preset, error) {
	p, ok := l.presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	p.Params = p.Params.Clone()
	return p, nil
}

// Names returns the preset names sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.presets))
	for name := range l.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns all presets sorted by name.
func (l *Library) List() []Preset {
	out := make([]Preset, 0, len(l.presets))
	for _, name := range l.Names() {
		out = append(out, l.presets[name])
	}
	return out
}
