package prompts

import (
	"fmt"
	"math"
	"strings"

	"github.com/jmylchreest/colortune/internal/params"
)

// Minimum spreads across a candidate set for it to count as diverse.
const (
	MinTemperatureSpread = 500.0
	MinContrastSpread    = 30.0
)

// MinAxesDiffering is how many axes every pair of candidates should differ on.
const MinAxesDiffering = 2

// Axis is one perceptual dimension of the diversity framework.
type Axis string

const (
	AxisTemperature Axis = "temperature"
	AxisTone        Axis = "tone"
	AxisChroma      Axis = "chroma"
	AxisSplitTone   Axis = "split_tone"
)

// Axes lists the axes in prompt order.
var Axes = []Axis{AxisTemperature, AxisTone, AxisChroma, AxisSplitTone}

// Classification places one candidate on every axis.
type Classification map[Axis]string

// Classify buckets a parameter set on the four axes.
func Classify(p params.ColorParams) Classification {
	return Classification{
		AxisTemperature: classifyTemperature(p.Color.Temperature),
		AxisTone:        classifyTone(p),
		AxisChroma:      classifyChroma(p),
		AxisSplitTone:   classifySplitTone(p.SplitToning),
	}
}

func classifyTemperature(k float64) string {
	switch {
	case k < params.NeutralTemperature-300:
		return "cool"
	case k > params.NeutralTemperature+300:
		return "warm"
	default:
		return "neutral"
	}
}

// classifyTone combines the tonal key with the contrast character, so a
// flat and a punchy grade at the same brightness are on different buckets.
func classifyTone(p params.ColorParams) string {
	b := p.Basic
	key := b.Exposure*40 + (b.Highlights+b.Shadows+b.Whites+b.Blacks)/4
	var k string
	switch {
	case p.Effects.Fade >= 20:
		k = "matte"
	case key > 10:
		k = "bright"
	case key < -10:
		k = "dark"
	default:
		k = "balanced"
	}

	var c string
	switch {
	case b.Contrast <= -10:
		c = "flat"
	case b.Contrast >= 20:
		c = "punchy"
	default:
		c = "normal"
	}
	return k + "/" + c
}

func classifyChroma(p params.ColorParams) string {
	for _, ch := range p.HSL.Channels() {
		if math.Abs(ch.Saturation) >= 25 {
			return "selective"
		}
	}
	chroma := p.Color.Saturation + p.Color.Vibrance/2
	switch {
	case chroma > 10:
		return "vivid"
	case chroma < -10:
		return "muted"
	default:
		return "natural"
	}
}

const splitToneVisible = 5.0

func classifySplitTone(st params.SplitToning) string {
	hi := st.Highlights.Saturation >= splitToneVisible
	sh := st.Shadows.Saturation >= splitToneVisible
	switch {
	case !hi && !sh:
		return "none"
	case hi != sh:
		return "monochromatic"
	}
	d := math.Abs(st.Highlights.Hue - st.Shadows.Hue)
	d = math.Min(d, 360-d)
	switch {
	case d >= 120:
		return "complementary"
	case d <= 30:
		return "monochromatic"
	default:
		return "analogous"
	}
}

// PairDiversity records the axes on which two candidates differ.
type PairDiversity struct {
	A, B int
	Axes []Axis
}

// DiversityReport summarises how different a set of candidates is.
type DiversityReport struct {
	TemperatureSpread float64
	ContrastSpread    float64
	Classifications   []Classification
	// Similar lists pairs differing on fewer than MinAxesDiffering axes.
	Similar []PairDiversity
	// Passed is true when both spreads reach their minimum. Sets of fewer
	// than two candidates pass trivially.
	Passed bool
}

// PairwiseOK reports whether every pair differs on enough axes.
func (r DiversityReport) PairwiseOK() bool {
	return len(r.Similar) == 0
}

// String describes the failures, or "diverse" when there are none.
func (r DiversityReport) String() string {
	var problems []string
	if r.TemperatureSpread < MinTemperatureSpread {
		problems = append(problems, fmt.Sprintf("temperature spread %.0fK < %.0fK", r.TemperatureSpread, MinTemperatureSpread))
	}
	if r.ContrastSpread < MinContrastSpread {
		problems = append(problems, fmt.Sprintf("contrast spread %.0f < %.0f", r.ContrastSpread, MinContrastSpread))
	}
	for _, p := range r.Similar {
		problems = append(problems, fmt.Sprintf("candidates %d and %d differ on %d axes", p.A, p.B, len(p.Axes)))
	}
	if len(problems) == 0 || len(r.Classifications) < 2 {
		return "diverse"
	}
	return strings.Join(problems, "; ")
}

// CheckDiversity measures the spread of a candidate set. It does not reject
// anything; callers decide what to do with a failed report.
func CheckDiversity(candidates []params.ColorParams) DiversityReport {
	report := DiversityReport{Classifications: make([]Classification, len(candidates))}
	for i, c := range candidates {
		report.Classifications[i] = Classify(c)
	}
	if len(candidates) < 2 {
		report.Passed = true
		return report
	}

	minT, maxT := math.Inf(1), math.Inf(-1)
	minC, maxC := math.Inf(1), math.Inf(-1)
	for _, c := range candidates {
		minT, maxT = math.Min(minT, c.Color.Temperature), math.Max(maxT, c.Color.Temperature)
		minC, maxC = math.Min(minC, c.Basic.Contrast), math.Max(maxC, c.Basic.Contrast)
	}
	report.TemperatureSpread = maxT - minT
	report.ContrastSpread = maxC - minC
	report.Passed = report.TemperatureSpread >= MinTemperatureSpread &&
		report.ContrastSpread >= MinContrastSpread

	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			var differ []Axis
			for _, axis := range Axes {
				if report.Classifications[i][axis] != report.Classifications[j][axis] {
					differ = append(differ, axis)
				}
			}
			if len(differ) < MinAxesDiffering {
				report.Similar = append(report.Similar, PairDiversity{A: i, B: j, Axes: differ})
			}
		}
	}
	return report
}
