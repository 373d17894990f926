package ops

import (
	"image"
	"math/rand/v2"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/colortune/internal/params"
	"github.com/jmylchreest/colortune/internal/raster"
)

// randomImage returns a deterministic noisy image with values in [0, 1].
func randomImage(w, h int, seed uint64) *raster.Image {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := raster.New(w, h)
	for i := range img.Pix {
		img.Pix[i] = rng.Float32()
	}
	return img
}

func assertInRange(t *testing.T, img *raster.Image) {
	t.Helper()
	for i, v := range img.Pix {
		if v < 0 || v > 1 {
			t.Fatalf("pixel value %d out of range: %v", i, v)
		}
	}
}

func TestNeutralValuesReturnInput(t *testing.T) {
	img := randomImage(16, 12, 1)

	tests := []struct {
		name string
		fn   func(*raster.Image) *raster.Image
	}{
		{"exposure", func(m *raster.Image) *raster.Image { return Exposure(m, 0) }},
		{"contrast", func(m *raster.Image) *raster.Image { return Contrast(m, 0) }},
		{"highlights", func(m *raster.Image) *raster.Image { return Highlights(m, 0) }},
		{"shadows", func(m *raster.Image) *raster.Image { return Shadows(m, 0) }},
		{"whites", func(m *raster.Image) *raster.Image { return Whites(m, 0) }},
		{"blacks", func(m *raster.Image) *raster.Image { return Blacks(m, 0) }},
		{"temperature", func(m *raster.Image) *raster.Image { return Temperature(m, 6500) }},
		{"tint", func(m *raster.Image) *raster.Image { return Tint(m, 0) }},
		{"vibrance", func(m *raster.Image) *raster.Image { return Vibrance(m, 0) }},
		{"saturation", func(m *raster.Image) *raster.Image { return Saturation(m, 0) }},
		{"tone curve", func(m *raster.Image) *raster.Image {
			return ToneCurve(m, params.ToneCurve{Points: params.DefaultCurve()})
		}},
		{"hsl", func(m *raster.Image) *raster.Image { return HSL(m, params.HSL{}) }},
		{"split tone", func(m *raster.Image) *raster.Image {
			return SplitTone(m, params.SplitToning{Balance: 40, Highlights: params.ToneZone{Hue: 30}})
		}},
		{"clarity", func(m *raster.Image) *raster.Image { return Clarity(m, 0) }},
		{"texture", func(m *raster.Image) *raster.Image { return Texture(m, 0) }},
		{"dehaze", func(m *raster.Image) *raster.Image { return Dehaze(m, 0) }},
		{"fade", func(m *raster.Image) *raster.Image { return Fade(m, 0) }},
		{"sharpen", func(m *raster.Image) *raster.Image { return Sharpen(m, 0, 1) }},
		{"vignette", func(m *raster.Image) *raster.Image { return Vignette(m, 0) }},
		{"grain", func(m *raster.Image) *raster.Image { return Grain(m, 0, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, img, tt.fn(img))
		})
	}
}

func TestOperationsStayInRangeAndDoNotMutate(t *testing.T) {
	img := randomImage(32, 24, 2)
	orig := img.Clone()

	results := []*raster.Image{
		Exposure(img, 3),
		Exposure(img, -3),
		Contrast(img, 100),
		Highlights(img, -100),
		Shadows(img, 100),
		Whites(img, 100),
		Blacks(img, -100),
		Temperature(img, 2000),
		Temperature(img, 12000),
		Tint(img, 100),
		Vibrance(img, 100),
		Saturation(img, 100),
		ToneCurve(img, params.ToneCurve{Points: params.Curve{{0, 30}, {128, 160}, {255, 230}}}),
		HSL(img, params.HSL{Blue: params.HSLChannel{Hue: 180, Saturation: 100, Luminance: -100}}),
		SplitTone(img, params.SplitToning{
			Highlights: params.ToneZone{Hue: 40, Saturation: 100},
			Midtones:   params.ToneZone{Hue: 120, Saturation: 100},
			Shadows:    params.ToneZone{Hue: 220, Saturation: 100},
			Balance:    -100,
		}),
		Clarity(img, 100),
		Texture(img, -100),
		Dehaze(img, 100),
		Dehaze(img, -100),
		Fade(img, 100),
		Sharpen(img, 100, 5),
		Vignette(img, 100),
		Grain(img, 100, 3),
	}

	for _, out := range results {
		require.Equal(t, img.Width, out.Width)
		require.Equal(t, img.Height, out.Height)
		assertInRange(t, out)
	}
	assert.Equal(t, orig.Pix, img.Pix)
}

func TestExposureBrightensMidGrey(t *testing.T) {
	img := raster.Uniform(10, 10, 0.5)

	up := Exposure(img, 1)
	down := Exposure(img, -1)

	assert.Greater(t, up.Mean(), img.Mean())
	assert.Less(t, down.Mean(), img.Mean())

	for _, ev := range []float64{-3, -1.5, 0.25, 3} {
		assertInRange(t, Exposure(randomImage(8, 8, 4), ev))
	}
}

func TestContrastMinusHundredFlattens(t *testing.T) {
	out := Contrast(randomImage(8, 8, 5), -100)
	for _, v := range out.Pix {
		assert.InDelta(t, 0.5, v, 1e-6)
	}
}

func TestSaturationMinusHundredIsGrey(t *testing.T) {
	out := Saturation(randomImage(20, 20, 6), -100)
	for i := 0; i < len(out.Pix); i += 3 {
		assert.InDelta(t, out.Pix[i], out.Pix[i+1], 1e-5)
		assert.InDelta(t, out.Pix[i+1], out.Pix[i+2], 1e-5)
	}
}

func TestTemperatureShiftsRedAndBlue(t *testing.T) {
	img := raster.Uniform(2, 2, 0.5)

	warm := Temperature(img, 9250)
	r, g, b := warm.At(0, 0)
	assert.InDelta(t, 0.575, r, 1e-5)
	assert.InDelta(t, 0.5, g, 1e-6)
	assert.InDelta(t, 0.425, b, 1e-5)

	cool := Temperature(img, 3750)
	r, _, b = cool.At(1, 1)
	assert.Less(t, r, b)
}

func TestTintMagentaAndGreen(t *testing.T) {
	img := raster.Uniform(1, 1, 0.5)

	r, g, b := Tint(img, 100).At(0, 0)
	assert.InDelta(t, 0.55, r, 1e-6)
	assert.InDelta(t, 0.4, g, 1e-6)
	assert.InDelta(t, 0.55, b, 1e-6)

	_, g, _ = Tint(img, -100).At(0, 0)
	assert.InDelta(t, 0.6, g, 1e-6)
}

func TestVibranceLeavesGreysAlone(t *testing.T) {
	img := raster.Uniform(3, 3, 0.4)
	out := Vibrance(img, 100)
	assert.InDelta(t, 0, out.MaxDiff(img), 1e-6)

	colour := raster.Fill(1, 1, 0.6, 0.4, 0.4)
	_, before, _ := RGBToHSL(0.6, 0.4, 0.4)
	r, g, b := Vibrance(colour, 50).At(0, 0)
	_, after, _ := RGBToHSL(r, g, b)
	assert.Greater(t, after, before)
}

func TestHSLConversionMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	for i := 0; i < 500; i++ {
		r, g, b := rng.Float32(), rng.Float32(), rng.Float32()

		h, s, l := RGBToHSL(r, g, b)
		wantH, wantS, wantL := colorful.Color{R: float64(r), G: float64(g), B: float64(b)}.Hsl()

		assert.InDelta(t, wantS, s, 1e-4)
		assert.InDelta(t, wantL, l, 1e-4)
		if max(r, g, b)-min(r, g, b) > 0.01 {
			assert.InDelta(t, 0, HueDistance(h, float32(wantH)), 1e-2)
		}

		rr, gg, bb := HSLToRGB(h, s, l)
		assert.InDelta(t, r, rr, 1e-4)
		assert.InDelta(t, g, gg, 1e-4)
		assert.InDelta(t, b, bb, 1e-4)
	}
}

func TestHueDistance(t *testing.T) {
	tests := []struct {
		h1, h2, want float32
	}{
		{0, 30, 30},
		{350, 10, 20},
		{-10, 320, 30},
		{180, 0, 180},
		{370, 10, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, HueDistance(tt.h1, tt.h2), 1e-4)
	}
}

func TestBuildLUT(t *testing.T) {
	t.Run("default curve hits its knots", func(t *testing.T) {
		lut := BuildLUT(params.DefaultCurve())
		for _, x := range []int{0, 64, 128, 192, 255} {
			assert.InDelta(t, float32(x)/255, lut[x], 1e-5)
		}
	})

	t.Run("two point curve has zero end slopes", func(t *testing.T) {
		lut := BuildLUT(params.Curve{{0, 0}, {255, 255}})
		smoothstep := func(x float64) float64 {
			t := x / 255
			return 3*t*t - 2*t*t*t
		}
		for _, x := range []int{1, 32, 64, 128, 200, 254} {
			assert.InDelta(t, smoothstep(float64(x)), float64(lut[x]), 1e-5, "x=%d", x)
		}
		assert.Less(t, lut[64], float32(0.2))
		assert.Greater(t, lut[192], float32(0.8))
	})

	t.Run("fewer than two points is identity", func(t *testing.T) {
		assert.Equal(t, IdentityLUT(), BuildLUT(params.Curve{{128, 200}}))
		assert.Equal(t, IdentityLUT(), BuildLUT(nil))
	})

	t.Run("s curve is monotone and hits knots", func(t *testing.T) {
		lut := BuildLUT(params.Curve{{255, 255}, {0, 0}, {64, 40}, {192, 215}, {128, 128}})
		for i := 1; i < len(lut); i++ {
			assert.GreaterOrEqual(t, lut[i], lut[i-1])
		}
		assert.InDelta(t, 40.0/255, lut[64], 1e-5)
		assert.InDelta(t, 215.0/255, lut[192], 1e-5)
	})

	t.Run("flat outside the knots", func(t *testing.T) {
		lut := BuildLUT(params.Curve{{32, 20}, {224, 240}})
		assert.InDelta(t, 20.0/255, lut[0], 1e-6)
		assert.InDelta(t, 240.0/255, lut[255], 1e-6)
	})

	t.Run("duplicate x keeps last", func(t *testing.T) {
		lut := BuildLUT(params.Curve{{0, 0}, {128, 10}, {128, 100}, {255, 255}})
		assert.InDelta(t, 100.0/255, lut[128], 1e-5)
	})
}

func TestToneCurveDefaultIsIdentity(t *testing.T) {
	img := randomImage(10, 10, 10)

	// Same curve built from a distinct slice still short-circuits.
	out := ToneCurve(img, params.ToneCurve{Points: params.Curve{{0, 0}, {64, 64}, {128, 128}, {192, 192}, {255, 255}}})
	assert.Same(t, img, out)

	// A default master stays identity when only a channel curve is set.
	out = ToneCurve(img, params.ToneCurve{Points: params.DefaultCurve(), Blue: params.Curve{{0, 0}, {255, 255}}})
	for y := range 10 {
		for x := range 10 {
			r, g, _ := out.At(x, y)
			r0, g0, _ := img.At(x, y)
			assert.InDelta(t, r0, r, 1e-5)
			assert.InDelta(t, g0, g, 1e-5)
		}
	}
}

func TestToneCurveChannelOverride(t *testing.T) {
	img := raster.Uniform(2, 2, 0.5)
	out := ToneCurve(img, params.ToneCurve{
		Points: params.DefaultCurve(),
		Blue:   params.Curve{{0, 0}, {255, 128}},
	})
	r, g, b := out.At(0, 0)
	assert.InDelta(t, 0.5, r, 1e-5)
	assert.InDelta(t, 0.5, g, 1e-5)
	assert.Less(t, b, float32(0.3))
}

func TestHSLBandWeights(t *testing.T) {
	var red HueBand
	for _, b := range HueBands {
		if b.Name == "red" {
			red = b
		}
	}
	assert.InDelta(t, 1, red.Weight(0), 1e-6)
	assert.InDelta(t, 0.5, red.Weight(345), 1e-5)
	assert.InDelta(t, 0, red.Weight(60), 1e-6)
	require.Len(t, HueBands, len(params.HSLChannelNames))
	for i, b := range HueBands {
		assert.Equal(t, params.HSLChannelNames[i], b.Name)
	}
}

func TestHSLWeightsUseOriginalHue(t *testing.T) {
	// A red pixel shifted towards orange is not picked up by the orange band.
	img := raster.New(1, 1)
	img.Set(0, 0, 1, 0, 0)

	redOnly := HSL(img, params.HSL{Red: params.HSLChannel{Hue: 40}})
	both := HSL(img, params.HSL{Red: params.HSLChannel{Hue: 40}, Orange: params.HSLChannel{Hue: 30}})
	assert.InDelta(t, 0, both.MaxDiff(redOnly), 1e-6)

	h, _, _ := RGBToHSL(both.At(0, 0))
	assert.InDelta(t, 40, h, 0.5)
}

func TestHSLTargetsBand(t *testing.T) {
	// Pure blue and pure red pixels; desaturate blue only.
	img := raster.New(2, 1)
	img.Set(0, 0, 0, 0, 1)
	img.Set(1, 0, 1, 0, 0)

	out := HSL(img, params.HSL{Blue: params.HSLChannel{Saturation: -100}})

	r, g, b := out.At(0, 0)
	assert.InDelta(t, r, b, 1e-5)
	assert.InDelta(t, g, b, 1e-5)

	r, g, b = out.At(1, 0)
	assert.InDelta(t, 1, r, 1e-5)
	assert.InDelta(t, 0, g, 1e-5)
	assert.InDelta(t, 0, b, 1e-5)

	grey := raster.Uniform(2, 2, 0.3)
	assert.InDelta(t, 0, HSL(grey, params.HSL{Red: params.HSLChannel{Luminance: 100}}).MaxDiff(grey), 1e-6)
}

func TestSplitToneZones(t *testing.T) {
	img := raster.New(3, 1)
	img.Set(0, 0, 0.05, 0.05, 0.05)
	img.Set(1, 0, 0.5, 0.5, 0.5)
	img.Set(2, 0, 0.95, 0.95, 0.95)

	// Hue 0 tints towards red.
	highlights := SplitTone(img, params.SplitToning{Highlights: params.ToneZone{Hue: 0, Saturation: 100}})
	r, _, b := highlights.At(2, 0)
	assert.Greater(t, r, b)
	r, _, b = highlights.At(0, 0)
	assert.InDelta(t, r, b, 1e-6)

	mid := SplitTone(img, params.SplitToning{Midtones: params.ToneZone{Hue: 0, Saturation: 100}})
	r, _, b = mid.At(1, 0)
	assert.Greater(t, r, b)
	r0, _, b0 := mid.At(0, 0)
	assert.Less(t, r0-b0, r-b)

	shadows := SplitTone(img, params.SplitToning{Shadows: params.ToneZone{Hue: 240, Saturation: 100}})
	r, _, b = shadows.At(0, 0)
	assert.Greater(t, b, r)
}

func TestVignetteDarkensCorners(t *testing.T) {
	img := raster.Uniform(100, 80, 0.5)
	out := Vignette(img, -60)

	center := out.MeanRect(image.Rect(40, 30, 60, 50))
	corner := out.MeanRect(image.Rect(0, 0, 10, 10))
	assert.Less(t, corner, center)

	out = Vignette(img, 60)
	assert.Greater(t, out.MeanRect(image.Rect(0, 0, 10, 10)), out.MeanRect(image.Rect(40, 30, 60, 50)))
}

func TestFadeLiftsBlacks(t *testing.T) {
	img := raster.New(2, 1)
	img.Set(1, 0, 1, 1, 1)

	out := Fade(img, 50)
	r, _, _ := out.At(0, 0)
	assert.InDelta(t, 0.1, r, 1e-6)
	r, _, _ = out.At(1, 0)
	assert.InDelta(t, 1, r, 1e-6)
}

func TestGrainIsDeterministic(t *testing.T) {
	img := raster.Uniform(16, 16, 0.5)
	a := Grain(img, 100, 42)
	b := Grain(img, 100, 42)
	assert.Equal(t, a.Pix, b.Pix)
	assert.Greater(t, a.MaxDiff(img), 0.0)
	assert.Less(t, a.MaxDiff(img), 0.05)
}

func TestDehazeIncreasesContrastOfHazyImage(t *testing.T) {
	img := raster.New(20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := float32(0.55 + 0.2*float64(x)/19)
			img.Set(x, y, v, v, v+0.05)
		}
	}

	out := Dehaze(img, 60)
	spread := func(m *raster.Image) float32 {
		r0, _, _ := m.At(0, 10)
		r1, _, _ := m.At(19, 10)
		return r1 - r0
	}
	assert.Greater(t, spread(out), spread(img))
	assertInRange(t, out)
}

func TestClarityIgnoresFlatAreas(t *testing.T) {
	img := raster.Uniform(30, 30, 0.4)
	out := Clarity(img, 100)
	assert.InDelta(t, 0, out.MaxDiff(img), 1e-5)
}

func TestSharpenIncreasesEdgeContrast(t *testing.T) {
	img := raster.New(20, 1)
	for x := 10; x < 20; x++ {
		img.Set(x, 0, 0.8, 0.8, 0.8)
	}
	for x := 0; x < 10; x++ {
		img.Set(x, 0, 0.2, 0.2, 0.2)
	}

	out := Sharpen(img, 100, 1)
	left, _, _ := out.At(9, 0)
	right, _, _ := out.At(10, 0)
	assert.Less(t, left, float32(0.2))
	assert.Greater(t, right, float32(0.8))
}

func TestGaussianBlur(t *testing.T) {
	for _, sigma := range []float64{1, 3, 20} {
		plane := make([]float32, 40*30)
		for i := range plane {
			plane[i] = 0.25
		}
		out := GaussianBlur(plane, 40, 30, sigma)
		for _, v := range out {
			assert.InDelta(t, 0.25, v, 1e-4)
		}
	}

	impulse := make([]float32, 21*21)
	impulse[10*21+10] = 1
	out := GaussianBlur(impulse, 21, 21, 2)
	var sum float32
	for _, v := range out {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-4)
	assert.Less(t, out[10*21+10], float32(1))
	assert.Equal(t, float32(1), impulse[10*21+10])

	assert.InDelta(t, 0.8, KernelSigma(3), 1e-9)
	assert.Equal(t, []int{9, 9, 11}, boxSizes(5, 3))
}
