package ops

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/jmylchreest/colortune/internal/raster"
)

const (
	claritySigma     = 20.0
	clarityThreshold = 0.02
	clarityGain      = 0.3

	textureSigma     = 3.0
	textureThreshold = 0.005
	textureGain      = 0.5

	dehazeTopFraction   = 0.001
	dehazeMinAtmosphere = 0.2
	dehazeGain          = 0.7
	dehazeMinTransmit   = 0.3

	fadeMaxLift = 0.2
	grainMaxSD  = 0.005
	sharpenGain = 1.0
)

// Clarity adds large-radius local contrast from the luminance high-pass.
// Detail below a small threshold is ignored so flat areas do not gain noise.
func Clarity(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	return addLuminanceDetail(img, float32(amount/100*clarityGain), claritySigma, clarityThreshold)
}

// Texture adds or removes fine detail using a small-radius luminance
// high-pass. Negative amounts smooth.
func Texture(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	return addLuminanceDetail(img, float32(amount/100*textureGain), textureSigma, textureThreshold)
}

func addLuminanceDetail(img *raster.Image, gain float32, sigma float64, threshold float32) *raster.Image {
	lum := luminancePlane(img)
	blurred := GaussianBlur(lum, img.Width, img.Height, sigma)

	out := raster.New(img.Width, img.Height)
	for i, l := range lum {
		hp := l - blurred[i]
		if hp < threshold && hp > -threshold {
			hp = 0
		}
		d := gain * hp
		o := i * 3
		out.Pix[o] = raster.Clamp01(img.Pix[o] + d)
		out.Pix[o+1] = raster.Clamp01(img.Pix[o+1] + d)
		out.Pix[o+2] = raster.Clamp01(img.Pix[o+2] + d)
	}
	return out
}

// Dehaze removes (positive) or adds (negative) haze with a simplified
// dark-channel prior. Atmospheric light is the mean colour of the brightest
// 0.1% of the dark channel, and transmission never drops below 0.3.
func Dehaze(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 || img.Len() == 0 {
		return img
	}
	strength := float32(amount / 100)
	atm := atmosphericLight(img)

	out := raster.New(img.Width, img.Height)
	for i := 0; i < len(img.Pix); i += 3 {
		minNorm := min(img.Pix[i]/atm[0], img.Pix[i+1]/atm[1], img.Pix[i+2]/atm[2])
		t := max(1-strength*dehazeGain*minNorm, dehazeMinTransmit)
		for c := 0; c < 3; c++ {
			out.Pix[i+c] = raster.Clamp01((img.Pix[i+c]-atm[c])/t + atm[c])
		}
	}
	return out
}

func atmosphericLight(img *raster.Image) [3]float32 {
	n := img.Len()
	dark := make([]float32, n)
	for i := range dark {
		o := i * 3
		dark[i] = min(img.Pix[o], img.Pix[o+1], img.Pix[o+2])
	}

	k := max(int(float64(n)*dehazeTopFraction), 1)
	sorted := slices.Clone(dark)
	slices.Sort(sorted)
	threshold := sorted[n-k]

	var sum [3]float64
	count := 0
	for i, d := range dark {
		if d < threshold || count == k {
			continue
		}
		o := i * 3
		sum[0] += float64(img.Pix[o])
		sum[1] += float64(img.Pix[o+1])
		sum[2] += float64(img.Pix[o+2])
		count++
	}

	var atm [3]float32
	for c := range atm {
		atm[c] = max(float32(sum[c]/float64(count)), dehazeMinAtmosphere)
	}
	return atm
}

// Fade lifts the black point towards grey while keeping white at 1,
// giving a matte look. amount is in [0, 100].
func Fade(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	lift := float32(amount / 100 * fadeMaxLift)
	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		return lift + (1-lift)*r, lift + (1-lift)*g, lift + (1-lift)*b
	})
}

// Sharpen applies an unsharp mask with a Gaussian of the given radius.
// amount is in [0, 100].
func Sharpen(img *raster.Image, amount, radius float64) *raster.Image {
	if amount == 0 {
		return img
	}
	gain := float32(amount / 100 * sharpenGain)
	blurred := BlurImage(img, radius)
	out := raster.New(img.Width, img.Height)
	for i, v := range img.Pix {
		out.Pix[i] = raster.Clamp01(v + gain*(v-blurred.Pix[i]))
	}
	return out
}

// Vignette scales brightness by 1 + amount/100 * d^2, where d is the
// distance from the centre normalised to 1 at the corners. Negative amounts
// darken the edges.
func Vignette(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	strength := amount / 100
	cx, cy := float64(img.Width)/2, float64(img.Height)/2
	maxDist := math.Hypot(cx, cy)
	if maxDist == 0 {
		return img
	}

	out := raster.New(img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		dy := float64(y) - cy
		for x := 0; x < img.Width; x++ {
			d := math.Hypot(float64(x)-cx, dy) / maxDist
			f := float32(1 + strength*d*d)
			o := img.Offset(x, y)
			out.Pix[o] = raster.Clamp01(img.Pix[o] * f)
			out.Pix[o+1] = raster.Clamp01(img.Pix[o+1] * f)
			out.Pix[o+2] = raster.Clamp01(img.Pix[o+2] * f)
		}
	}
	return out
}

// Grain adds Gaussian noise with a standard deviation capped at 0.005.
// The noise is drawn from a generator seeded with seed, so identical
// inputs give identical output.
func Grain(img *raster.Image, amount float64, seed uint64) *raster.Image {
	if amount == 0 {
		return img
	}
	sd := min(amount/1000, grainMaxSD)
	rng := rand.New(rand.NewPCG(seed, uint64(img.Width)<<32|uint64(img.Height)))
	out := raster.New(img.Width, img.Height)
	for i, v := range img.Pix {
		out.Pix[i] = raster.Clamp01(v + float32(rng.NormFloat64()*sd))
	}
	return out
}
