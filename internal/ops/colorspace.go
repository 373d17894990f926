// Package ops implements the pure, per-image colour grading operations.
//
// Every operation takes an RGB image with channels in [0, 1], returns a new
// image clamped to [0, 1] and never modifies its input. An operation called
// with its neutral value returns the input image itself.
package ops

import (
	"math"

	"github.com/jmylchreest/colortune/internal/raster"
)

// Rec. 709 luminance weights.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// Luminance returns the Rec. 709 weighted luminance of an RGB triple.
func Luminance(r, g, b float32) float32 {
	return lumR*r + lumG*g + lumB*b
}

// srgbToLinear removes the sRGB transfer curve.
func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
}

// linearToSrgb applies the sRGB transfer curve.
func linearToSrgb(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return float32(1.055*math.Pow(float64(v), 1/2.4) - 0.055)
}

// RGBToHSL converts RGB to HSL colour space.
// Returns hue (0-360), saturation (0-1), lightness (0-1).
func RGBToHSL(r, g, b float32) (h, s, l float32) {
	maxVal := max(r, g, b)
	minVal := min(r, g, b)
	delta := maxVal - minVal

	l = (maxVal + minVal) / 2

	if delta == 0 {
		return 0, 0, l
	}

	if l < 0.5 {
		s = delta / (maxVal + minVal)
	} else {
		s = delta / (2 - maxVal - minVal)
	}

	switch maxVal {
	case r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}

	h *= 60
	return h, s, l
}

// HSLToRGB converts HSL to RGB colour space.
// h is hue in degrees (any value, wrapped), s and l are in [0, 1].
func HSLToRGB(h, s, l float32) (r, g, b float32) {
	if s == 0 {
		return l, l, l
	}

	var q float32
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	h = wrapHue(h)
	r = hueToRGB(p, q, h+120)
	g = hueToRGB(p, q, h)
	b = hueToRGB(p, q, h-120)
	return r, g, b
}

// hueToRGB is a helper for HSL to RGB conversion.
func hueToRGB(p, q, h float32) float32 {
	h = wrapHue(h)
	switch {
	case h < 60:
		return p + (q-p)*h/60
	case h < 180:
		return q
	case h < 240:
		return p + (q-p)*(240-h)/60
	default:
		return p
	}
}

// wrapHue maps any angle into [0, 360).
func wrapHue(h float32) float32 {
	h = float32(math.Mod(float64(h), 360))
	if h < 0 {
		h += 360
	}
	return h
}

// HueDistance returns the shortest angular distance between two hues, 0-180.
func HueDistance(h1, h2 float32) float32 {
	diff := float32(math.Abs(float64(wrapHue(h1) - wrapHue(h2))))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// mapPixels applies fn to every pixel of src and returns a new clamped image.
func mapPixels(src *raster.Image, fn func(r, g, b float32) (float32, float32, float32)) *raster.Image {
	out := raster.New(src.Width, src.Height)
	for i := 0; i < len(src.Pix); i += 3 {
		r, g, b := fn(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
		out.Pix[i] = raster.Clamp01(r)
		out.Pix[i+1] = raster.Clamp01(g)
		out.Pix[i+2] = raster.Clamp01(b)
	}
	return out
}

// luminancePlane returns the per-pixel luminance of img.
func luminancePlane(img *raster.Image) []float32 {
	plane := make([]float32, img.Len())
	for i := range plane {
		o := i * 3
		plane[i] = Luminance(img.Pix[o], img.Pix[o+1], img.Pix[o+2])
	}
	return plane
}

func clampf(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}
