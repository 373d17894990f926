package ops

import (
	"math"

	"github.com/jmylchreest/colortune/internal/raster"
)

// Exposure scales linear light by 2^ev. The image is converted out of and
// back into sRGB around the multiplication.
func Exposure(img *raster.Image, ev float64) *raster.Image {
	if ev == 0 {
		return img
	}
	gain := float32(math.Pow(2, ev))
	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		return linearToSrgb(srgbToLinear(r) * gain),
			linearToSrgb(srgbToLinear(g) * gain),
			linearToSrgb(srgbToLinear(b) * gain)
	})
}

// Contrast expands or compresses values around mid-grey. amount is in
// [-100, 100]; -100 flattens the image to 0.5.
func Contrast(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	factor := float32((amount + 100) / 100)
	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		return 0.5 + factor*(r-0.5), 0.5 + factor*(g-0.5), 0.5 + factor*(b-0.5)
	})
}

// Highlights brightens or darkens pixels with luminance above 0.5.
func Highlights(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	strength := float32(amount / 100)
	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		w := clampf((Luminance(r, g, b)-0.5)*2, 0, 1)
		adj := strength * w * w * 0.5
		return r + adj, g + adj, b + adj
	})
}

// Shadows brightens or darkens pixels with luminance below 0.5.
func Shadows(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	strength := float32(amount / 100)
	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		w := clampf((0.5-Luminance(r, g, b))*2, 0, 1)
		adj := strength * w * w * 0.5
		return r + adj, g + adj, b + adj
	})
}

// Whites moves the white point, affecting luminance above 0.7.
func Whites(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	strength := float32(amount / 200)
	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		adj := strength * clampf((Luminance(r, g, b)-0.7)*3.3, 0, 1)
		return r + adj, g + adj, b + adj
	})
}

// Blacks moves the black point, affecting luminance below 0.3.
func Blacks(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	strength := float32(amount / 200)
	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		adj := strength * clampf((0.3-Luminance(r, g, b))*3.3, 0, 1)
		return r + adj, g + adj, b + adj
	})
}
