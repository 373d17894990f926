package ops

import (
	"github.com/jmylchreest/colortune/internal/params"
	"github.com/jmylchreest/colortune/internal/raster"
)

// Temperature shifts white balance. 6500K is neutral; warmer values add red
// and remove blue, cooler values do the opposite.
func Temperature(img *raster.Image, kelvin float64) *raster.Image {
	if kelvin == params.NeutralTemperature {
		return img
	}
	strength := float32((kelvin - params.NeutralTemperature) / 5500 * 0.15)
	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		return r + strength, g, b - strength
	})
}

// Tint shifts along the green-magenta axis. Positive values are magenta.
func Tint(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	strength := float32(amount / 100 * 0.1)
	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		return r + strength*0.5, g - strength, b + strength*0.5
	})
}

// Vibrance raises saturation more for muted colours than for saturated ones.
func Vibrance(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	strength := float32(amount / 100)
	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		h, s, l := RGBToHSL(r, g, b)
		if s == 0 {
			// Greys have no hue to saturate towards.
			return r, g, b
		}
		s = clampf(s+strength*(1-s)*0.5, 0, 1)
		return HSLToRGB(h, s, l)
	})
}

// Saturation scales every pixel's distance from its luminance grey.
// -100 produces a fully grey image.
func Saturation(img *raster.Image, amount float64) *raster.Image {
	if amount == 0 {
		return img
	}
	factor := float32((amount + 100) / 100)
	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		gray := Luminance(r, g, b)
		return gray + factor*(r-gray), gray + factor*(g-gray), gray + factor*(b-gray)
	})
}
