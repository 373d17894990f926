package ops

import (
	"github.com/jmylchreest/colortune/internal/params"
	"github.com/jmylchreest/colortune/internal/raster"
)

// HueBand is the hue range a selective HSL adjustment targets. Pixels at
// Center receive full weight, falling off linearly to zero at Width degrees.
type HueBand struct {
	Name   string
	Center float32
	Width  float32
}

// HueBands are the eight selective colour bands, in the order of
// params.HSLChannelNames. Neighbouring bands overlap.
var HueBands = []HueBand{
	{Name: "red", Center: 0, Width: 30},
	{Name: "orange", Center: 30, Width: 30},
	{Name: "yellow", Center: 60, Width: 30},
	{Name: "green", Center: 120, Width: 60},
	{Name: "aqua", Center: 180, Width: 30},
	{Name: "blue", Center: 240, Width: 40},
	{Name: "purple", Center: 280, Width: 30},
	{Name: "magenta", Center: 320, Width: 30},
}

// Weight returns the band weight in [0, 1] for a hue in degrees.
func (b HueBand) Weight(hue float32) float32 {
	return clampf(1-HueDistance(hue, b.Center)/b.Width, 0, 1)
}

// HSL applies the per-band hue, saturation and luminance shifts. Band
// weights are taken from each pixel's original hue so overlapping bands
// accumulate independently. Achromatic pixels have no hue and are left alone.
func HSL(img *raster.Image, adj params.HSL) *raster.Image {
	channels := adj.Channels()
	active := false
	for _, ch := range channels {
		if !ch.IsZero() {
			active = true
			break
		}
	}
	if !active {
		return img
	}

	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		h, s, l := RGBToHSL(r, g, b)
		if s == 0 {
			return r, g, b
		}
		hue := h
		for i, band := range HueBands {
			ch := channels[i]
			if ch.IsZero() {
				continue
			}
			w := band.Weight(h)
			if w == 0 {
				continue
			}
			hue += float32(ch.Hue) * w
			s = clampf(s+float32(ch.Saturation/100)*w, 0, 1)
			l = clampf(l+float32(ch.Luminance/100)*w*0.5, 0, 1)
		}
		return HSLToRGB(hue, s, l)
	})
}
