package ops

import (
	"math"

	"github.com/jmylchreest/colortune/internal/params"
	"github.com/jmylchreest/colortune/internal/raster"
)

// toneColor converts a hue to the RGB tint used for split toning. Each
// channel follows a cosine offset by 120 degrees.
func toneColor(hue float64) [3]float32 {
	rad := hue * math.Pi / 180
	return [3]float32{
		float32(0.5 + 0.5*math.Cos(rad)),
		float32(0.5 + 0.5*math.Cos(rad-2.094)),
		float32(0.5 + 0.5*math.Cos(rad+2.094)),
	}
}

// SplitTone tints highlights, midtones and shadows. Balance in [-100, 100]
// moves the midpoint between shadows and highlights; midtone weight peaks at
// that midpoint and falls to zero at black and white.
func SplitTone(img *raster.Image, st params.SplitToning) *raster.Image {
	if st.Highlights.Saturation == 0 && st.Midtones.Saturation == 0 && st.Shadows.Saturation == 0 {
		return img
	}

	mid := float32(0.5 + st.Balance/200)
	const eps = 1e-10

	type zone struct {
		tint     [3]float32
		strength float32
		weight   func(l float32) float32
	}
	var zones []zone
	add := func(z params.ToneZone, weight func(l float32) float32) {
		if z.Saturation == 0 {
			return
		}
		zones = append(zones, zone{
			tint:     toneColor(z.Hue),
			strength: float32(z.Saturation / 100 * 0.3),
			weight:   weight,
		})
	}

	add(st.Highlights, func(l float32) float32 {
		return clampf((l-mid)/(1-mid+eps), 0, 1)
	})
	add(st.Midtones, func(l float32) float32 {
		if l >= mid {
			return clampf(1-(l-mid)/(1-mid+eps), 0, 1)
		}
		return clampf(1-(mid-l)/(mid+eps), 0, 1)
	})
	add(st.Shadows, func(l float32) float32 {
		return clampf((mid-l)/(mid+eps), 0, 1)
	})

	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		l := Luminance(r, g, b)
		for _, z := range zones {
			w := z.strength * z.weight(l)
			r += w * (z.tint[0] - 0.5)
			g += w * (z.tint[1] - 0.5)
			b += w * (z.tint[2] - 0.5)
		}
		return r, g, b
	})
}
