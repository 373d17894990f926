package samples

import (
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"
)

// Sample image size.
const (
	Width  = 800
	Height = 533
)

const (
	blurSigma = 6.0
	// kappa places cubic control points so four curves approximate an ellipse.
	kappa = 0.5522847498
)

func newRand(id string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// between returns an int in [lo, hi).
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo)
}

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}

// Render paints the scene. The same scene always yields the same pixels.
func Render(s Scene) *image.NRGBA {
	rng := newRand(s.ID)
	bounds := image.Rect(0, 0, Width, Height)
	canvas := image.NewRGBA(bounds)

	paintGradient(canvas, s.Palette[0], s.Palette[1])

	for n := between(rng, 8, 15); n > 0; n-- {
		c := s.Palette[rng.IntN(len(s.Palette))]
		fillEllipse(canvas,
			float32(rng.IntN(Width)), float32(rng.IntN(Height)),
			float32(between(rng, 40, 250)), float32(between(rng, 30, 200)),
			withAlpha(c, uint8(between(rng, 60, 180))))
	}

	horizon := int(Height * (0.4 + rng.Float64()*0.2))
	band := image.Rect(0, horizon, Width, Height)
	draw.Draw(canvas, band, image.NewUniform(withAlpha(s.Palette[2], 140)), image.Point{}, draw.Over)

	for i := 0; i < 3; i++ {
		freq := 0.005 + rng.Float64()*0.015
		amp := 10 + rng.Float64()*20
		phase := rng.Float64() * 2 * math.Pi
		wave(canvas, freq, amp, phase)
	}

	for n := between(rng, 2, 5); n > 0; n-- {
		r := float32(between(rng, 80, 200))
		fillEllipse(canvas,
			float32(rng.IntN(Width)), float32(rng.IntN(Height)), r, r,
			withAlpha(s.Palette[3], uint8(between(rng, 40, 100))))
	}

	return imaging.Blur(canvas, blurSigma)
}

func paintGradient(dst *image.RGBA, top, bottom color.NRGBA) {
	lerp := func(a, b uint8, t float64) uint8 {
		return uint8(float64(a)*(1-t) + float64(b)*t)
	}
	for y := 0; y < Height; y++ {
		t := float64(y) / Height
		c := color.RGBA{R: lerp(top.R, bottom.R, t), G: lerp(top.G, bottom.G, t), B: lerp(top.B, bottom.B, t), A: 0xff}
		for x := 0; x < Width; x++ {
			dst.SetRGBA(x, y, c)
		}
	}
}

// fillEllipse composites a translucent ellipse centred at (cx, cy).
func fillEllipse(dst *image.RGBA, cx, cy, rx, ry float32, c color.NRGBA) {
	z := vector.NewRasterizer(Width, Height)
	kx, ky := rx*kappa, ry*kappa
	z.MoveTo(cx+rx, cy)
	z.CubeTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	z.CubeTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	z.CubeTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	z.CubeTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	z.ClosePath()
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// wave rolls each column vertically by a sinusoidal offset.
func wave(img *image.RGBA, freq, amp, phase float64) {
	col := make([]uint8, Height*4)
	for x := 0; x < Width; x++ {
		shift := int(math.Sin(float64(x)*freq+phase) * amp)
		if shift == 0 {
			continue
		}
		for y := 0; y < Height; y++ {
			copy(col[y*4:y*4+4], img.Pix[img.PixOffset(x, y):])
		}
		for y := 0; y < Height; y++ {
			src := ((y-shift)%Height + Height) % Height
			copy(img.Pix[img.PixOffset(x, y):img.PixOffset(x, y)+4], col[src*4:src*4+4])
		}
	}
}
