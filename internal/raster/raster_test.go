package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripNRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 10, A: 255})
	src.SetNRGBA(2, 1, color.NRGBA{R: 1, G: 128, B: 254, A: 255})

	img := FromImage(src)
	require.Equal(t, 3, img.Width)
	require.Equal(t, 2, img.Height)

	r, g, b := img.At(0, 0)
	assert.InDelta(t, 1.0, r, 1e-6)
	assert.InDelta(t, 0.0, g, 1e-6)
	assert.InDelta(t, 10.0/255, b, 1e-6)

	back := img.ToNRGBA()
	assert.Equal(t, src.Pix, back.Pix)
}

func TestFromImageGeneric(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 7, 6))
	src.SetGray(6, 5, color.Gray{Y: 51})

	img := FromImage(src)
	r, g, b := img.At(1, 0)
	assert.InDelta(t, 0.2, r, 1e-4)
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestClampAndStats(t *testing.T) {
	img := Uniform(4, 4, 0.5)
	img.Pix[0] = 2
	img.Pix[1] = -1

	clone := img.Clone()
	img.Clamp()
	assert.Equal(t, float32(1), img.Pix[0])
	assert.Equal(t, float32(0), img.Pix[1])
	assert.Equal(t, float32(2), clone.Pix[0])

	assert.InDelta(t, 0.5, Uniform(2, 2, 0.5).Mean(), 1e-9)
	assert.InDelta(t, 0.5, img.MeanRect(image.Rect(1, 1, 3, 3)), 1e-9)
	assert.InDelta(t, 1.0, img.MaxDiff(clone), 1e-6)
	assert.True(t, img.MaxDiff(New(1, 1)) > 1)
}

func TestToNRGBA64Opaque(t *testing.T) {
	img := Fill(1, 1, 0, 0.5, 1)
	out := img.ToNRGBA64()
	c := out.NRGBA64At(0, 0)
	assert.Equal(t, uint16(0xffff), c.A)
	assert.Equal(t, uint16(0xffff), c.B)
	assert.Equal(t, uint16(32768), c.G)
}
