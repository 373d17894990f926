// Package raster provides the floating point RGB buffer that every image
// operation reads and writes.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Image is a row-major, interleaved RGB buffer with channel values nominally
// in [0, 1].
type Image struct {
	Width  int
	Height int
	// Pix holds R, G, B for each pixel; len(Pix) == Width*Height*3.
	Pix []float32
}

// New allocates a black image.
func New(width, height int) *Image {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("raster: invalid dimensions %dx%d", width, height))
	}
	return &Image{Width: width, Height: height, Pix: make([]float32, width*height*3)}
}

// Uniform returns an image with every channel of every pixel set to v.
func Uniform(width, height int, v float32) *Image {
	img := New(width, height)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// Fill returns an image with every pixel set to r, g, b.
func Fill(width, height int, r, g, b float32) *Image {
	img := New(width, height)
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
	}
	return img
}

// Len returns the number of pixels.
func (m *Image) Len() int {
	return m.Width * m.Height
}

// Offset returns the index in Pix of the red channel at (x, y).
func (m *Image) Offset(x, y int) int {
	return (y*m.Width + x) * 3
}

// At returns the RGB values at (x, y).
func (m *Image) At(x, y int) (r, g, b float32) {
	i := m.Offset(x, y)
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// Set stores the RGB values at (x, y).
func (m *Image) Set(x, y int, r, g, b float32) {
	i := m.Offset(x, y)
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := &Image{Width: m.Width, Height: m.Height, Pix: make([]float32, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// SameSize reports whether m and o have identical dimensions.
func (m *Image) SameSize(o *Image) bool {
	return m.Width == o.Width && m.Height == o.Height
}

// Clamp limits every channel to [0, 1] in place and returns m.
func (m *Image) Clamp() *Image {
	for i, v := range m.Pix {
		m.Pix[i] = Clamp01(v)
	}
	return m
}

// Mean returns the mean of all channels of all pixels.
func (m *Image) Mean() float64 {
	if len(m.Pix) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m.Pix {
		sum += float64(v)
	}
	return sum / float64(len(m.Pix))
}

// MeanRect returns the mean channel value inside r, clipped to the image.
func (m *Image) MeanRect(r image.Rectangle) float64 {
	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))
	if r.Empty() {
		return 0
	}
	var sum float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.Pix[m.Offset(r.Min.X, y):m.Offset(r.Max.X, y)]
		for _, v := range row {
			sum += float64(v)
		}
	}
	return sum / float64(r.Dx()*r.Dy()*3)
}

// MaxDiff returns the largest absolute channel difference between m and o.
// It returns +Inf when the sizes differ.
func (m *Image) MaxDiff(o *Image) float64 {
	if !m.SameSize(o) {
		return math.Inf(1)
	}
	var d float64
	for i, v := range m.Pix {
		d = math.Max(d, math.Abs(float64(v-o.Pix[i])))
	}
	return d
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FromImage converts any decoded image to a float buffer, dropping alpha.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	img := New(b.Dx(), b.Dy())

	if nrgba, ok := src.(*image.NRGBA); ok {
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				o := nrgba.PixOffset(b.Min.X+x, b.Min.Y+y)
				s := nrgba.Pix[o : o+3]
				img.Set(x, y, float32(s[0])/255, float32(s[1])/255, float32(s[2])/255)
			}
		}
		return img
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := color.NRGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			img.Set(x, y, float32(c.R)/65535, float32(c.G)/65535, float32(c.B)/65535)
		}
	}
	return img
}

// ToNRGBA converts to an opaque 8-bit image, rounding to the nearest level.
func (m *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, b := m.At(x, y)
			o := out.PixOffset(x, y)
			out.Pix[o] = to8(r)
			out.Pix[o+1] = to8(g)
			out.Pix[o+2] = to8(b)
			out.Pix[o+3] = 255
		}
	}
	return out
}

// ToNRGBA64 converts to an opaque 16-bit image for lossless formats.
func (m *Image) ToNRGBA64() *image.NRGBA64 {
	out := image.NewNRGBA64(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, b := m.At(x, y)
			out.SetNRGBA64(x, y, color.NRGBA64{R: to16(r), G: to16(g), B: to16(b), A: 0xffff})
		}
	}
	return out
}

func to8(v float32) uint8 {
	return uint8(Clamp01(v)*255 + 0.5)
}

func to16(v float32) uint16 {
	return uint16(Clamp01(v)*65535 + 0.5)
}
