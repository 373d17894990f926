package ops

import (
	"math"

	"github.com/jmylchreest/colortune/internal/raster"
)

// exactBlurMaxSigma is the largest sigma blurred with a true Gaussian kernel.
// Larger radii use three box passes, which approximate a Gaussian closely at
// constant cost per pixel.
const exactBlurMaxSigma = 4.0

// GaussianBlur blurs a single-channel plane of w*h values. Edges are
// extended by repeating the border pixel. The input is not modified.
func GaussianBlur(plane []float32, w, h int, sigma float64) []float32 {
	out := make([]float32, len(plane))
	copy(out, plane)
	if sigma <= 0 || w == 0 || h == 0 {
		return out
	}

	tmp := make([]float32, len(plane))
	if sigma <= exactBlurMaxSigma {
		kernel := gaussianKernel(sigma)
		convolveH(out, tmp, w, h, kernel)
		convolveV(tmp, out, w, h, kernel)
		return out
	}

	for _, size := range boxSizes(sigma, 3) {
		r := (size - 1) / 2
		boxBlurH(out, tmp, w, h, r)
		boxBlurV(tmp, out, w, h, r)
	}
	return out
}

// BlurImage blurs each channel of img independently.
func BlurImage(img *raster.Image, sigma float64) *raster.Image {
	out := raster.New(img.Width, img.Height)
	n := img.Len()
	plane := make([]float32, n)
	for c := 0; c < 3; c++ {
		for i := 0; i < n; i++ {
			plane[i] = img.Pix[i*3+c]
		}
		blurred := GaussianBlur(plane, img.Width, img.Height, sigma)
		for i := 0; i < n; i++ {
			out.Pix[i*3+c] = blurred[i]
		}
	}
	return out
}

// KernelSigma returns the sigma used for an odd kernel size when none is
// given explicitly, matching the common 0.3*((k-1)*0.5-1)+0.8 convention.
func KernelSigma(size int) float64 {
	return 0.3*(float64(size-1)*0.5-1) + 0.8
}

func gaussianKernel(sigma float64) []float32 {
	radius := int(math.Ceil(sigma * 3))
	kernel := make([]float32, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = float32(v)
		sum += v
	}
	for i := range kernel {
		kernel[i] = float32(float64(kernel[i]) / sum)
	}
	return kernel
}

func convolveH(src, dst []float32, w, h int, kernel []float32) {
	radius := len(kernel) / 2
	for y := 0; y < h; y++ {
		row := src[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var acc float32
			for k, kv := range kernel {
				acc += kv * row[clampIndex(x+k-radius, w)]
			}
			dst[y*w+x] = acc
		}
	}
}

func convolveV(src, dst []float32, w, h int, kernel []float32) {
	radius := len(kernel) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float32
			for k, kv := range kernel {
				acc += kv * src[clampIndex(y+k-radius, h)*w+x]
			}
			dst[y*w+x] = acc
		}
	}
}

// boxSizes returns n odd box widths whose successive application
// approximates a Gaussian of the given sigma.
func boxSizes(sigma float64, n int) []int {
	ideal := math.Sqrt(12*sigma*sigma/float64(n) + 1)
	wl := int(math.Floor(ideal))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2
	mIdeal := (12*sigma*sigma - float64(n*wl*wl) - 4*float64(n*wl) - 3*float64(n)) / (-4*float64(wl) - 4)
	m := int(math.Round(mIdeal))

	sizes := make([]int, n)
	for i := range sizes {
		if i < m {
			sizes[i] = wl
		} else {
			sizes[i] = wu
		}
	}
	return sizes
}

func boxBlurH(src, dst []float32, w, h, r int) {
	scale := 1 / float32(2*r+1)
	for y := 0; y < h; y++ {
		row := src[y*w : (y+1)*w]
		var acc float32
		for j := -r; j <= r; j++ {
			acc += row[clampIndex(j, w)]
		}
		for x := 0; x < w; x++ {
			dst[y*w+x] = acc * scale
			acc += row[clampIndex(x+r+1, w)] - row[clampIndex(x-r, w)]
		}
	}
}

func boxBlurV(src, dst []float32, w, h, r int) {
	scale := 1 / float32(2*r+1)
	for x := 0; x < w; x++ {
		var acc float32
		for j := -r; j <= r; j++ {
			acc += src[clampIndex(j, h)*w+x]
		}
		for y := 0; y < h; y++ {
			dst[y*w+x] = acc * scale
			acc += src[clampIndex(y+r+1, h)*w+x] - src[clampIndex(y-r, h)*w+x]
		}
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
