package ops

import (
	"cmp"
	"math"
	"slices"

	"github.com/jmylchreest/colortune/internal/params"
	"github.com/jmylchreest/colortune/internal/raster"
)

// LUT maps 256 evenly spaced input levels to output values in [0, 1].
type LUT [256]float32

// IdentityLUT returns the straight-line table.
func IdentityLUT() LUT {
	var lut LUT
	for i := range lut {
		lut[i] = float32(i) / 255
	}
	return lut
}

// Lookup evaluates the table at v in [0, 1], interpolating linearly between
// neighbouring entries.
func (l *LUT) Lookup(v float32) float32 {
	f := raster.Clamp01(v) * 255
	i := int(f)
	if i >= 255 {
		return l[255]
	}
	frac := f - float32(i)
	return l[i] + (l[i+1]-l[i])*frac
}

// BuildLUT interpolates the curve control points with a cubic Hermite
// spline. The end tangents are clamped to zero slope and interior tangents
// follow Fritsch-Carlson so the curve never overshoots its knots. Inputs
// beyond the first and last points are held flat at those points. Fewer
// than two distinct points yield the identity table.
func BuildLUT(points params.Curve) LUT {
	xs, ys := curveKnots(points)
	n := len(xs)
	if n < 2 {
		return IdentityLUT()
	}

	// Secant slopes between knots.
	d := make([]float64, n-1)
	for k := range d {
		d[k] = (ys[k+1] - ys[k]) / (xs[k+1] - xs[k])
	}

	// Initial tangents, clamped at both ends.
	m := make([]float64, n)
	for k := 1; k < n-1; k++ {
		if d[k-1]*d[k] <= 0 {
			m[k] = 0
		} else {
			m[k] = (d[k-1] + d[k]) / 2
		}
	}

	// Limit tangents so each segment stays monotone.
	for k := 0; k < n-1; k++ {
		if d[k] == 0 {
			m[k], m[k+1] = 0, 0
			continue
		}
		a := m[k] / d[k]
		b := m[k+1] / d[k]
		if s := a*a + b*b; s > 9 {
			t := 3 / math.Sqrt(s)
			m[k] = t * a * d[k]
			m[k+1] = t * b * d[k]
		}
	}

	var lut LUT
	seg := 0
	for i := range lut {
		x := float64(i)
		var y float64
		switch {
		case x <= xs[0]:
			y = ys[0]
		case x >= xs[n-1]:
			y = ys[n-1]
		default:
			for x > xs[seg+1] {
				seg++
			}
			h := xs[seg+1] - xs[seg]
			t := (x - xs[seg]) / h
			t2, t3 := t*t, t*t*t
			y = (2*t3-3*t2+1)*ys[seg] +
				(t3-2*t2+t)*h*m[seg] +
				(-2*t3+3*t2)*ys[seg+1] +
				(t3-t2)*h*m[seg+1]
		}
		lut[i] = float32(math.Max(0, math.Min(1, y/255)))
	}
	return lut
}

// curveKnots sorts points by x and keeps the last y for duplicate x values.
func curveKnots(points params.Curve) (xs, ys []float64) {
	pts := make([][]int, 0, len(points))
	for _, p := range points {
		if len(p) == 2 {
			pts = append(pts, p)
		}
	}
	slices.SortStableFunc(pts, func(a, b []int) int { return cmp.Compare(a[0], b[0]) })

	for _, p := range pts {
		x, y := float64(p[0]), float64(p[1])
		if n := len(xs); n > 0 && xs[n-1] == x {
			ys[n-1] = y
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

// ToneCurve remaps each channel through the master curve, or through that
// channel's own curve when one is given. The default master curve maps
// through the identity table, so with no channel curves it is a no-op.
func ToneCurve(img *raster.Image, curve params.ToneCurve) *raster.Image {
	if curve.Points.IsDefault() && curve.Red == nil && curve.Green == nil && curve.Blue == nil {
		return img
	}

	master := IdentityLUT()
	if !curve.Points.IsDefault() {
		master = BuildLUT(curve.Points)
	}
	luts := [3]LUT{master, master, master}
	for i, c := range []params.Curve{curve.Red, curve.Green, curve.Blue} {
		if c != nil {
			luts[i] = BuildLUT(c)
		}
	}

	return mapPixels(img, func(r, g, b float32) (float32, float32, float32) {
		return luts[0].Lookup(r), luts[1].Lookup(g), luts[2].Lookup(b)
	})
}
