package processor

import (
	"fmt"
	"math"

	"github.com/jmylchreest/colortune/internal/ops"
)

// Shape is the geometry of a selection region.
type Shape string

const (
	ShapeRect    Shape = "rect"
	ShapeEllipse Shape = "ellipse"
)

// DefaultFeather is the feather applied when a region does not set one.
const DefaultFeather = 20.0

// Region is a selection in normalised image coordinates. X and Y locate the
// top-left corner; Width and Height are fractions of the image size.
type Region struct {
	Type    Shape    `json:"type"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Feather *float64 `json:"feather,omitempty"`
}

// FeatherOrDefault returns the feather amount in [0, 100].
func (r Region) FeatherOrDefault() float64 {
	if r.Feather == nil {
		return DefaultFeather
	}
	return *r.Feather
}

// Shape returns the region's geometry. An unset type means ShapeRect.
func (r Region) Shape() Shape {
	if r.Type == "" {
		return ShapeRect
	}
	return r.Type
}

// RegionError reports a malformed selection region.
type RegionError struct {
	// Index is the position of the region in its adjustment list, or -1.
	Index int
	Field string
	Value any
}

func (e *RegionError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("region %d: invalid %s: %v", e.Index, e.Field, e.Value)
	}
	return fmt.Sprintf("region: invalid %s: %v", e.Field, e.Value)
}

// Validate checks the shape and that every coordinate lies in [0, 1].
func (r Region) Validate() error {
	switch r.Shape() {
	case ShapeRect, ShapeEllipse:
	default:
		return &RegionError{Index: -1, Field: "type", Value: r.Type}
	}

	coords := []struct {
		name string
		v    float64
	}{
		{"x", r.X}, {"y", r.Y}, {"width", r.Width}, {"height", r.Height},
	}
	for _, c := range coords {
		if math.IsNaN(c.v) || c.v < 0 || c.v > 1 {
			return &RegionError{Index: -1, Field: c.name, Value: c.v}
		}
	}

	if f := r.FeatherOrDefault(); math.IsNaN(f) || f < 0 || f > 100 {
		return &RegionError{Index: -1, Field: "feather", Value: f}
	}
	return nil
}

// BuildMask rasterises region into a w*h mask with values in [0, 1], then
// feathers it with a Gaussian whose kernel grows with the feather amount and
// the shorter image side.
func BuildMask(w, h int, region Region) ([]float32, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}

	mask := make([]float32, w*h)
	px := int(region.X * float64(w))
	py := int(region.Y * float64(h))
	pw := int(region.Width * float64(w))
	ph := int(region.Height * float64(h))

	switch region.Shape() {
	case ShapeRect:
		for y := max(py, 0); y < min(py+ph, h); y++ {
			for x := max(px, 0); x < min(px+pw, w); x++ {
				mask[y*w+x] = 1
			}
		}
	case ShapeEllipse:
		rx, ry := float64(pw)/2, float64(ph)/2
		if rx < 1 || ry < 1 {
			return mask, nil
		}
		cx, cy := float64(px)+rx, float64(py)+ry
		for y := 0; y < h; y++ {
			dy := (float64(y) - cy) / ry
			for x := 0; x < w; x++ {
				dx := (float64(x) - cx) / rx
				if dx*dx+dy*dy <= 1 {
					mask[y*w+x] = 1
				}
			}
		}
	}

	if feather := region.FeatherOrDefault(); feather > 0 {
		size := max(int(feather/100*float64(min(w, h))*0.1), 1)*2 + 1
		mask = ops.GaussianBlur(mask, w, h, ops.KernelSigma(size))
	}
	return mask, nil
}
