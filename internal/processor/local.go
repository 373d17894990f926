package processor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmylchreest/colortune/internal/params"
	"github.com/jmylchreest/colortune/internal/raster"
)

// LocalAdjustment grades one region with its own parameters. Parameters not
// set in the source JSON keep their neutral defaults.
type LocalAdjustment struct {
	Region Region             `json:"region"`
	Params params.ColorParams `json:"parameters"`
}

// UnmarshalJSON decodes the partial parameter set through params.Parse so
// that omitted fields take defaults and out-of-range values are rejected.
func (a *LocalAdjustment) UnmarshalJSON(data []byte) error {
	var raw struct {
		Region     Region          `json:"region"`
		Parameters json.RawMessage `json:"parameters"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p := params.Identity()
	if len(raw.Parameters) > 0 && string(raw.Parameters) != "null" {
		var err error
		if p, err = params.Parse(raw.Parameters); err != nil {
			return err
		}
	}

	a.Region = raw.Region
	a.Params = p
	return nil
}

// ApplyLocalAdjustments blends each adjustment into graded, in list order.
// Every local grade is computed from the ungraded original and composited as
// mask*local + (1-mask)*result, so later regions win where they overlap.
// All regions are validated before any pixel work starts.
func (p *Processor) ApplyLocalAdjustments(original, graded *raster.Image, adjustments []LocalAdjustment) (*raster.Image, error) {
	if !original.SameSize(graded) {
		return nil, fmt.Errorf("graded image is %dx%d, original is %dx%d",
			graded.Width, graded.Height, original.Width, original.Height)
	}
	if len(adjustments) == 0 {
		return graded, nil
	}

	if err := validateRegions(adjustments); err != nil {
		return nil, err
	}

	result := graded.Clone()
	for i, adj := range adjustments {
		mask, err := BuildMask(original.Width, original.Height, adj.Region)
		if err != nil {
			return nil, err
		}
		local := p.ApplyParams(original, adj.Params)
		for j, m := range mask {
			if m == 0 {
				continue
			}
			o := j * 3
			for c := 0; c < 3; c++ {
				result.Pix[o+c] = m*local.Pix[o+c] + (1-m)*result.Pix[o+c]
			}
		}
		p.logger.Debug("applied local adjustment", "index", i, "shape", adj.Region.Shape())
	}
	return result.Clamp(), nil
}

// Grade applies the global parameters and then any local adjustments.
func (p *Processor) Grade(img *raster.Image, cp params.ColorParams, adjustments []LocalAdjustment) (*raster.Image, error) {
	if err := validateRegions(adjustments); err != nil {
		return nil, err
	}
	graded := p.ApplyParams(img, cp)
	return p.ApplyLocalAdjustments(img, graded, adjustments)
}

func validateRegions(adjustments []LocalAdjustment) error {
	for i, adj := range adjustments {
		if err := adj.Region.Validate(); err != nil {
			var rerr *RegionError
			if errors.As(err, &rerr) {
				rerr.Index = i
			}
			return err
		}
	}
	return nil
}
