package raster

import (
	"image/color"

	"github.com/disintegration/imaging"
)

// ScaleToFit resamples r to exactly width x height with a bilinear filter.
// Aspect ratio is not preserved; callers that letterbox compute offsets themselves.
func ScaleToFit(r *Raster, width, height int) *Raster {
	if width <= 0 || height <= 0 {
		return New(0, 0, color.White)
	}
	if r.RGBA() == nil || r.Width() == 0 || r.Height() == 0 {
		return New(width, height, color.White)
	}
	if r.Width() == width && r.Height() == height {
		return r.Clone()
	}
	return FromImage(imaging.Resize(r.RGBA(), width, height, imaging.Linear))
}
