// Package raster owns in-memory pixel buffers: decoding image files, scaling,
// built-in placeholder assets and text labels.
package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// Raster is an opaque RGB pixel buffer owned by whichever component produced it.
// Release drops the pixels; a released Raster reports zero size.
type Raster struct {
	img      *image.RGBA
	released bool
}

// New allocates a width x height raster filled with bg.
func New(width, height int, bg color.Color) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return &Raster{img: img}
}

// FromImage copies src into a new raster whose origin is (0, 0).
// Transparent regions are composited over white.
func FromImage(src image.Image) *Raster {
	b := src.Bounds()
	r := New(b.Dx(), b.Dy(), color.White)
	draw.Draw(r.img, r.img.Bounds(), src, b.Min, draw.Over)
	return r
}

// Width returns the pixel width, 0 once released.
func (r *Raster) Width() int {
	if r == nil || r.img == nil {
		return 0
	}
	return r.img.Bounds().Dx()
}

// Height returns the pixel height, 0 once released.
func (r *Raster) Height() int {
	if r == nil || r.img == nil {
		return 0
	}
	return r.img.Bounds().Dy()
}

// RGBA exposes the backing image. It is nil after Release.
func (r *Raster) RGBA() *image.RGBA {
	if r == nil {
		return nil
	}
	return r.img
}

// Release drops the pixel buffer. It reports whether this call did the release,
// so a second call is a no-op returning false.
func (r *Raster) Release() bool {
	if r == nil || r.released {
		return false
	}
	r.released = true
	r.img = nil
	return true
}

// Released reports whether Release has been called.
func (r *Raster) Released() bool {
	return r != nil && r.released
}

// Crop copies the top-left width x height region into a new raster.
// Areas outside the source are white.
func (r *Raster) Crop(width, height int) *Raster {
	out := New(width, height, color.White)
	if r.RGBA() != nil {
		draw.Draw(out.img, out.img.Bounds(), r.img, image.Point{}, draw.Src)
	}
	return out
}

// Clone copies the raster.
func (r *Raster) Clone() *Raster {
	return r.Crop(r.Width(), r.Height())
}
