// Package viewer owns the picture shown in the preview pane and its letterbox geometry.
package viewer

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

// Fit is the paint geometry of content inside a viewport.
type Fit struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// ComputeFit shrinks content that exceeds the viewport in either axis, never
// enlarges it, and centers the result.
func ComputeFit(viewportW, viewportH, contentW, contentH int) Fit {
	if contentW <= 0 || contentH <= 0 {
		return Fit{Scale: 1}
	}
	scale := 1.0
	if contentW > viewportW || contentH > viewportH {
		scale = math.Min(1, math.Min(
			float64(viewportW)/float64(contentW),
			float64(viewportH)/float64(contentH)))
	}
	return Fit{
		Scale:   scale,
		OffsetX: math.Max(0, (float64(viewportW)-float64(contentW)*scale)/2),
		OffsetY: math.Max(0, (float64(viewportH)-float64(contentH)*scale)/2),
	}
}

// Rect returns the destination rectangle of content painted with f.
func (f Fit) Rect(contentW, contentH int) image.Rectangle {
	x0 := int(math.Round(f.OffsetX))
	y0 := int(math.Round(f.OffsetY))
	return image.Rect(x0, y0,
		x0+int(math.Round(float64(contentW)*f.Scale)),
		y0+int(math.Round(float64(contentH)*f.Scale)))
}

// Invalidator requests a repaint of the pane. The viewer never draws on its own.
type Invalidator interface {
	Invalidate()
}

// InvalidatorFunc adapts a function to Invalidator.
type InvalidatorFunc func()

// Invalidate calls f.
func (f InvalidatorFunc) Invalidate() { f() }

// Viewer holds exactly one displayed picture. Every replacement releases the
// previous raster first.
type Viewer struct {
	assets      *raster.Assets
	invalidator Invalidator

	picture   *raster.Raster
	viewportW int
	viewportH int
	fit       Fit
	gen       uint64
}

// New returns a viewer showing the default picture.
func New(assets *raster.Assets, inv Invalidator, viewportW, viewportH int) *Viewer {
	if assets == nil {
		assets = raster.NewAssets("")
	}
	v := &Viewer{
		assets:      assets,
		invalidator: inv,
		viewportW:   viewportW,
		viewportH:   viewportH,
	}
	v.replace(assets.Get(raster.AssetDefault))
	return v
}

// ShowImage displays r; the viewer takes ownership.
func (v *Viewer) ShowImage(r *raster.Raster) {
	if r == nil || r.Released() {
		v.ShowError()
		return
	}
	v.replace(r)
}

// ShowRenderedSurface displays a copy of the top-left width x height region of
// a rendered page. A nil surface shows the error placeholder.
func (v *Viewer) ShowRenderedSurface(r *raster.Raster, width, height int) {
	if r == nil || r.Released() {
		v.ShowError()
		return
	}
	v.replace(r.Crop(width, height))
}

// ShowError displays the built-in error picture.
func (v *Viewer) ShowError() {
	v.replace(v.assets.Get(raster.AssetError))
}

// ShowDefault displays the idle picture.
func (v *Viewer) ShowDefault() {
	v.replace(v.assets.Get(raster.AssetDefault))
}

// SetViewport updates the pane size and recomputes the geometry.
func (v *Viewer) SetViewport(w, h int) {
	if w == v.viewportW && h == v.viewportH {
		return
	}
	v.viewportW, v.viewportH = w, h
	v.recompute()
	v.invalidate()
}

// Picture returns the displayed raster, owned by the viewer.
func (v *Viewer) Picture() *raster.Raster { return v.picture }

// Geometry returns the current paint geometry.
func (v *Viewer) Geometry() Fit { return v.fit }

// Generation increases on every picture replacement.
func (v *Viewer) Generation() uint64 { return v.gen }

// Paint draws the picture letterboxed into dst over bg.
func (v *Viewer) Paint(dst xdraw.Image, bg color.Color) {
	b := dst.Bounds()
	xdraw.Draw(dst, b, image.NewUniform(bg), image.Point{}, xdraw.Src)
	src := v.picture.RGBA()
	if src == nil {
		return
	}
	r := v.fit.Rect(v.picture.Width(), v.picture.Height()).Add(b.Min)
	if v.fit.Scale == 1 {
		xdraw.Draw(dst, r, src, image.Point{}, xdraw.Over)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, r, src, src.Bounds(), xdraw.Over, nil)
}

func (v *Viewer) replace(r *raster.Raster) {
	if v.picture != nil && v.picture != r {
		v.picture.Release()
	}
	v.picture = r
	v.gen++
	v.recompute()
	v.invalidate()
}

func (v *Viewer) recompute() {
	v.fit = ComputeFit(v.viewportW, v.viewportH, v.picture.Width(), v.picture.Height())
}

func (v *Viewer) invalidate() {
	if v.invalidator != nil {
		v.invalidator.Invalidate()
	}
}
