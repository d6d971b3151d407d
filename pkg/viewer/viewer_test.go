package viewer

import (
	"image"
	"image/color"
	"testing"

	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

func TestComputeFit(t *testing.T) {
	tests := []struct {
		name               string
		vw, vh, cw, ch     int
		scale, offX, offY float64
	}{
		{"wide content shrinks", 800, 600, 1600, 300, 0.5, 0, 225},
		{"small content is centered", 800, 600, 400, 300, 1, 200, 150},
		{"tall content shrinks", 800, 600, 300, 1200, 0.5, 325, 0},
		{"exact fit", 800, 600, 800, 600, 1, 0, 0},
		{"one axis exceeds", 800, 600, 900, 100, 800.0 / 900.0, 0, (600 - 100*800.0/900.0) / 2},
		{"empty content", 800, 600, 0, 0, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ComputeFit(tt.vw, tt.vh, tt.cw, tt.ch)
			if !near(f.Scale, tt.scale) || !near(f.OffsetX, tt.offX) || !near(f.OffsetY, tt.offY) {
				t.Errorf("ComputeFit(%d,%d,%d,%d) = %+v, want {%v %v %v}",
					tt.vw, tt.vh, tt.cw, tt.ch, f, tt.scale, tt.offX, tt.offY)
			}
		})
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func TestFitRect(t *testing.T) {
	f := ComputeFit(800, 600, 1600, 300)
	if got := f.Rect(1600, 300); got != image.Rect(0, 225, 800, 375) {
		t.Errorf("unexpected rect %v", got)
	}
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate() { c.n++ }

func TestViewerReplacesAndReleases(t *testing.T) {
	inv := &countingInvalidator{}
	v := New(raster.NewAssets(""), inv, 800, 600)

	initial := v.Picture()
	if initial == nil || initial.Width() != raster.AssetSize {
		t.Fatal("viewer should start with the default picture")
	}

	img := raster.New(400, 300, color.Black)
	v.ShowImage(img)
	if !initial.Released() {
		t.Error("default picture should be released on replacement")
	}
	if v.Picture() != img {
		t.Error("ShowImage should take ownership of the raster")
	}
	if g := v.Geometry(); g.Scale != 1 || g.OffsetX != 200 || g.OffsetY != 150 {
		t.Errorf("unexpected geometry %+v", g)
	}
	if inv.n < 2 {
		t.Errorf("expected repaint requests, got %d", inv.n)
	}
}

func TestShowRenderedSurfaceCopies(t *testing.T) {
	v := New(nil, nil, 800, 600)
	surface := raster.New(595, 842, color.White)

	v.ShowRenderedSurface(surface, 595, 842)
	if v.Picture() == surface {
		t.Fatal("viewer must own a copy of the rendered surface")
	}
	surface.Release()
	if v.Picture().Released() || v.Picture().Width() != 595 {
		t.Error("copy should outlive the session surface")
	}

	scale := v.Geometry().Scale
	if !near(scale, 600.0/842.0) {
		t.Errorf("expected page scaled to viewport height, got %v", scale)
	}
}

func TestShowRenderedSurfaceNilShowsError(t *testing.T) {
	v := New(nil, nil, 800, 600)
	before := v.Generation()
	v.ShowRenderedSurface(nil, 595, 842)

	want := raster.Builtin(raster.AssetError)
	got := v.Picture()
	if got == nil || got.Width() != want.Width() {
		t.Fatal("expected error placeholder")
	}
	if got.RGBA().RGBAAt(0, 0) != want.RGBA().RGBAAt(0, 0) {
		t.Error("placeholder pixels differ from the error asset")
	}
	if v.Generation() == before {
		t.Error("generation should advance")
	}
}

func TestPaintLetterboxes(t *testing.T) {
	v := New(nil, nil, 100, 100)
	v.ShowImage(raster.New(50, 20, color.Black))

	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	v.Paint(dst, color.White)
	if got := dst.RGBAAt(50, 50); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("expected picture at center, got %v", got)
	}
	if got := dst.RGBAAt(50, 5); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected letterbox margin, got %v", got)
	}

	v.ShowImage(raster.New(400, 100, color.Black))
	v.Paint(dst, color.White)
	if got := dst.RGBAAt(50, 50); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("expected scaled picture at center, got %v", got)
	}
	if got := dst.RGBAAt(50, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected margin above scaled picture, got %v", got)
	}
}

func TestSetViewportRecomputes(t *testing.T) {
	v := New(nil, nil, 800, 600)
	v.ShowImage(raster.New(400, 300, color.Black))
	v.SetViewport(200, 300)
	if g := v.Geometry(); g.Scale != 0.5 || g.OffsetX != 0 || g.OffsetY != 75 {
		t.Errorf("unexpected geometry after resize %+v", g)
	}
}
