package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/vector"
)

// Asset names a built-in placeholder picture.
type Asset int

const (
	AssetDefault Asset = iota
	AssetError
	AssetFolder
	AssetBack
	AssetPDF
)

// AssetSize is the edge length of built-in asset rasters.
const AssetSize = 256

var assetFiles = map[Asset]string{
	AssetDefault: "default.png",
	AssetError:   "error.png",
	AssetFolder:  "folder.png",
	AssetBack:    "back.png",
	AssetPDF:     "pdf.png",
}

// FileName returns the override file name looked up in an assets directory.
func (a Asset) FileName() string {
	return assetFiles[a]
}

func (a Asset) String() string {
	switch a {
	case AssetDefault:
		return "default"
	case AssetError:
		return "error"
	case AssetFolder:
		return "folder"
	case AssetBack:
		return "back"
	case AssetPDF:
		return "pdf"
	}
	return "unknown"
}

// Assets resolves placeholder pictures, preferring files in Dir and
// falling back to the drawn versions.
type Assets struct {
	Dir string

	mu    sync.Mutex
	cache map[Asset]*Raster
}

// NewAssets returns an asset set rooted at dir. An empty dir uses only built-ins.
func NewAssets(dir string) *Assets {
	return &Assets{Dir: dir, cache: make(map[Asset]*Raster)}
}

// Get returns a copy of the asset; the caller owns it.
func (s *Assets) Get(a Asset) *Raster {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		s.cache = make(map[Asset]*Raster)
	}
	if r, ok := s.cache[a]; ok {
		return r.Clone()
	}
	r := s.load(a)
	s.cache[a] = r
	return r.Clone()
}

func (s *Assets) load(a Asset) *Raster {
	if s.Dir != "" {
		path := filepath.Join(s.Dir, a.FileName())
		if _, err := os.Stat(path); err == nil {
			if r, err := DecodeImageFile(path); err == nil {
				return r
			}
		}
	}
	return Builtin(a)
}

var (
	bgGrey    = color.RGBA{0x3c, 0x3f, 0x44, 0xff}
	lightGrey = color.RGBA{0xd8, 0xda, 0xde, 0xff}
	accentRed = color.RGBA{0xd0, 0x35, 0x2b, 0xff}
	folderYel = color.RGBA{0xf2, 0xb8, 0x3a, 0xff}
	folderTab = color.RGBA{0xd9, 0x9a, 0x1f, 0xff}
)

// Builtin draws the asset without consulting any directory.
func Builtin(a Asset) *Raster {
	const s = AssetSize
	switch a {
	case AssetError:
		r := New(s, s, bgGrey)
		fillLine(r.img, 64, 64, 192, 192, 22, accentRed)
		fillLine(r.img, 192, 64, 64, 192, 22, accentRed)
		return r
	case AssetFolder:
		r := New(s, s, color.White)
		fillPolygon(r.img, folderTab, 24, 56, 104, 56, 124, 80, 24, 80)
		fillPolygon(r.img, folderYel, 24, 80, 232, 80, 232, 208, 24, 208)
		return r
	case AssetBack:
		r := New(s, s, color.White)
		fillPolygon(r.img, bgGrey, 40, 128, 128, 48, 128, 96, 216, 96, 216, 160, 128, 160, 128, 208)
		return r
	case AssetPDF:
		r := New(s, s, color.White)
		fillPolygon(r.img, bgGrey, 56, 24, 168, 24, 212, 68, 212, 232, 56, 232)
		fillPolygon(r.img, color.White, 64, 32, 160, 32, 160, 76, 204, 76, 204, 224, 64, 224)
		fillPolygon(r.img, accentRed, 56, 132, 212, 132, 212, 180, 56, 180)
		_ = DrawString(r.img, 96, 168, 36, "PDF", color.White)
		return r
	default:
		r := New(s, s, bgGrey)
		fillPolygon(r.img, lightGrey, 40, 56, 216, 56, 216, 200, 40, 200)
		fillPolygon(r.img, bgGrey, 52, 68, 204, 68, 204, 188, 52, 188)
		fillPolygon(r.img, lightGrey, 60, 180, 110, 110, 150, 160, 172, 136, 196, 180)
		return r
	}
}

// fillPolygon fills the closed polygon given as x, y pairs.
func fillPolygon(dst draw.Image, c color.Color, pts ...float32) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	z.MoveTo(pts[0], pts[1])
	for i := 2; i+1 < len(pts); i += 2 {
		z.LineTo(pts[i], pts[i+1])
	}
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// fillLine strokes a straight segment of the given width.
func fillLine(dst draw.Image, x0, y0, x1, y1, width float32, c color.Color) {
	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	fillPolygon(dst, c, x0+nx, y0+ny, x1+nx, y1+ny, x1-nx, y1-ny, x0-nx, y0-ny)
}
