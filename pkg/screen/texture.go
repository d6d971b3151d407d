package screen

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

// texture is a GPU copy of a CPU picture, rebuilt when its key changes.
type texture struct {
	key  uint64
	size image.Point
	img  *ebiten.Image
}

func (t *texture) valid(key uint64, size image.Point) bool {
	return t.img != nil && t.key == key && t.size == size
}

func (t *texture) set(key uint64, src *image.RGBA) {
	t.release()
	t.key = key
	t.size = src.Bounds().Size()
	t.img = ebiten.NewImageFromImage(src)
}

func (t *texture) release() {
	if t.img != nil {
		t.img.Deallocate()
		t.img = nil
	}
}

type labelKey struct {
	text  string
	size  float64
	width int
	fg    color.RGBA
}

const maxLabels = 256

// labelCache keeps rendered text around across frames.
type labelCache struct {
	images map[labelKey]*ebiten.Image
}

func (c *labelCache) get(text string, size float64, width int, fg color.RGBA) *ebiten.Image {
	key := labelKey{text, size, width, fg}
	if img, ok := c.images[key]; ok {
		return img
	}
	if c.images == nil || len(c.images) >= maxLabels {
		c.clear()
	}
	r := raster.Label(text, size, width, fg, color.Transparent)
	img := fromRaster(r)
	r.Release()
	c.images[key] = img
	return img
}

func (c *labelCache) clear() {
	for _, img := range c.images {
		img.Deallocate()
	}
	c.images = make(map[labelKey]*ebiten.Image)
}

// fromRaster uploads r. Empty rasters become a 1x1 transparent image since
// ebiten rejects zero-sized images.
func fromRaster(r *raster.Raster) *ebiten.Image {
	if r.RGBA() == nil || r.Width() == 0 || r.Height() == 0 {
		return ebiten.NewImage(1, 1)
	}
	return ebiten.NewImageFromImage(r.RGBA())
}

// drawClipped draws img with its top-left corner at (x, y), restricted to clip.
func drawClipped(dst, img *ebiten.Image, x, y int, clip image.Rectangle, alpha float64) {
	at := image.Pt(x, y)
	r := img.Bounds().Add(at).Intersect(clip)
	if r.Empty() {
		return
	}
	src := img.SubImage(r.Sub(at)).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	op.ColorScale.ScaleAlpha(float32(alpha))
	dst.DrawImage(src, op)
}
