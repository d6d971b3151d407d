package pdf

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

var (
	inkColor  = color.RGBA{0x20, 0x20, 0x20, 0xff}
	ruleColor = color.RGBA{0x90, 0x90, 0x90, 0xff}
)

// ObjectPage is a Page backed by objects recovered from the content stream.
// The pure-Go backends use it; glyph shapes come from the Go fonts rather than
// the embedded ones.
type ObjectPage struct {
	pageNumber int
	width      float64
	height     float64
	objects    Objects
}

// NewObjectPage builds a page from already extracted objects. Coordinates are
// top-left based.
func NewObjectPage(pageNumber int, width, height float64, objects Objects) *ObjectPage {
	if width <= 0 || height <= 0 {
		width, height = defaultPageWidth, defaultPageHeight
	}
	return &ObjectPage{
		pageNumber: pageNumber,
		width:      width,
		height:     height,
		objects:    objects,
	}
}

// GetPageNumber returns the page number (1-based)
func (p *ObjectPage) GetPageNumber() int { return p.pageNumber }

// GetWidth returns the page width
func (p *ObjectPage) GetWidth() float64 { return p.width }

// GetHeight returns the page height
func (p *ObjectPage) GetHeight() float64 { return p.height }

// GetBBox returns the page bounding box
func (p *ObjectPage) GetBBox() BoundingBox {
	return BoundingBox{X0: 0, Y0: 0, X1: p.width, Y1: p.height}
}

// GetObjects returns the drawable objects of the page
func (p *ObjectPage) GetObjects() Objects { return p.objects }

// ExtractText joins the text runs, starting a new line when the baseline moves.
func (p *ObjectPage) ExtractText() string {
	var text strings.Builder
	lastY := math.NaN()
	for _, t := range p.objects.Texts {
		if !math.IsNaN(lastY) && math.Abs(t.Y-lastY) > 1 {
			text.WriteByte('\n')
		}
		text.WriteString(t.Text)
		lastY = t.Y
	}
	return text.String()
}

// Render draws rectangles as outlines, then the text runs.
func (p *ObjectPage) Render(dst draw.Image) error {
	origin := dst.Bounds().Min
	for _, r := range p.objects.Rects {
		strokeRect(dst, image.Rect(
			origin.X+int(math.Round(r.BBox.X0)),
			origin.Y+int(math.Round(r.BBox.Y0)),
			origin.X+int(math.Round(r.BBox.X1)),
			origin.Y+int(math.Round(r.BBox.Y1)),
		).Canon(), ruleColor)
	}
	for _, t := range p.objects.Texts {
		size := math.Round(t.FontSize)
		if size < 1 {
			size = 10
		}
		x := origin.X + int(math.Round(t.X))
		y := origin.Y + int(math.Round(t.Y))
		if err := raster.DrawString(dst, x, y, size, t.Text, inkColor); err != nil {
			return fmt.Errorf("failed to draw text on page %d: %w", p.pageNumber, err)
		}
	}
	return nil
}

func strokeRect(dst draw.Image, r image.Rectangle, c color.Color) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Over)
	}
}

// flipY converts a PDF bottom-left y coordinate to top-left.
func flipY(pageHeight, y float64) float64 {
	return pageHeight - y
}

// recoverContent turns a panic raised while parsing a content stream into an error.
func recoverContent(pageNumber int, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed content on page %d: %v", pageNumber, r)
	}
}
