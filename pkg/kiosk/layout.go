package kiosk

import "image"

// Layout constants, in pixels.
const (
	Margin       = 10
	Spacing      = 4
	ToolbarWidth = 216
	TileSize     = 128
	IconSize     = 122
)

// Layout splits the window into the picture pane, the PDF toolbar and the
// tile strip along the bottom.
type Layout struct {
	Window  image.Rectangle
	Picture image.Rectangle
	Toolbar image.Rectangle
	Strip   image.Rectangle
}

// ComputeLayout lays out a w x h window. Panes that do not fit collapse to
// empty rectangles at their top-left corner.
func ComputeLayout(w, h int) Layout {
	inner := span(Margin, Margin, w-Margin, h-Margin)
	stripH := TileSize + 2*Spacing
	strip := span(inner.Min.X, max(inner.Max.Y-stripH, inner.Min.Y), inner.Max.X, inner.Max.Y)
	top := span(inner.Min.X, inner.Min.Y, inner.Max.X, strip.Min.Y-Spacing)

	toolbar := span(max(top.Max.X-ToolbarWidth, top.Min.X), top.Min.Y, top.Max.X, top.Max.Y)
	picture := span(top.Min.X, top.Min.Y, toolbar.Min.X-Spacing, top.Max.Y)

	return Layout{
		Window:  span(0, 0, w, h),
		Picture: picture,
		Toolbar: toolbar,
		Strip:   strip,
	}
}

// span is image.Rect without the swap: a max edge before its min edge is
// moved onto it.
func span(x0, y0, x1, y1 int) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(x0, y0),
		Max: image.Pt(max(x0, x1), max(y0, y1)),
	}
}

// TileRects places count tiles left to right in the strip, shifted left by
// scroll pixels. Tiles outside the strip keep their positions; callers clip.
func TileRects(strip image.Rectangle, count, scroll int) []image.Rectangle {
	rects := make([]image.Rectangle, count)
	x := strip.Min.X + Spacing - scroll
	y := strip.Min.Y + Spacing
	for i := range rects {
		rects[i] = image.Rect(x, y, x+TileSize, y+TileSize)
		x += TileSize + Spacing
	}
	return rects
}

// MaxScroll is the largest useful scroll offset for count tiles.
func MaxScroll(strip image.Rectangle, count int) int {
	content := Spacing + count*(TileSize+Spacing)
	if over := content - strip.Dx(); over > 0 {
		return over
	}
	return 0
}

// ClampScroll keeps scroll within [0, MaxScroll].
func ClampScroll(strip image.Rectangle, count, scroll int) int {
	if scroll < 0 {
		return 0
	}
	if m := MaxScroll(strip, count); scroll > m {
		return m
	}
	return scroll
}

// ToolbarButtons returns the previous and next page buttons inside toolbar.
func ToolbarButtons(toolbar image.Rectangle) (prev, next image.Rectangle) {
	const h = 64
	w := (toolbar.Dx() - 3*Spacing) / 2
	y := toolbar.Min.Y + 96
	prev = image.Rect(toolbar.Min.X+Spacing, y, toolbar.Min.X+Spacing+w, y+h)
	next = image.Rect(prev.Max.X+Spacing, y, prev.Max.X+Spacing+w, y+h)
	return prev, next
}

// DialogRect centers a modal dialog of w x h in the window.
func DialogRect(window image.Rectangle, w, h int) image.Rectangle {
	x := window.Min.X + (window.Dx()-w)/2
	y := window.Min.Y + (window.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}
