package raster

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

var (
	fontOnce   sync.Once
	parsedFont *opentype.Font
	fontErr    error

	facesMu sync.Mutex
	faces   = map[float64]font.Face{}
)

// Face returns a cached Go Regular face at size points (72 DPI).
func Face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		parsedFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}

	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	faces[size] = f
	return f, nil
}

// DrawString draws s with its baseline starting at (x, y).
func DrawString(dst draw.Image, x, y int, size float64, s string, c color.Color) error {
	face, err := Face(size)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(norm.NFC.String(s))
	return nil
}

// MeasureString returns the advance width of s in pixels.
func MeasureString(size float64, s string) int {
	face, err := Face(size)
	if err != nil {
		return 0
	}
	return font.MeasureString(face, norm.NFC.String(s)).Ceil()
}

// Label renders text on bg, padded, and sized to fit. Text wider than maxWidth
// is cut with an ellipsis; maxWidth <= 0 means unlimited.
func Label(text string, size float64, maxWidth int, fg, bg color.Color) *Raster {
	face, err := Face(size)
	if err != nil {
		return New(0, 0, bg)
	}
	text = norm.NFC.String(text)
	const pad = 4
	if maxWidth > 0 {
		text = Ellipsize(text, size, maxWidth-2*pad)
	}

	m := face.Metrics()
	w := font.MeasureString(face, text).Ceil() + 2*pad
	h := (m.Ascent + m.Descent).Ceil() + 2*pad
	r := New(w, h, bg)
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(pad), Y: fixed.I(pad) + m.Ascent},
	}
	d.DrawString(text)
	return r
}

// Ellipsize shortens s rune by rune until it fits within width pixels.
func Ellipsize(s string, size float64, width int) string {
	if MeasureString(size, s) <= width {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + "…"
		if MeasureString(size, candidate) <= width {
			return candidate
		}
	}
	return "…"
}
