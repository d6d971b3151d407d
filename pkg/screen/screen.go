// Package screen puts the kiosk on a window with ebiten. It draws only after
// something invalidated the frame and turns mouse and touch input into
// pointer events for the tiles and buttons.
package screen

import (
	"context"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/pyhub-apps/mediakiosk/pkg/kiosk"
	"github.com/pyhub-apps/mediakiosk/pkg/logging"
	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

var (
	background = color.RGBA{0x20, 0x20, 0x20, 0xff}
	panel      = color.RGBA{0x30, 0x30, 0x30, 0xff}
	tileBG     = color.RGBA{0x40, 0x40, 0x40, 0xff}
	buttonBG   = color.RGBA{0x50, 0x50, 0x50, 0xff}
	shade      = color.RGBA{0x00, 0x00, 0x00, 0xa0}
	white      = color.RGBA{0xff, 0xff, 0xff, 0xff}
	dialogBG   = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	ink        = color.RGBA{0x10, 0x10, 0x10, 0xff}
)

const (
	titleSize     = 18
	labelSize     = 16
	tileTextSize  = 12
	promptSize    = 28
	dialogW       = 560
	dialogH       = 200
	okW           = 140
	okH           = 56
	disabledAlpha = 0.3
)

// Options configure the window.
type Options struct {
	Title        string
	Width        int
	Height       int
	Fullscreen   bool
	InsertPrompt string
}

// Game implements ebiten.Game for the kiosk.
type Game struct {
	ctx    context.Context
	ctrl   *kiosk.Controller
	assets *raster.Assets
	opts   Options

	events chan func()
	dirty  bool
	dialog dialog

	size   image.Point
	layout kiosk.Layout

	tiles     *kiosk.Pointer
	buttons   *kiosk.Pointer
	scroll    int
	scrollGen uint64
	drag      dragState
	input     inputState

	picture  texture
	tileGen  uint64
	tileImgs []*ebiten.Image
	labels   labelCache
}

// New returns a game that stops when ctx is done. Attach a controller before
// running it.
func New(ctx context.Context, assets *raster.Assets, opts Options) *Game {
	if opts.Title == "" {
		opts.Title = "Media kiosk"
	}
	if opts.InsertPrompt == "" {
		opts.InsertPrompt = "Please insert a storage device"
	}
	g := &Game{
		ctx:    ctx,
		assets: assets,
		opts:   opts,
		events: make(chan func(), 64),
		dirty:  true,
	}
	g.tiles = kiosk.NewPointer(g.activateTile)
	g.buttons = kiosk.NewPointer(g.activateButton)
	return g
}

// Attach sets the controller driven by this screen.
func (g *Game) Attach(c *kiosk.Controller) {
	g.ctrl = c
	g.dirty = true
}

// Invalidate schedules a redraw. It must be called from the UI loop.
func (g *Game) Invalidate() { g.dirty = true }

// ShowError queues a modal error message.
func (g *Game) ShowError(message string) {
	g.dialog.push(message)
	g.dirty = true
}

// Post runs f on the UI loop. It is safe to call from any goroutine.
func (g *Game) Post(f func()) {
	select {
	case g.events <- f:
	case <-g.ctx.Done():
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.drainEvents()
	if g.ctrl == nil {
		return nil
	}
	g.refreshTargets()
	g.handleInput()
	return nil
}

func (g *Game) drainEvents() {
	for {
		select {
		case f := <-g.events:
			f()
			g.dirty = true
		default:
			return
		}
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	size := image.Pt(outsideWidth, outsideHeight)
	if size != g.size {
		g.size = size
		g.layout = kiosk.ComputeLayout(outsideWidth, outsideHeight)
		if g.ctrl != nil {
			g.ctrl.Viewer().SetViewport(g.layout.Picture.Dx(), g.layout.Picture.Dy())
		}
		g.dirty = true
		logging.Debug("screen: layout changed",
			zap.Int("width", outsideWidth), zap.Int("height", outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// Draw implements ebiten.Game. The screen is kept between frames and only
// repainted when dirty.
func (g *Game) Draw(screen *ebiten.Image) {
	if !g.dirty || g.ctrl == nil {
		return
	}
	g.dirty = false

	screen.Fill(background)
	g.drawPicture(screen)
	g.drawToolbar(screen)
	if g.ctrl.HasMedia() {
		g.drawStrip(screen)
	} else {
		g.drawPrompt(screen)
	}
	if g.dialog.visible() {
		g.drawDialog(screen)
	}
}

// Close frees GPU resources.
func (g *Game) Close() {
	g.picture.release()
	g.releaseTiles()
	g.labels.clear()
}

func (g *Game) activateTile(i int) {
	g.ctrl.ActivateIndex(i)
	g.dirty = true
}

func (g *Game) activateButton(i int) {
	switch {
	case g.dialog.visible():
		g.dialog.dismiss()
	case i == 0:
		g.ctrl.PrevPage()
	case i == 1:
		g.ctrl.NextPage()
	}
	g.dirty = true
}

// refreshTargets recomputes hit rectangles. Tiles scrolled out of the strip
// get empty rectangles; nothing behind the dialog is tappable.
func (g *Game) refreshTargets() {
	if g.dialog.visible() {
		g.tiles.SetTargets(nil)
		g.buttons.SetTargets([]image.Rectangle{g.okRect()})
		return
	}

	if gen := g.ctrl.ListingGeneration(); gen != g.scrollGen {
		g.scroll = 0
		g.scrollGen = gen
	}
	items := g.ctrl.Items()
	g.scroll = kiosk.ClampScroll(g.layout.Strip, len(items), g.scroll)
	rects := kiosk.TileRects(g.layout.Strip, len(items), g.scroll)
	for i := range rects {
		rects[i] = rects[i].Intersect(g.layout.Strip)
	}
	g.tiles.SetTargets(rects)

	if tb := g.ctrl.Toolbar(); tb.Visible {
		prev, next := kiosk.ToolbarButtons(g.layout.Toolbar)
		if !tb.CanPrev {
			prev = image.Rectangle{}
		}
		if !tb.CanNext {
			next = image.Rectangle{}
		}
		g.buttons.SetTargets([]image.Rectangle{prev, next})
	} else {
		g.buttons.SetTargets(nil)
	}
}

func (g *Game) okRect() image.Rectangle {
	box := kiosk.DialogRect(g.layout.Window, dialogW, dialogH)
	x := box.Min.X + (box.Dx()-okW)/2
	y := box.Max.Y - okH - 16
	return image.Rect(x, y, x+okW, y+okH)
}

func (g *Game) drawPicture(screen *ebiten.Image) {
	pane := g.layout.Picture
	if pane.Empty() {
		return
	}
	v := g.ctrl.Viewer()
	if !g.picture.valid(v.Generation(), pane.Size()) {
		buf := image.NewRGBA(image.Rect(0, 0, pane.Dx(), pane.Dy()))
		v.Paint(buf, background)
		g.picture.set(v.Generation(), buf)
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(pane.Min.X), float64(pane.Min.Y))
	screen.DrawImage(g.picture.img, op)
}

func (g *Game) drawToolbar(screen *ebiten.Image) {
	tb := g.ctrl.Toolbar()
	if !tb.Visible {
		return
	}
	r := g.layout.Toolbar
	fillRect(screen, r, panel)

	title := tb.Title
	if title == "" {
		title = "Document"
	}
	w := r.Dx() - 2*kiosk.Spacing
	drawClipped(screen, g.labels.get(title, titleSize, w, white), r.Min.X+kiosk.Spacing, r.Min.Y+8, r, 1)
	drawClipped(screen, g.labels.get(tb.Label, labelSize, w, white), r.Min.X+kiosk.Spacing, r.Min.Y+48, r, 1)

	prev, next := kiosk.ToolbarButtons(r)
	g.drawButton(screen, prev, "Previous", tb.CanPrev, g.buttons.State(0))
	g.drawButton(screen, next, "Next", tb.CanNext, g.buttons.State(1))
}

func (g *Game) drawButton(screen *ebiten.Image, r image.Rectangle, text string, enabled bool, state kiosk.TileState) {
	alpha := state.Alpha()
	if !enabled {
		alpha = disabledAlpha
	}
	fillRect(screen, r, fade(buttonBG, alpha))
	img := g.labels.get(text, labelSize, r.Dx(), white)
	b := img.Bounds()
	drawClipped(screen, img, r.Min.X+(r.Dx()-b.Dx())/2, r.Min.Y+(r.Dy()-b.Dy())/2, r, alpha)
}

func (g *Game) drawStrip(screen *ebiten.Image) {
	strip := g.layout.Strip
	fillRect(screen, strip, panel)

	items := g.ctrl.Items()
	if gen := g.ctrl.ListingGeneration(); gen != g.tileGen || len(g.tileImgs) != len(items) {
		g.releaseTiles()
		g.tileImgs = make([]*ebiten.Image, len(items))
		for i, item := range items {
			r := kiosk.IconRaster(item.Icon, g.assets)
			g.tileImgs[i] = fromRaster(r)
			r.Release()
		}
		g.tileGen = gen
	}

	ix, iy := kiosk.IconOffset()
	for i, rect := range kiosk.TileRects(strip, len(items), g.scroll) {
		if !rect.Overlaps(strip) {
			continue
		}
		alpha := g.tiles.State(i).Alpha()
		fillRect(screen, rect.Intersect(strip), fade(tileBG, alpha))
		drawClipped(screen, g.tileImgs[i], rect.Min.X+ix, rect.Min.Y+iy, strip, alpha)

		label := g.labels.get(items[i].Label, tileTextSize, kiosk.TileSize, white)
		lb := label.Bounds()
		band := image.Rect(rect.Min.X, rect.Max.Y-lb.Dy(), rect.Max.X, rect.Max.Y).Intersect(strip)
		fillRect(screen, band, shade)
		drawClipped(screen, label, rect.Min.X+(kiosk.TileSize-lb.Dx())/2, rect.Max.Y-lb.Dy(), strip, 1)
	}
}

func (g *Game) releaseTiles() {
	for _, img := range g.tileImgs {
		img.Deallocate()
	}
	g.tileImgs = nil
}

func (g *Game) drawPrompt(screen *ebiten.Image) {
	strip := g.layout.Strip
	fillRect(screen, strip, panel)
	img := g.labels.get(g.opts.InsertPrompt, promptSize, strip.Dx(), white)
	b := img.Bounds()
	drawClipped(screen, img, strip.Min.X+(strip.Dx()-b.Dx())/2, strip.Min.Y+(strip.Dy()-b.Dy())/2, strip, 1)
}

func (g *Game) drawDialog(screen *ebiten.Image) {
	fillRect(screen, g.layout.Window, shade)
	box := kiosk.DialogRect(g.layout.Window, dialogW, dialogH)
	fillRect(screen, box, dialogBG)

	msg := g.labels.get(g.dialog.message(), labelSize, box.Dx()-32, ink)
	mb := msg.Bounds()
	drawClipped(screen, msg, box.Min.X+(box.Dx()-mb.Dx())/2, box.Min.Y+40, box, 1)

	ok := g.okRect()
	fill := buttonBG
	if g.buttons.State(0) == kiosk.StatePressed {
		fill = ink
	}
	fillRect(screen, ok, fill)
	label := g.labels.get("OK", labelSize, ok.Dx(), white)
	lb := label.Bounds()
	drawClipped(screen, label, ok.Min.X+(ok.Dx()-lb.Dx())/2, ok.Min.Y+(ok.Dy()-lb.Dy())/2, ok, 1)
}

// fade scales a premultiplied color by alpha.
func fade(c color.RGBA, alpha float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(float64(c.A) * alpha),
	}
}

func fillRect(dst *ebiten.Image, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	vector.DrawFilledRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), c, false)
}

// Run opens the window and blocks until it is closed or the game's context
// is done.
func Run(g *Game) error {
	ebiten.SetWindowTitle(g.opts.Title)
	if g.opts.Width > 0 && g.opts.Height > 0 {
		ebiten.SetWindowSize(g.opts.Width, g.opts.Height)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(false)
	if g.opts.Fullscreen {
		ebiten.SetFullscreen(true)
	}
	defer g.Close()
	return ebiten.RunGame(g)
}
