package screen

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/pyhub-apps/mediakiosk/pkg/kiosk"
)

const (
	// dragThreshold is how far a press may travel before it becomes a scroll.
	dragThreshold = 12
	wheelStep     = 48
)

type dragState struct {
	active bool
	moved  bool
	startX int
	lastX  int
}

type inputState struct {
	cursor   image.Point
	touching bool
	touchID  ebiten.TouchID
	touches  []ebiten.TouchID
}

func (g *Game) handleInput() {
	g.handleKeys()
	g.handleWheel()
	g.handleMouse()
	g.handleTouch()
}

func (g *Game) handleKeys() {
	switch {
	case g.dialog.visible():
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
			inpututil.IsKeyJustPressed(ebiten.KeyEscape) ||
			inpututil.IsKeyJustPressed(ebiten.KeySpace) {
			g.dialog.dismiss()
			g.dirty = true
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight), inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		g.ctrl.NextPage()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft), inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		g.ctrl.PrevPage()
	}
}

func (g *Game) handleWheel() {
	if g.dialog.visible() {
		return
	}
	dx, dy := ebiten.Wheel()
	if dx == 0 && dy == 0 {
		return
	}
	g.scrollBy(-int((dx + dy) * wheelStep))
}

func (g *Game) handleMouse() {
	x, y := ebiten.CursorPosition()
	if p := image.Pt(x, y); p != g.input.cursor {
		g.input.cursor = p
		if p.In(g.layout.Window) {
			g.move(x, y)
		} else {
			g.leave()
		}
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.press(x, y)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.dragTo(x)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.release(x, y)
	}
}

// handleTouch follows the first finger down and ignores the others.
func (g *Game) handleTouch() {
	if !g.input.touching {
		g.input.touches = inpututil.AppendJustPressedTouchIDs(g.input.touches[:0])
		if len(g.input.touches) == 0 {
			return
		}
		id := g.input.touches[0]
		g.input.touching = true
		g.input.touchID = id
		x, y := ebiten.TouchPosition(id)
		g.move(x, y)
		g.press(x, y)
		return
	}

	id := g.input.touchID
	if inpututil.IsTouchJustReleased(id) {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		g.input.touching = false
		g.release(x, y)
		g.leave()
		return
	}
	x, y := ebiten.TouchPosition(id)
	g.move(x, y)
	g.dragTo(x)
}

func (g *Game) move(x, y int) {
	tiles := g.tiles.Move(x, y)
	buttons := g.buttons.Move(x, y)
	if tiles || buttons {
		g.dirty = true
	}
}

func (g *Game) leave() {
	tiles := g.tiles.Leave()
	buttons := g.buttons.Leave()
	if tiles || buttons {
		g.dirty = true
	}
}

func (g *Game) press(x, y int) {
	g.buttons.Press(x, y)
	if !g.dialog.visible() {
		g.tiles.Press(x, y)
		if image.Pt(x, y).In(g.layout.Strip) {
			g.drag = dragState{active: true, startX: x, lastX: x}
		}
	}
	g.dirty = true
}

func (g *Game) dragTo(x int) {
	if !g.drag.active {
		return
	}
	if !g.drag.moved && abs(x-g.drag.startX) > dragThreshold {
		g.drag.moved = true
		g.tiles.Cancel()
		g.dirty = true
	}
	if g.drag.moved {
		g.scrollBy(g.drag.lastX - x)
	}
	g.drag.lastX = x
}

func (g *Game) release(x, y int) {
	if g.drag.moved {
		g.tiles.Cancel()
	}
	g.drag = dragState{}
	g.buttons.Release(x, y)
	g.tiles.Release(x, y)
	g.dirty = true
}

func (g *Game) scrollBy(delta int) {
	if delta == 0 || !g.ctrl.HasMedia() {
		return
	}
	next := kiosk.ClampScroll(g.layout.Strip, len(g.ctrl.Items()), g.scroll+delta)
	if next != g.scroll {
		g.scroll = next
		g.refreshTargets()
		g.dirty = true
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
