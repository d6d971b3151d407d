package kiosk

import "image"

// TileState is the visual state of a tappable widget.
type TileState int

const (
	StateIdle TileState = iota
	StateHover
	StatePressed
)

// IdleAlpha is the opacity of tiles nobody points at.
const IdleAlpha = 0.7

// Alpha returns the paint opacity for a state.
func (s TileState) Alpha() float64 {
	if s == StateIdle {
		return IdleAlpha
	}
	return 1
}

// Pointer tracks enter/leave/press/release over a set of target rectangles
// and activates a target when a press is released over the same target.
type Pointer struct {
	targets  []image.Rectangle
	hover    int
	pressed  int
	activate func(int)
}

// NewPointer returns a dispatcher calling activate with the target index.
func NewPointer(activate func(int)) *Pointer {
	return &Pointer{hover: -1, pressed: -1, activate: activate}
}

// SetTargets replaces the target rectangles. Hover and press state is dropped
// when the number of targets changes.
func (p *Pointer) SetTargets(targets []image.Rectangle) {
	if len(targets) != len(p.targets) {
		p.hover, p.pressed = -1, -1
	}
	p.targets = targets
}

// Targets returns the current rectangles.
func (p *Pointer) Targets() []image.Rectangle { return p.targets }

// State returns the state of target i.
func (p *Pointer) State(i int) TileState {
	switch {
	case i == p.pressed && i == p.hover:
		return StatePressed
	case i == p.hover:
		return StateHover
	}
	return StateIdle
}

// Hit returns the target under (x, y), or -1.
func (p *Pointer) Hit(x, y int) int {
	pt := image.Pt(x, y)
	for i, r := range p.targets {
		if pt.In(r) {
			return i
		}
	}
	return -1
}

// Move handles pointer motion. It reports whether any state changed.
func (p *Pointer) Move(x, y int) bool {
	h := p.Hit(x, y)
	if h == p.hover {
		return false
	}
	p.hover = h
	return true
}

// Leave handles the pointer leaving the surface.
func (p *Pointer) Leave() bool {
	if p.hover == -1 {
		return false
	}
	p.hover = -1
	return true
}

// Press handles a button or touch press at (x, y).
func (p *Pointer) Press(x, y int) bool {
	h := p.Hit(x, y)
	changed := h != p.hover || h != p.pressed
	p.hover = h
	p.pressed = h
	return changed
}

// Release handles a button or touch release at (x, y), activating the pressed
// target when the release lands on it.
func (p *Pointer) Release(x, y int) bool {
	h := p.Hit(x, y)
	pressed := p.pressed
	p.pressed = -1
	p.hover = h
	if pressed >= 0 && pressed == h && p.activate != nil {
		p.activate(h)
	}
	return pressed >= 0
}

// Cancel drops a pending press without activating anything, e.g. when the
// gesture turned into a drag.
func (p *Pointer) Cancel() {
	p.pressed = -1
}
