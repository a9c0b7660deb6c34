package camera

import (
	"math"

	"fiveinrow/internal/board"
)

// dragState is the bookkeeping for the pointer currently captured.
type dragState struct {
	active    bool
	pointerID int
	startPX   float64
	startPY   float64
	startX    float64
	startY    float64
	moved     bool
}

// Dragging reports whether a pointer is captured.
func (c *Camera) Dragging() bool {
	return c.drag.active
}

// PointerDown captures pointer id at pixel (px, py). While another pointer is
// captured the press is ignored and false is returned.
func (c *Camera) PointerDown(id int, px, py float64) bool {
	if c.drag.active {
		return false
	}
	c.drag = dragState{
		active:    true,
		pointerID: id,
		startPX:   px,
		startPY:   py,
		startX:    c.x,
		startY:    c.y,
	}
	return true
}

// PointerMove pans the camera with the captured pointer. Dragging right
// moves the window left in world space. Travel past the click threshold
// marks the gesture as a drag so its release is not a click. It returns true
// when the camera moved.
func (c *Camera) PointerMove(id int, px, py float64) bool {
	if !c.captured(id) {
		return false
	}
	dx := px - c.drag.startPX
	dy := py - c.drag.startPY
	if math.Hypot(dx, dy) > c.cfg.ClickThreshold {
		c.drag.moved = true
	}
	cell := c.DisplayCell()
	if cell <= 0 {
		return false
	}
	c.x = c.drag.startX - dx/cell
	c.y = c.drag.startY - dy/cell
	return true
}

// PointerUp releases the captured pointer. If the press never turned into a
// pan it is a click, and the world cell under (px, py) is returned with
// clicked set. Clicks outside the window resolve to nothing.
func (c *Camera) PointerUp(id int, px, py float64) (cell board.Point, clicked bool) {
	if !c.captured(id) {
		return board.Point{}, false
	}
	// the release position can still push a slow drag past the threshold
	if !c.drag.moved && math.Hypot(px-c.drag.startPX, py-c.drag.startPY) > c.cfg.ClickThreshold {
		c.drag.moved = true
	}
	moved := c.drag.moved
	c.drag = dragState{}
	if moved {
		return board.Point{}, false
	}
	return c.PixelToWorldCell(px, py)
}

// PointerCancel ends a drag without a click, e.g. when capture is lost.
func (c *Camera) PointerCancel(id int) {
	if c.captured(id) {
		c.drag = dragState{}
	}
}

func (c *Camera) captured(id int) bool {
	return c.drag.active && c.drag.pointerID == id
}
