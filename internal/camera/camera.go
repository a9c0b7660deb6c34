// Package camera maps a bounded, pannable and zoomable window onto the
// unbounded board. World coordinates are board cells; pixel coordinates are
// relative to the top-left corner of the rendered window.
package camera

import (
	"errors"
	"fmt"
	"math"

	"fiveinrow/internal/board"
)

// Config holds the window geometry and gesture tuning.
type Config struct {
	// GridSize is the number of cells along each side of the visible window.
	GridSize int
	// CellSize is the initial base pixel size of one cell.
	CellSize    float64
	MinCellSize float64
	MaxCellSize float64
	// ZoomStep is added to or removed from CellSize per zoom action.
	ZoomStep float64
	// ClickThreshold is the pointer travel, in pixels, beyond which a press
	// becomes a pan instead of a click.
	ClickThreshold float64
}

// DefaultConfig is the desktop layout.
func DefaultConfig() Config {
	return Config{
		GridSize:       15,
		CellSize:       40,
		MinCellSize:    20,
		MaxCellSize:    72,
		ZoomStep:       4,
		ClickThreshold: 5,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.GridSize < 1 {
		errs = append(errs, fmt.Errorf("grid size must be positive, got %d", c.GridSize))
	}
	if c.MinCellSize <= 0 {
		errs = append(errs, fmt.Errorf("min cell size must be positive, got %v", c.MinCellSize))
	}
	if c.MinCellSize > c.MaxCellSize {
		errs = append(errs, fmt.Errorf("min cell size %v exceeds max %v", c.MinCellSize, c.MaxCellSize))
	}
	if c.ZoomStep < 0 {
		errs = append(errs, fmt.Errorf("zoom step must not be negative, got %v", c.ZoomStep))
	}
	if c.ClickThreshold < 0 {
		errs = append(errs, fmt.Errorf("click threshold must not be negative, got %v", c.ClickThreshold))
	}
	return errors.Join(errs...)
}

// Window is the block of world cells currently visible.
type Window struct {
	StartX int `json:"startX"`
	StartY int `json:"startY"`
	Size   int `json:"size"`
}

// Contains reports whether world cell (x, y) is inside the window.
func (w Window) Contains(x, y int) bool {
	return x >= w.StartX && x < w.StartX+w.Size && y >= w.StartY && y < w.StartY+w.Size
}

// Camera tracks the focal point, zoom and fit scale of one rendered window
// plus the drag gesture in progress. It is owned by a single view and is not
// safe for concurrent use.
type Camera struct {
	cfg Config

	x, y            float64
	cellSize        float64
	initialCellSize float64
	scale           float64

	drag dragState
}

// New returns a camera centred on the origin at scale 1.
func New(cfg Config) *Camera {
	c := &Camera{cfg: cfg, scale: 1}
	c.SetInitialCellSize(cfg.CellSize)
	return c
}

func (c *Camera) X() float64        { return c.x }
func (c *Camera) Y() float64        { return c.y }
func (c *Camera) CellSize() float64 { return c.cellSize }
func (c *Camera) Scale() float64    { return c.scale }
func (c *Camera) GridSize() int     { return c.cfg.GridSize }

// DisplayCell is the rendered pixel size of one cell.
func (c *Camera) DisplayCell() float64 {
	return c.cellSize * c.scale
}

// ViewportSize is the rendered pixel size of the whole window.
func (c *Camera) ViewportSize() float64 {
	return float64(c.cfg.GridSize) * c.DisplayCell()
}

// StartX is the world column of the window's left edge.
func (c *Camera) StartX() int {
	return int(math.Floor(c.x - float64(c.cfg.GridSize)/2))
}

// StartY is the world row of the window's top edge.
func (c *Camera) StartY() int {
	return int(math.Floor(c.y - float64(c.cfg.GridSize)/2))
}

func (c *Camera) Window() Window {
	return Window{StartX: c.StartX(), StartY: c.StartY(), Size: c.cfg.GridSize}
}

// Fit recomputes the scale so the window is no wider than containerWidth
// at the current cell size. A non-positive width resets the scale to 1.
func (c *Camera) Fit(containerWidth float64) {
	full := float64(c.cfg.GridSize) * c.cellSize
	if containerWidth <= 0 || full <= 0 {
		c.scale = 1
		return
	}
	c.scale = math.Min(1, containerWidth/full)
}

// SetCellSize sets the base cell size, clamped to the configured range.
func (c *Camera) SetCellSize(size float64) {
	c.cellSize = clamp(size, c.cfg.MinCellSize, c.cfg.MaxCellSize)
}

// SetInitialCellSize sets the cell size ResetZoom returns to, and applies it.
func (c *Camera) SetInitialCellSize(size float64) {
	c.SetCellSize(size)
	c.initialCellSize = c.cellSize
}

func (c *Camera) ZoomIn()    { c.SetCellSize(c.cellSize + c.cfg.ZoomStep) }
func (c *Camera) ZoomOut()   { c.SetCellSize(c.cellSize - c.cfg.ZoomStep) }
func (c *Camera) ResetZoom() { c.SetCellSize(c.initialCellSize) }

// CenterOn moves the focal point to world position (x, y).
func (c *Camera) CenterOn(x, y float64) {
	c.x, c.y = x, y
}

func (c *Camera) CenterZero() {
	c.CenterOn(0, 0)
}

// PixelToWorldCell resolves a pixel inside the window to the world cell under
// it. ok is false for pixels outside the window.
func (c *Camera) PixelToWorldCell(px, py float64) (p board.Point, ok bool) {
	cell := c.DisplayCell()
	if cell <= 0 {
		return board.Point{}, false
	}
	col := int(math.Floor(px / cell))
	row := int(math.Floor(py / cell))
	if col < 0 || col >= c.cfg.GridSize || row < 0 || row >= c.cfg.GridSize {
		return board.Point{}, false
	}
	return board.Point{X: c.StartX() + col, Y: c.StartY() + row}, true
}

// CellOrigin returns the pixel position of world cell (x, y)'s top-left corner.
// The cell may lie outside the window.
func (c *Camera) CellOrigin(x, y int) (px, py float64) {
	cell := c.DisplayCell()
	return float64(x-c.StartX()) * cell, float64(y-c.StartY()) * cell
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
