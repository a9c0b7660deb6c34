package terminal

import (
	"strings"

	"github.com/nsf/termbox-go"
)

// Frame is an off-screen character grid, flushed to termbox in one pass.
type Frame struct {
	Width, Height int
	cells         []termbox.Cell
}

func NewFrame(w, h int) *Frame {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	f := &Frame{Width: w, Height: h, cells: make([]termbox.Cell, w*h)}
	for i := range f.cells {
		f.cells[i] = termbox.Cell{Ch: ' ', Fg: termbox.ColorDefault, Bg: termbox.ColorDefault}
	}
	return f
}

// Set writes one cell; positions outside the frame are clipped.
func (f *Frame) Set(x, y int, c termbox.Cell) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	f.cells[y*f.Width+x] = c
}

func (f *Frame) At(x, y int) termbox.Cell {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return termbox.Cell{}
	}
	return f.cells[y*f.Width+x]
}

// Text writes s starting at (x, y).
func (f *Frame) Text(x, y int, s string, fg, bg termbox.Attribute) {
	for _, r := range s {
		f.Set(x, y, termbox.Cell{Ch: r, Fg: fg, Bg: bg})
		x++
	}
}

// Row returns line y as plain text with trailing spaces removed.
func (f *Frame) Row(y int) string {
	var b strings.Builder
	for x := 0; x < f.Width; x++ {
		b.WriteRune(f.At(x, y).Ch)
	}
	return strings.TrimRight(b.String(), " ")
}

// Flush copies the frame to the terminal back buffer and displays it.
func (f *Frame) Flush() error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := f.cells[y*f.Width+x]
			termbox.SetCell(x, y, c.Ch, c.Fg, c.Bg)
		}
	}
	return termbox.Flush()
}
