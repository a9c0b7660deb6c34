// Package terminal is a hot-seat front-end drawn with termbox. Each board
// cell is two columns wide and one row high at the default zoom. Terminal
// positions are fed to the camera as pixels with px = column and
// py = row*2, so cells are square in camera space.
package terminal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nsf/termbox-go"

	"fiveinrow/internal/board"
	"fiveinrow/internal/camera"
	"fiveinrow/internal/game"
)

const (
	boardTop  = 2 // rows above the board
	pointerID = 0
)

// CameraConfig is the terminal geometry for a window of gridSize cells.
func CameraConfig(gridSize int) camera.Config {
	return camera.Config{
		GridSize:       gridSize,
		CellSize:       2,
		MinCellSize:    2,
		MaxCellSize:    6,
		ZoomStep:       2,
		ClickThreshold: 1,
	}
}

// App holds the game and the view state of the terminal front-end.
type App struct {
	game    *game.Game
	cam     *camera.Camera
	rec     game.Recorder
	logger  *slog.Logger
	message string
}

func NewApp(g *game.Game, cam *camera.Camera, rec game.Recorder, logger *slog.Logger) *App {
	return &App{
		game:   g,
		cam:    cam,
		rec:    rec,
		logger: logger.With("component", "tui"),
	}
}

// HandleEvent applies one input event. It returns false when the user quits.
func (a *App) HandleEvent(ctx context.Context, ev termbox.Event) bool {
	switch ev.Type {
	case termbox.EventKey:
		return a.handleKey(ctx, ev)
	case termbox.EventMouse:
		a.handleMouse(ev)
	}
	return true
}

func (a *App) handleKey(ctx context.Context, ev termbox.Event) bool {
	switch ev.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return false
	case termbox.KeyArrowLeft:
		a.pan(-1, 0)
	case termbox.KeyArrowRight:
		a.pan(1, 0)
	case termbox.KeyArrowUp:
		a.pan(0, -1)
	case termbox.KeyArrowDown:
		a.pan(0, 1)
	}

	switch ev.Ch {
	case 'q':
		return false
	case '+', '=':
		a.cam.ZoomIn()
	case '-':
		a.cam.ZoomOut()
	case '0':
		a.cam.CenterZero()
	case 'l':
		if last := a.game.LastMove(); last != nil {
			a.cam.CenterOn(float64(last.X), float64(last.Y))
		}
	case 'n':
		a.game.Reset()
		a.message = "new game"
	case 'f':
		a.finish(ctx)
	}
	return true
}

func (a *App) pan(dx, dy float64) {
	a.cam.CenterOn(a.cam.X()+dx, a.cam.Y()+dy)
}

func (a *App) finish(ctx context.Context) {
	saved, err := a.game.FinishAndPersist(ctx, a.rec)
	switch {
	case err != nil:
		a.logger.Error("save match", "error", err)
		a.message = "could not save match"
	case saved:
		a.logger.Info("match saved", "match", a.game.ID())
		a.message = "match saved"
	default:
		a.message = "already saved"
	}
}

func (a *App) handleMouse(ev termbox.Event) {
	px := float64(ev.MouseX)
	py := float64(ev.MouseY-boardTop) * 2

	switch ev.Key {
	case termbox.MouseLeft:
		if ev.Mod&termbox.ModMotion != 0 || a.cam.Dragging() {
			a.cam.PointerMove(pointerID, px, py)
			return
		}
		a.cam.PointerDown(pointerID, px, py)
	case termbox.MouseRelease:
		cell, clicked := a.cam.PointerUp(pointerID, px, py)
		if clicked {
			a.move(cell)
		}
	case termbox.MouseWheelUp:
		a.cam.ZoomIn()
	case termbox.MouseWheelDown:
		a.cam.ZoomOut()
	}
}

func (a *App) move(p board.Point) {
	res := a.game.MakeMove(p.X, p.Y)
	if !res.OK {
		a.message = fmt.Sprintf("(%d, %d) rejected: %s", p.X, p.Y, res.Reason)
		return
	}
	a.message = ""
}

func (a *App) status() string {
	players := a.game.Players()
	switch a.game.Status() {
	case game.StatusWon:
		w := a.game.Winner()
		return fmt.Sprintf("Winner: %s (%s)", players.Name(w), w)
	case game.StatusFinished:
		return "Finished"
	}
	c := a.game.Current()
	return fmt.Sprintf("Turn: %s (%s)", players.Name(c), c)
}

// Draw renders the status lines and the camera window into a w by h frame.
func (a *App) Draw(w, h int) *Frame {
	f := NewFrame(w, h)
	fg, bg := termbox.ColorDefault, termbox.ColorDefault

	players := a.game.Players()
	f.Text(0, 0, fmt.Sprintf("X %s vs O %s   %s", players.XName, players.OName, a.status()), fg|termbox.AttrBold, bg)
	f.Text(0, 1, fmt.Sprintf("center %.0f,%.0f  moves %d  %s", a.cam.X(), a.cam.Y(), len(a.game.Moves()), a.message), fg, bg)

	win := map[board.Point]bool{}
	for _, p := range a.game.WinLine() {
		win[p] = true
	}
	last := a.game.LastMove()

	cols := int(a.cam.DisplayCell())
	rows := cols / 2
	if cols < 1 || rows < 1 {
		return f
	}
	wnd := a.cam.Window()
	for y := wnd.StartY; y < wnd.StartY+wnd.Size; y++ {
		for x := wnd.StartX; x < wnd.StartX+wnd.Size; x++ {
			px, py := a.cam.CellOrigin(x, y)
			left, top := int(px), boardTop+int(py)/2
			cell := a.glyph(x, y, win, last)
			for dy := 0; dy < rows; dy++ {
				for dx := 0; dx < cols; dx++ {
					c := cell
					if dx != (cols-1)/2 || dy != (rows-1)/2 {
						c.Ch = ' '
					}
					f.Set(left+dx, top+dy, c)
				}
			}
		}
	}

	help := "arrows pan  +/- zoom  0 origin  l last  n new  f finish  q quit"
	f.Text(0, h-1, help, termbox.ColorDefault, bg)
	return f
}

func (a *App) glyph(x, y int, win map[board.Point]bool, last *board.Point) termbox.Cell {
	c := termbox.Cell{Ch: '.', Fg: termbox.ColorDefault, Bg: termbox.ColorDefault}
	mark, ok := a.game.At(x, y)
	switch {
	case ok && mark == board.X:
		c.Ch, c.Fg = 'X', termbox.ColorCyan|termbox.AttrBold
	case ok && mark == board.O:
		c.Ch, c.Fg = 'O', termbox.ColorMagenta|termbox.AttrBold
	case x == 0 && y == 0:
		c.Ch = '+'
	}
	p := board.Point{X: x, Y: y}
	switch {
	case win[p]:
		c.Bg = termbox.ColorGreen
	case last != nil && *last == p:
		c.Fg |= termbox.AttrReverse
	}
	return c
}
