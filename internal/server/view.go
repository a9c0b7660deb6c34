package server

import (
	"fiveinrow/internal/board"
	"fiveinrow/internal/camera"
	"fiveinrow/internal/game"
	"fiveinrow/internal/match"
	"fiveinrow/internal/session"
)

// gameView is the public state of a session's game.
type gameView struct {
	SessionID string        `json:"sessionId"`
	MatchID   string        `json:"matchId"`
	Players   match.Players `json:"players"`
	Status    game.Status   `json:"status"`
	Current   board.Mark    `json:"current"`
	Winner    board.Mark    `json:"winner"`
	WinLine   []board.Point `json:"winLine"`
	LastMove  *board.Point  `json:"lastMove"`
	MoveCount int           `json:"moveCount"`
	Persisted bool          `json:"persisted"`
	Board     *board.Board  `json:"board"`
}

// viewportView is one viewer's window and the marks inside it.
type viewportView struct {
	Window      camera.Window `json:"window"`
	CenterX     float64       `json:"centerX"`
	CenterY     float64       `json:"centerY"`
	CellSize    float64       `json:"cellSize"`
	Scale       float64       `json:"scale"`
	DisplayCell float64       `json:"displayCell"`
	Dragging    bool          `json:"dragging"`
	Cells       []board.Cell  `json:"cells"`
}

type statePayload struct {
	Game     gameView      `json:"game"`
	Viewport *viewportView `json:"viewport,omitempty"`
}

type resultPayload struct {
	OK     bool        `json:"ok"`
	Reason game.Reason `json:"reason,omitempty"`
}

type finishPayload struct {
	Saved   bool   `json:"saved"`
	MatchID string `json:"matchId"`
}

// newGameView must be called with the session lock held.
func newGameView(sess *session.Session) gameView {
	g := sess.Game
	return gameView{
		SessionID: sess.ID,
		MatchID:   g.ID(),
		Players:   g.Players(),
		Status:    g.Status(),
		Current:   g.Current(),
		Winner:    g.Winner(),
		WinLine:   g.WinLine(),
		LastMove:  g.LastMove(),
		MoveCount: len(g.Moves()),
		Persisted: g.Persisted(),
		Board:     g.Board(),
	}
}

func newViewportView(cam *camera.Camera, b *board.Board) *viewportView {
	win := cam.Window()
	cells := []board.Cell{}
	for _, c := range b.Cells() {
		if win.Contains(c.X, c.Y) {
			cells = append(cells, c)
		}
	}
	return &viewportView{
		Window:      win,
		CenterX:     cam.X(),
		CenterY:     cam.Y(),
		CellSize:    cam.CellSize(),
		Scale:       cam.Scale(),
		DisplayCell: cam.DisplayCell(),
		Dragging:    cam.Dragging(),
		Cells:       cells,
	}
}

// viewerState must be called with the session lock held.
func viewerState(sess *session.Session, v *session.Viewer) statePayload {
	gv := newGameView(sess)
	sp := statePayload{Game: gv}
	if v.Camera != nil {
		sp.Viewport = newViewportView(v.Camera, gv.Board)
	}
	return sp
}
