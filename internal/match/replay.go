package match

import "fiveinrow/internal/board"

// Snapshot is a match's board at one step of its move log.
type Snapshot struct {
	Step     int           `json:"step"`
	MaxStep  int           `json:"maxStep"`
	Board    *board.Board  `json:"board"`
	Cells    []board.Cell  `json:"cells"`
	LastMove *board.Point  `json:"lastMove"`
	WinLine  []board.Point `json:"winLine"`
}

// ReplayAt rebuilds m's board after step moves. The stored win line is only
// reported on the final step, and is never recomputed.
func ReplayAt(m Match, step int) Snapshot {
	maxStep := len(m.Moves)
	step = board.ClampStep(step, maxStep)
	r := board.BuildFromMoves(m.Moves, step)
	snap := Snapshot{
		Step:     step,
		MaxStep:  maxStep,
		Board:    r.Board,
		Cells:    r.Board.Cells(),
		LastMove: r.LastMove,
		WinLine:  []board.Point{},
	}
	if m.HasWinner() && step == maxStep && len(m.WinLine) > 0 {
		snap.WinLine = append(snap.WinLine, m.WinLine...)
	}
	return snap
}
