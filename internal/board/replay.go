package board

// Replay is a board rebuilt from a prefix of a move log.
type Replay struct {
	Board *Board
	// LastMove is nil when no move was replayed.
	LastMove *Point
}

// BuildFromMoves replays the first upTo moves (clamped to [0, len(moves)])
// onto a fresh board. moves is never modified, so the call can be repeated
// against a stored match to scrub through its history.
func BuildFromMoves(moves []Move, upTo int) Replay {
	n := ClampStep(upTo, len(moves))
	b := &Board{cells: make(map[string]Mark, n)}
	for _, mv := range moves[:n] {
		// a later duplicate overwrites, matching a plain map replay
		b.cells[Key(mv.X, mv.Y)] = mv.Player
	}
	r := Replay{Board: b}
	if n > 0 {
		p := moves[n-1].Point()
		r.LastMove = &p
	}
	return r
}

// ClampStep limits a replay step to [0, maxStep].
func ClampStep(step, maxStep int) int {
	if step < 0 {
		return 0
	}
	if step > maxStep {
		return maxStep
	}
	return step
}
