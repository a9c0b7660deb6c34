package board

// DefaultWinLength is the number of marks in an unbroken line that wins.
const DefaultWinLength = 5

// WinResult is the outcome of a win check. Winner is None and Line is empty
// when the anchor move did not complete a line.
type WinResult struct {
	Winner Mark    `json:"winner"`
	Line   []Point `json:"line"`
}

func (r WinResult) Won() bool {
	return r.Winner != None
}

// directions are tested in this order; the first qualifying one wins.
var directions = [4]Point{
	{X: 1, Y: 0},  // horizontal
	{X: 0, Y: 1},  // vertical
	{X: 1, Y: 1},  // diagonal \
	{X: 1, Y: -1}, // diagonal /
}

// CheckWinFromLastMove reports whether last completes a line of winLength
// marks. Only the four lines through last are scanned, and each side of the
// anchor is scanned at most winLength-1 cells, so the cost does not depend on
// how full the board is. A non-positive winLength falls back to
// DefaultWinLength.
func CheckWinFromLastMove(b *Board, last Move, winLength int) WinResult {
	if winLength < 1 {
		winLength = DefaultWinLength
	}
	for _, d := range directions {
		back := run(b, last, -d.X, -d.Y, winLength-1)
		fwd := run(b, last, d.X, d.Y, winLength-1)
		if back+fwd+1 < winLength {
			continue
		}
		line := make([]Point, winLength)
		for i := range line {
			off := i - back
			line[i] = Point{X: last.X + d.X*off, Y: last.Y + d.Y*off}
		}
		return WinResult{Winner: last.Player, Line: line}
	}
	return WinResult{Line: []Point{}}
}

// run counts consecutive cells holding the anchor's mark, stepping (dx, dy)
// away from the anchor, up to limit cells.
func run(b *Board, last Move, dx, dy, limit int) int {
	n := 0
	for step := 1; step <= limit; step++ {
		m, ok := b.At(last.X+dx*step, last.Y+dy*step)
		if !ok || m != last.Player {
			break
		}
		n++
	}
	return n
}
