package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(n int, at func(i int) Point, mark Mark) []Move {
	moves := make([]Move, n)
	for i := range moves {
		p := at(i)
		moves[i] = Move{X: p.X, Y: p.Y, Player: mark}
	}
	return moves
}

func boardOf(t *testing.T, moves []Move) *Board {
	t.Helper()
	b := New()
	for _, mv := range moves {
		require.NoError(t, b.Place(mv.X, mv.Y, mv.Player))
	}
	return b
}

func TestCheckWinDirections(t *testing.T) {
	tests := []struct {
		name string
		at   func(i int) Point
		mark Mark
		want []Point
	}{
		{
			name: "horizontal",
			at:   func(i int) Point { return Point{X: i, Y: 3} },
			mark: X,
			want: []Point{{0, 3}, {1, 3}, {2, 3}, {3, 3}, {4, 3}},
		},
		{
			name: "vertical",
			at:   func(i int) Point { return Point{X: -2, Y: i} },
			mark: O,
			want: []Point{{-2, 0}, {-2, 1}, {-2, 2}, {-2, 3}, {-2, 4}},
		},
		{
			name: "diagonal down",
			at:   func(i int) Point { return Point{X: i, Y: i} },
			mark: X,
			want: []Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}},
		},
		{
			name: "diagonal up",
			at:   func(i int) Point { return Point{X: i, Y: 4 - i} },
			mark: O,
			want: []Point{{0, 4}, {1, 3}, {2, 2}, {3, 1}, {4, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moves := line(5, tt.at, tt.mark)
			res := CheckWinFromLastMove(boardOf(t, moves), moves[4], DefaultWinLength)

			require.True(t, res.Won())
			assert.Equal(t, tt.mark, res.Winner)
			assert.Equal(t, tt.want, res.Line)
		})
	}
}

func TestCheckWinAnchorInMiddle(t *testing.T) {
	moves := line(5, func(i int) Point { return Point{X: 10 + i, Y: -7} }, X)
	res := CheckWinFromLastMove(boardOf(t, moves), moves[2], DefaultWinLength)

	require.True(t, res.Won())
	assert.Equal(t, Point{X: 10, Y: -7}, res.Line[0])
	assert.Contains(t, res.Line, moves[2].Point())
}

func TestCheckWinSixInARow(t *testing.T) {
	moves := line(6, func(i int) Point { return Point{X: i, Y: 1} }, X)
	last := moves[5]
	res := CheckWinFromLastMove(boardOf(t, moves), last, DefaultWinLength)

	require.True(t, res.Won())
	assert.Len(t, res.Line, 5)
	assert.Contains(t, res.Line, last.Point())
	assert.Equal(t, Point{X: 1, Y: 1}, res.Line[0])
}

func TestCheckWinFourInARow(t *testing.T) {
	moves := line(4, func(i int) Point { return Point{X: i, Y: 0} }, O)
	res := CheckWinFromLastMove(boardOf(t, moves), moves[3], DefaultWinLength)

	assert.False(t, res.Won())
	assert.Equal(t, None, res.Winner)
	assert.Empty(t, res.Line)
	assert.NotNil(t, res.Line)
}

func TestCheckWinBlockedByOpponent(t *testing.T) {
	moves := line(4, func(i int) Point { return Point{X: i, Y: 0} }, X)
	moves = append(moves, Move{X: 4, Y: 0, Player: O}, Move{X: 5, Y: 0, Player: X})
	b := boardOf(t, moves)

	assert.False(t, CheckWinFromLastMove(b, moves[3], DefaultWinLength).Won())
	assert.False(t, CheckWinFromLastMove(b, moves[5], DefaultWinLength).Won())
}

func TestCheckWinGapBreaksLine(t *testing.T) {
	b := New()
	for _, x := range []int{0, 1, 3, 4, 5} {
		require.NoError(t, b.Place(x, 0, X))
	}
	res := CheckWinFromLastMove(b, Move{X: 1, Y: 0, Player: X}, DefaultWinLength)
	assert.False(t, res.Won())
}

func TestCheckWinFixedDirectionOrder(t *testing.T) {
	// (2,2) completes both a row and a column; the row is tested first.
	b := New()
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Place(i, 2, X))
		if i != 2 {
			require.NoError(t, b.Place(2, i, X))
		}
	}
	res := CheckWinFromLastMove(b, Move{X: 2, Y: 2, Player: X}, DefaultWinLength)
	require.True(t, res.Won())
	assert.Equal(t, []Point{{0, 2}, {1, 2}, {2, 2}, {3, 2}, {4, 2}}, res.Line)
}

func TestCheckWinCustomLength(t *testing.T) {
	moves := line(3, func(i int) Point { return Point{X: 0, Y: i} }, O)
	b := boardOf(t, moves)

	assert.True(t, CheckWinFromLastMove(b, moves[2], 3).Won())
	assert.False(t, CheckWinFromLastMove(b, moves[2], 4).Won())
	assert.False(t, CheckWinFromLastMove(b, moves[2], 0).Won(), "non-positive length falls back to five")
}
