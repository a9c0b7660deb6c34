package match

import (
	"errors"

	"fiveinrow/internal/board"
)

var ErrMatchNotFound = errors.New("match not found")

// Players holds the names behind each mark.
type Players struct {
	XName string `json:"xName"`
	OName string `json:"oName"`
}

// Name returns the name playing mark, or "" for None.
func (p Players) Name(mark board.Mark) string {
	switch mark {
	case board.X:
		return p.XName
	case board.O:
		return p.OName
	default:
		return ""
	}
}

// Match is the persisted summary of one finished or abandoned game. Field names
// and nesting are the on-disk format; timestamps are Unix milliseconds.
type Match struct {
	ID         string        `json:"id"`
	Players    Players       `json:"players"`
	CreatedAt  int64         `json:"createdAt"`
	FinishedAt *int64        `json:"finishedAt"`
	Winner     *board.Mark   `json:"winner"`
	WinLine    []board.Point `json:"winLine"`
	Moves      []board.Move  `json:"moves"`
}

// HasWinner reports whether the match ended with five in a row.
func (m Match) HasWinner() bool {
	return m.Winner != nil && m.Winner.Valid()
}

// WinnerName returns the winning player's name, or "".
func (m Match) WinnerName() string {
	if !m.HasWinner() {
		return ""
	}
	return m.Players.Name(*m.Winner)
}
