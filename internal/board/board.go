package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Mark identifies a player. The zero value means "no mark".
type Mark string

const (
	None Mark = ""
	X    Mark = "X"
	O    Mark = "O"
)

// Opponent returns the other player's mark.
func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return None
	}
}

func (m Mark) Valid() bool {
	return m == X || m == O
}

// Point is a world coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Move is one placement in a game's move log. At is milliseconds since the
// Unix epoch.
type Move struct {
	X      int   `json:"x"`
	Y      int   `json:"y"`
	Player Mark  `json:"player"`
	At     int64 `json:"at"`
}

func (m Move) Point() Point {
	return Point{X: m.X, Y: m.Y}
}

// Cell is an occupied board cell.
type Cell struct {
	X    int  `json:"x"`
	Y    int  `json:"y"`
	Mark Mark `json:"mark"`
}

var ErrCellOccupied = errors.New("cell is already occupied")

// Board is a sparse, unbounded grid. Absence of a key means the cell is empty;
// cells are only ever cleared by starting a new board.
type Board struct {
	cells map[string]Mark
}

// New returns an empty board.
func New() *Board {
	return &Board{cells: make(map[string]Mark)}
}

// At returns the mark at (x, y) and whether the cell is occupied.
func (b *Board) At(x, y int) (Mark, bool) {
	m, ok := b.cells[Key(x, y)]
	return m, ok
}

// Occupied reports whether (x, y) holds a mark.
func (b *Board) Occupied(x, y int) bool {
	_, ok := b.cells[Key(x, y)]
	return ok
}

// Place sets (x, y) to mark. It refuses to overwrite an occupied cell.
func (b *Board) Place(x, y int, mark Mark) error {
	if !mark.Valid() {
		return fmt.Errorf("invalid mark %q", mark)
	}
	k := Key(x, y)
	if _, ok := b.cells[k]; ok {
		return fmt.Errorf("place %s: %w", k, ErrCellOccupied)
	}
	b.cells[k] = mark
	return nil
}

// Len returns the number of occupied cells.
func (b *Board) Len() int {
	return len(b.cells)
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	c := &Board{cells: make(map[string]Mark, len(b.cells))}
	for k, v := range b.cells {
		c.cells[k] = v
	}
	return c
}

// Equal reports whether both boards hold the same marks at the same cells.
func (b *Board) Equal(other *Board) bool {
	if b.Len() != other.Len() {
		return false
	}
	for k, v := range b.cells {
		if other.cells[k] != v {
			return false
		}
	}
	return true
}

// Cells lists occupied cells ordered by row, then column.
func (b *Board) Cells() []Cell {
	out := make([]Cell, 0, len(b.cells))
	for k, m := range b.cells {
		x, y, err := ParseKey(k)
		if err != nil {
			// keys are only ever written by Key
			continue
		}
		out = append(out, Cell{X: x, Y: y, Mark: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.cells)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	cells := make(map[string]Mark)
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	for k, m := range cells {
		if _, _, err := ParseKey(k); err != nil {
			return err
		}
		if !m.Valid() {
			return fmt.Errorf("cell %s: invalid mark %q", k, m)
		}
	}
	b.cells = cells
	return nil
}
