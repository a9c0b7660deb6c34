package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fiveinrow/internal/board"
	"fiveinrow/internal/match"
)

// Status is the session lifecycle. Won and Finished are terminal and only
// reachable from InProgress.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusFinished   Status = "finished"
)

// Reason explains why a move was rejected.
type Reason string

const (
	ReasonFinished Reason = "finished"
	ReasonOccupied Reason = "occupied"
)

var (
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrGameFinished = errors.New("game is already finished")
)

// Err maps a rejection reason to its sentinel error.
func (r Reason) Err() error {
	switch r {
	case ReasonFinished:
		return ErrGameFinished
	case ReasonOccupied:
		return ErrCellOccupied
	default:
		return nil
	}
}

// MoveResult reports whether a move was applied.
type MoveResult struct {
	OK     bool   `json:"ok"`
	Reason Reason `json:"reason,omitempty"`
}

// Recorder is the part of the match store a game persists through. Upsert
// must replace a record with the same id or insert a new one atomically.
type Recorder interface {
	Upsert(ctx context.Context, m match.Match) error
}

// Option configures a Game.
type Option func(*Game)

// WithWinLength sets how many marks in a row win. Values below 1 are ignored.
func WithWinLength(n int) Option {
	return func(g *Game) {
		if n >= 1 {
			g.winLength = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// WithIDGenerator replaces NewID.
func WithIDGenerator(gen func() string) Option {
	return func(g *Game) { g.newID = gen }
}

// Game is one hot-seat session between two local players. It is not safe for
// concurrent use; callers serialize access.
type Game struct {
	players   match.Players
	winLength int
	now       func() time.Time
	newID     func() string

	id         string
	createdAt  time.Time
	finishedAt *time.Time
	board      *board.Board
	moves      []board.Move
	current    board.Mark
	winner     board.Mark
	winLine    []board.Point
	status     Status
	persisted  bool
}

// New starts a game with X to move.
func New(players match.Players, opts ...Option) *Game {
	g := &Game{
		players:   players,
		winLength: board.DefaultWinLength,
		now:       time.Now,
		newID:     NewID,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.Reset()
	return g
}

// MakeMove places the current player's mark at (x, y). Rejections leave the
// game untouched.
func (g *Game) MakeMove(x, y int) MoveResult {
	if g.status != StatusInProgress {
		return MoveResult{Reason: ReasonFinished}
	}
	if g.board.Occupied(x, y) {
		return MoveResult{Reason: ReasonOccupied}
	}

	mv := board.Move{X: x, Y: y, Player: g.current, At: g.now().UnixMilli()}
	if err := g.board.Place(x, y, mv.Player); err != nil {
		return MoveResult{Reason: ReasonOccupied}
	}
	g.moves = append(g.moves, mv)

	res := board.CheckWinFromLastMove(g.board, mv, g.winLength)
	if res.Won() {
		g.winner = res.Winner
		g.winLine = res.Line
		g.status = StatusWon
		return MoveResult{OK: true}
	}
	g.current = g.current.Opponent()
	return MoveResult{OK: true}
}

// Reset discards the board and starts a new match with a fresh id.
func (g *Game) Reset() {
	g.id = g.newID()
	g.createdAt = g.now()
	g.finishedAt = nil
	g.board = board.New()
	g.moves = nil
	g.current = board.X
	g.winner = board.None
	g.winLine = []board.Point{}
	g.status = StatusInProgress
	g.persisted = false
}

// FinishAndPersist ends the game and hands its record to rec, updating an
// existing record with the same id or inserting a new one. Only the first
// successful call persists; later calls return false and do nothing.
func (g *Game) FinishAndPersist(ctx context.Context, rec Recorder) (bool, error) {
	if g.persisted {
		return false, nil
	}
	finishedAt := g.now()
	m := g.record(&finishedAt)

	if err := rec.Upsert(ctx, m); err != nil {
		return false, fmt.Errorf("persist match %s: %w", m.ID, err)
	}

	g.persisted = true
	g.finishedAt = &finishedAt
	if g.status == StatusInProgress {
		g.status = StatusFinished
	}
	return true, nil
}

// Record returns the match record for the current state.
func (g *Game) Record() match.Match {
	return g.record(g.finishedAt)
}

func (g *Game) record(finishedAt *time.Time) match.Match {
	m := match.Match{
		ID:        g.id,
		Players:   g.players,
		CreatedAt: g.createdAt.UnixMilli(),
		WinLine:   g.WinLine(),
		Moves:     g.Moves(),
	}
	if finishedAt != nil {
		ms := finishedAt.UnixMilli()
		m.FinishedAt = &ms
	}
	if g.winner != board.None {
		w := g.winner
		m.Winner = &w
	}
	return m
}

func (g *Game) ID() string                     { return g.id }
func (g *Game) Players() match.Players         { return g.players }
func (g *Game) CreatedAt() time.Time           { return g.createdAt }
func (g *Game) Status() Status                 { return g.status }
func (g *Game) Current() board.Mark            { return g.current }
func (g *Game) Winner() board.Mark             { return g.winner }
func (g *Game) WinLength() int                 { return g.winLength }
func (g *Game) Persisted() bool                { return g.persisted }
func (g *Game) At(x, y int) (board.Mark, bool) { return g.board.At(x, y) }

// Board returns a copy of the board.
func (g *Game) Board() *board.Board {
	return g.board.Clone()
}

// Moves returns a copy of the move log.
func (g *Game) Moves() []board.Move {
	out := make([]board.Move, len(g.moves))
	copy(out, g.moves)
	return out
}

// WinLine returns a copy of the winning line, empty until someone wins.
func (g *Game) WinLine() []board.Point {
	out := make([]board.Point, len(g.winLine))
	copy(out, g.winLine)
	return out
}

// LastMove returns the most recent move's cell, or nil before the first move.
func (g *Game) LastMove() *board.Point {
	if len(g.moves) == 0 {
		return nil
	}
	p := g.moves[len(g.moves)-1].Point()
	return &p
}
