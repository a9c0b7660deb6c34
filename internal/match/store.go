package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"fiveinrow/internal/storage"
)

// Key is the storage key holding the whole match collection.
const Key = "fiveinrow_matches_v1"

// Store keeps every match as one JSON array under Key, newest first. Every
// read-modify-write of the collection runs under mu.
type Store struct {
	mu     sync.Mutex
	kv     storage.KV
	logger *slog.Logger
}

// NewStore creates a match store over kv.
func NewStore(kv storage.KV, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logger.With("component", "match-store")}
}

// Load returns all matches sorted by CreatedAt, newest first. A missing or
// unreadable collection loads as empty; only backend failures are errors.
func (s *Store) Load(ctx context.Context) ([]Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) ([]Match, error) {
	raw, err := s.kv.Get(ctx, Key)
	if errors.Is(err, storage.ErrNotFound) {
		return []Match{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	matches, ok := parse(raw)
	if !ok {
		s.logger.Warn("stored match collection is corrupt, treating as empty")
		return []Match{}, nil
	}
	return matches, nil
}

// Save replaces the collection with matches.
func (s *Store) Save(ctx context.Context, matches []Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, matches)
}

func (s *Store) save(ctx context.Context, matches []Match) error {
	sorted := sortMatches(matches)
	data, err := json.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("could not marshal matches: %w", err)
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("save matches: %w", err)
	}
	return nil
}

// Insert adds m, replacing any stored match with the same id.
func (s *Store) Insert(ctx context.Context, m Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches, err := s.load(ctx)
	if err != nil {
		return err
	}
	next := make([]Match, 0, len(matches)+1)
	next = append(next, m)
	for _, item := range matches {
		if item.ID != m.ID {
			next = append(next, item)
		}
	}
	return s.save(ctx, next)
}

// Update replaces the stored match with m's id. It is a no-op when no such
// match exists.
func (s *Store) Update(ctx context.Context, m Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches, err := s.load(ctx)
	if err != nil {
		return err
	}
	if i := indexOf(matches, m.ID); i >= 0 {
		matches[i] = m
		return s.save(ctx, matches)
	}
	return nil
}

// Upsert replaces the stored match with m's id, or inserts m when there is
// none, in one step.
func (s *Store) Upsert(ctx context.Context, m Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches, err := s.load(ctx)
	if err != nil {
		return err
	}
	if i := indexOf(matches, m.ID); i >= 0 {
		matches[i] = m
		return s.save(ctx, matches)
	}
	return s.save(ctx, append([]Match{m}, matches...))
}

// GetByID returns the match with id, or ErrMatchNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (Match, error) {
	matches, err := s.Load(ctx)
	if err != nil {
		return Match{}, err
	}
	for _, m := range matches {
		if m.ID == id {
			return m, nil
		}
	}
	return Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
}

// Clear removes every stored match.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, []Match{})
}

func indexOf(matches []Match, id string) int {
	for i := range matches {
		if matches[i].ID == id {
			return i
		}
	}
	return -1
}

// parse decodes a stored collection. Anything that is not a JSON array of
// match objects is rejected.
func parse(raw string) ([]Match, bool) {
	if raw == "" {
		return []Match{}, true
	}
	var matches []Match
	if err := json.Unmarshal([]byte(raw), &matches); err != nil {
		return nil, false
	}
	if matches == nil {
		// literal null
		return nil, false
	}
	return sortMatches(matches), true
}

func sortMatches(matches []Match) []Match {
	out := make([]Match, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}
