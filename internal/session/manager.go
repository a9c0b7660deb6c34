package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fiveinrow/internal/game"
	"fiveinrow/internal/match"
	"fiveinrow/internal/storage"
)

// KeyPrefix prefixes the storage key of each logged-in session's names.
const KeyPrefix = "fiveinrow_session_v1:"

// Manager tracks logged-in sessions. Names live in storage so a session
// survives restarts; the game itself lives only in memory.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	kv       storage.KV
	gameOpts []game.Option
	now      func() time.Time
	logger   *slog.Logger
}

// NewManager creates a session manager. gameOpts apply to every new game.
func NewManager(kv storage.KV, logger *slog.Logger, gameOpts ...game.Option) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		kv:       kv,
		gameOpts: gameOpts,
		now:      time.Now,
		logger:   logger.With("component", "session-manager"),
	}
}

// Login validates names, stores them and starts a game for the new session.
func (m *Manager) Login(ctx context.Context, names match.Players) (*Session, error) {
	names, err := ValidatePlayers(names)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(names)
	if err != nil {
		return nil, fmt.Errorf("could not marshal names: %w", err)
	}
	id := uuid.NewString()
	if err := m.kv.Set(ctx, KeyPrefix+id, string(data)); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s := m.attach(id, names)
	m.logger.Info("session created", "session", id)
	return s, nil
}

// Names returns the stored names of session id.
func (m *Manager) Names(ctx context.Context, id string) (match.Players, error) {
	raw, err := m.kv.Get(ctx, KeyPrefix+id)
	if errors.Is(err, storage.ErrNotFound) {
		return match.Players{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return match.Players{}, fmt.Errorf("load session %s: %w", id, err)
	}
	names, ok := parseNames(raw)
	if !ok {
		m.logger.Warn("stored session names are corrupt", "session", id)
		return match.Players{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return names, nil
}

// Get returns a live session, reattaching a fresh game when the session is
// logged in but was evicted or the process restarted.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}
	names, err := m.Names(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.attach(id, names), nil
}

// Logout forgets the session's names and drops its game.
func (m *Manager) Logout(ctx context.Context, id string) error {
	if err := m.kv.Delete(ctx, KeyPrefix+id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Lock()
		s.closeViewersLocked()
		s.Unlock()
	}
	m.logger.Info("session logged out", "session", id)
	return nil
}

// Restore attaches a game to every stored session on startup.
func (m *Manager) Restore(ctx context.Context) error {
	entries, err := m.kv.List(ctx, KeyPrefix)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	for _, e := range entries {
		id := strings.TrimPrefix(e.Key, KeyPrefix)
		names, ok := parseNames(e.Value)
		if !ok {
			m.logger.Warn("skipping corrupt session", "session", id)
			continue
		}
		m.attach(id, names)
	}
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupLoop evicts idle sessions every interval until ctx is done.
func (m *Manager) CleanupLoop(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(maxIdle)
		}
	}
}

// cleanup drops idle games from memory. Stored names are kept, so a later
// Get starts the session over with an empty board.
func (m *Manager) cleanup(maxIdle time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, s := range m.sessions {
		if s.idle(now, maxIdle) {
			m.logger.Debug("evicting idle session", "session", id)
			delete(m.sessions, id)
		}
	}
}

func (m *Manager) attach(id string, names match.Players) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := newSession(id, names, game.New(names, m.gameOpts...), m.now())
	m.sessions[id] = s
	return s
}

func parseNames(raw string) (match.Players, bool) {
	var names match.Players
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return match.Players{}, false
	}
	if _, err := ValidatePlayers(names); err != nil {
		return match.Players{}, false
	}
	return names, true
}
