package session

import (
	"sync"
	"time"

	"fiveinrow/internal/camera"
	"fiveinrow/internal/game"
	"fiveinrow/internal/match"
)

// Viewer is one connected client watching a session. Camera is the
// viewer's own window onto the board and is guarded by the session lock.
type Viewer struct {
	ID     string
	Send   chan []byte // outbound messages
	Camera *camera.Camera
}

// Session is one logged-in pair of players and their live game. Callers must
// hold the session lock while touching Game.
type Session struct {
	mu         sync.Mutex
	ID         string
	Names      match.Players
	Game       *game.Game
	viewers    map[string]*Viewer
	lastActive time.Time
}

func newSession(id string, names match.Players, g *game.Game, now time.Time) *Session {
	return &Session{
		ID:         id,
		Names:      names,
		Game:       g,
		viewers:    make(map[string]*Viewer),
		lastActive: now,
	}
}

// AddViewer registers a viewer with a buffered send channel.
func (s *Session) AddViewer(id string, cam *camera.Camera) *Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := &Viewer{ID: id, Send: make(chan []byte, 64), Camera: cam}
	if old, ok := s.viewers[id]; ok {
		close(old.Send)
	}
	s.viewers[id] = v
	return v
}

// RemoveViewer closes and forgets a viewer.
func (s *Session) RemoveViewer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeViewerLocked(id)
}

func (s *Session) removeViewerLocked(id string) {
	if v, ok := s.viewers[id]; ok {
		close(v.Send)
		delete(s.viewers, id)
	}
}

func (s *Session) closeViewersLocked() {
	for id := range s.viewers {
		s.removeViewerLocked(id)
	}
}

func (s *Session) ViewerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers)
}

// ViewersLocked returns the current viewers. The caller must hold the lock.
func (s *Session) ViewersLocked() []*Viewer {
	out := make([]*Viewer, 0, len(s.viewers))
	for _, v := range s.viewers {
		out = append(out, v)
	}
	return out
}

// ActiveLocked reports whether v is still registered. The caller must hold
// the lock.
func (s *Session) ActiveLocked(v *Viewer) bool {
	return s.viewers[v.ID] == v
}

// BroadcastLocked sends msg to every viewer. The caller must hold the lock.
func (s *Session) BroadcastLocked(msg []byte) {
	for _, v := range s.viewers {
		select {
		case v.Send <- msg:
		default:
			// drop message if buffer full
		}
	}
}

// Broadcast sends msg to every viewer.
func (s *Session) Broadcast(msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BroadcastLocked(msg)
}

// TouchLocked records activity. The caller must hold the lock.
func (s *Session) TouchLocked(now time.Time) {
	s.lastActive = now
}

func (s *Session) idle(now time.Time, maxIdle time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers) == 0 && now.Sub(s.lastActive) > maxIdle
}

// Lock/Unlock expose the mutex for the server handlers.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }
