package server

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fiveinrow/internal/camera"
	"fiveinrow/internal/match"
	"fiveinrow/internal/session"
)

// Options tunes the per-viewer cameras.
type Options struct {
	Camera         camera.Config
	MobileCellSize float64
}

// Server is the HTTP server.
type Server struct {
	router  chi.Router
	manager *session.Manager
	matches *match.Store
	webFS   fs.FS
	opts    Options
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a server with all routes.
// webFS should be the "web" subdirectory of the embedded filesystem.
func New(manager *session.Manager, matches *match.Store, webFS fs.FS, logger *slog.Logger, opts Options) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		manager: manager,
		matches: matches,
		webFS:   webFS,
		opts:    opts,
		now:     time.Now,
		logger:  logger.With("component", "http"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleLogout)
			r.Post("/moves", s.handleMove)
			r.Post("/reset", s.handleReset)
			r.Post("/finish", s.handleFinish)
			r.Get("/ws", s.handleWebSocket)
		})

		r.Get("/matches", s.handleListMatches)
		r.Delete("/matches", s.handleClearMatches)
		r.Get("/matches/{id}", s.handleGetMatch)
		r.Get("/matches/{id}/replay", s.handleReplay)
	})

	// Static files
	r.Handle("/*", http.FileServer(http.FS(s.webFS)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type createSessionResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req match.Players
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := s.manager.Login(r.Context(), req)
	if errors.Is(err, session.ErrInvalidName) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{ID: sess.ID})
}

// session resolves the {id} URL parameter, writing a 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.manager.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, session.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	if err != nil {
		s.internalError(w, "get session", err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	gv := newGameView(sess)
	sess.Unlock()
	writeJSON(w, http.StatusOK, statePayload{Game: gv})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Logout(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.internalError(w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type moveResponse struct {
	Result resultPayload `json:"result"`
	Game   gameView      `json:"game"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.X == nil || req.Y == nil {
		writeError(w, http.StatusBadRequest, "x and y required")
		return
	}

	sess.Lock()
	res := s.moveLocked(sess, *req.X, *req.Y)
	gv := newGameView(sess)
	sess.Unlock()

	writeJSON(w, http.StatusOK, moveResponse{Result: res, Game: gv})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	s.resetLocked(sess)
	gv := newGameView(sess)
	sess.Unlock()
	writeJSON(w, http.StatusOK, statePayload{Game: gv})
}

type finishResponse struct {
	finishPayload
	Game gameView `json:"game"`
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	fp, err := s.finishLocked(r.Context(), sess)
	gv := newGameView(sess)
	sess.Unlock()
	if err != nil {
		s.internalError(w, "finish", err)
		return
	}
	writeJSON(w, http.StatusOK, finishResponse{finishPayload: fp, Game: gv})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.matches.Load(r.Context())
	if err != nil {
		s.internalError(w, "load matches", err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleClearMatches(w http.ResponseWriter, r *http.Request) {
	if err := s.matches.Clear(r.Context()); err != nil {
		s.internalError(w, "clear matches", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) match(w http.ResponseWriter, r *http.Request) (match.Match, bool) {
	m, err := s.matches.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, match.ErrMatchNotFound) {
		writeError(w, http.StatusNotFound, "match not found")
		return match.Match{}, false
	}
	if err != nil {
		s.internalError(w, "get match", err)
		return match.Match{}, false
	}
	return m, true
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, ok := s.match(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleReplay serves the board after ?step=k moves, defaulting to the
// final position.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	m, ok := s.match(w, r)
	if !ok {
		return
	}
	step := len(m.Moves)
	if raw := r.URL.Query().Get("step"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "step must be an integer")
			return
		}
		step = n
	}
	writeJSON(w, http.StatusOK, match.ReplayAt(m, step))
}

// moveLocked applies a move and broadcasts the new state on success.
func (s *Server) moveLocked(sess *session.Session, x, y int) resultPayload {
	sess.TouchLocked(s.now())
	res := sess.Game.MakeMove(x, y)
	if res.OK {
		s.broadcastStateLocked(sess)
	}
	return resultPayload{OK: res.OK, Reason: res.Reason}
}

func (s *Server) resetLocked(sess *session.Session) {
	sess.TouchLocked(s.now())
	sess.Game.Reset()
	s.broadcastStateLocked(sess)
}

func (s *Server) finishLocked(ctx context.Context, sess *session.Session) (finishPayload, error) {
	sess.TouchLocked(s.now())
	saved, err := sess.Game.FinishAndPersist(ctx, s.matches)
	if err != nil {
		return finishPayload{}, err
	}
	if saved {
		s.logger.Info("match saved", "session", sess.ID, "match", sess.Game.ID(), "winner", sess.Game.Winner())
		s.broadcastStateLocked(sess)
	}
	return finishPayload{Saved: saved, MatchID: sess.Game.ID()}, nil
}

// broadcastStateLocked sends every viewer the game plus its own viewport.
func (s *Server) broadcastStateLocked(sess *session.Session) {
	for _, v := range sess.ViewersLocked() {
		sendWSMsg(v.Send, "state", viewerState(sess, v))
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
