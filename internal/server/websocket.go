package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"fiveinrow/internal/camera"
	"fiveinrow/internal/session"
)

// WSMessage is the JSON envelope for WebSocket messages.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	ContainerWidth float64 `json:"containerWidth"`
	CellSize       float64 `json:"cellSize,omitempty"`
	Mobile         bool    `json:"mobile,omitempty"`
}

type pointerPayload struct {
	PointerID int     `json:"pointerId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type zoomPayload struct {
	Dir string `json:"dir"`
}

type centerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type resizePayload struct {
	ContainerWidth float64 `json:"containerWidth"`
}

type cellPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // allow any origin for dev
	})
	if err != nil {
		s.logger.Warn("websocket accept", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()

	// First message must be a join
	_, data, err := conn.Read(ctx)
	if err != nil {
		return
	}
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "join" {
		sendWSError(ctx, conn, "first message must be a join")
		return
	}
	var join joinPayload
	if err := json.Unmarshal(msg.Payload, &join); err != nil {
		sendWSError(ctx, conn, "invalid join payload")
		return
	}

	v := sess.AddViewer(uuid.NewString(), s.newCamera(join))
	logger := s.logger.With("session", sess.ID, "viewer", v.ID)
	logger.Debug("viewer joined")

	if !s.sendJoinState(sess, v) {
		// logged out or cleaned up between AddViewer and here
		logger.Debug("viewer dropped before first state")
		return
	}

	// Writer goroutine: send messages from the channel to the websocket
	go func() {
		for msg := range v.Send {
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
		// The session dropped this viewer.
		conn.Close(websocket.StatusNormalClosure, "session closed")
	}()

	// Reader loop: handle incoming messages
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reply(sess, v, "error", errorPayload{Message: "invalid message"})
			continue
		}
		s.handleMessage(ctx, sess, v, msg)
	}

	sess.RemoveViewer(v.ID)
	logger.Debug("viewer left")
}

func (s *Server) newCamera(join joinPayload) *camera.Camera {
	cam := camera.New(s.opts.Camera)
	switch {
	case join.CellSize > 0:
		cam.SetInitialCellSize(join.CellSize)
	case join.Mobile && s.opts.MobileCellSize > 0:
		cam.SetInitialCellSize(s.opts.MobileCellSize)
	}
	cam.Fit(join.ContainerWidth)
	return cam
}

func (s *Server) handleMessage(ctx context.Context, sess *session.Session, v *session.Viewer, msg WSMessage) {
	sess.Lock()
	defer sess.Unlock()
	if !sess.ActiveLocked(v) {
		return
	}
	cam := v.Camera

	switch msg.Type {
	case "pointerdown", "pointermove", "pointerup", "pointercancel":
		var p pointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			sendWSMsg(v.Send, "error", errorPayload{Message: "invalid pointer payload"})
			return
		}
		s.handlePointerLocked(sess, v, msg.Type, p)

	case "zoom":
		var z zoomPayload
		if err := json.Unmarshal(msg.Payload, &z); err != nil {
			sendWSMsg(v.Send, "error", errorPayload{Message: "invalid zoom payload"})
			return
		}
		switch z.Dir {
		case "in":
			cam.ZoomIn()
		case "out":
			cam.ZoomOut()
		case "reset":
			cam.ResetZoom()
		default:
			sendWSMsg(v.Send, "error", errorPayload{Message: "unknown zoom direction: " + z.Dir})
			return
		}
		sendWSMsg(v.Send, "state", viewerState(sess, v))

	case "center":
		var c centerPayload
		if err := json.Unmarshal(msg.Payload, &c); err != nil {
			sendWSMsg(v.Send, "error", errorPayload{Message: "invalid center payload"})
			return
		}
		cam.CenterOn(c.X, c.Y)
		sendWSMsg(v.Send, "state", viewerState(sess, v))

	case "centerZero":
		cam.CenterZero()
		sendWSMsg(v.Send, "state", viewerState(sess, v))

	case "centerLast":
		last := sess.Game.LastMove()
		if last == nil {
			sendWSMsg(v.Send, "error", errorPayload{Message: "no moves yet"})
			return
		}
		cam.CenterOn(float64(last.X), float64(last.Y))
		sendWSMsg(v.Send, "state", viewerState(sess, v))

	case "resize":
		var rp resizePayload
		if err := json.Unmarshal(msg.Payload, &rp); err != nil {
			sendWSMsg(v.Send, "error", errorPayload{Message: "invalid resize payload"})
			return
		}
		cam.Fit(rp.ContainerWidth)
		sendWSMsg(v.Send, "state", viewerState(sess, v))

	case "move":
		var c cellPayload
		if err := json.Unmarshal(msg.Payload, &c); err != nil {
			sendWSMsg(v.Send, "error", errorPayload{Message: "invalid move payload"})
			return
		}
		sendWSMsg(v.Send, "result", s.moveLocked(sess, c.X, c.Y))

	case "reset":
		s.resetLocked(sess)

	case "finish":
		fp, err := s.finishLocked(ctx, sess)
		if err != nil {
			s.logger.Error("finish failed", "session", sess.ID, "error", err)
			sendWSMsg(v.Send, "error", errorPayload{Message: "could not save match"})
			return
		}
		sendWSMsg(v.Send, "finished", fp)

	default:
		sendWSMsg(v.Send, "error", errorPayload{Message: "unknown message type: " + msg.Type})
	}
}

// handlePointerLocked drives the viewer's drag gesture. A press released
// without travelling past the click threshold places a mark.
func (s *Server) handlePointerLocked(sess *session.Session, v *session.Viewer, kind string, p pointerPayload) {
	cam := v.Camera
	switch kind {
	case "pointerdown":
		cam.PointerDown(p.PointerID, p.X, p.Y)
	case "pointermove":
		if cam.PointerMove(p.PointerID, p.X, p.Y) {
			sendWSMsg(v.Send, "state", viewerState(sess, v))
		}
	case "pointerup":
		wasDragging := cam.Dragging()
		cell, clicked := cam.PointerUp(p.PointerID, p.X, p.Y)
		if clicked {
			sendWSMsg(v.Send, "result", s.moveLocked(sess, cell.X, cell.Y))
			return
		}
		if wasDragging {
			sendWSMsg(v.Send, "state", viewerState(sess, v))
		}
	case "pointercancel":
		cam.PointerCancel(p.PointerID)
	}
}

// sendJoinState greets a new viewer with its first state. It reports false
// when the session already dropped v, whose channel is then closed.
func (s *Server) sendJoinState(sess *session.Session, v *session.Viewer) bool {
	sess.Lock()
	defer sess.Unlock()
	if !sess.ActiveLocked(v) {
		return false
	}
	sess.TouchLocked(s.now())
	sendWSMsg(v.Send, "state", viewerState(sess, v))
	return true
}

// reply sends one message to v if it is still connected.
func (s *Server) reply(sess *session.Session, v *session.Viewer, msgType string, payload any) {
	sess.Lock()
	defer sess.Unlock()
	if sess.ActiveLocked(v) {
		sendWSMsg(v.Send, msgType, payload)
	}
}

func sendWSMsg(send chan []byte, msgType string, payload any) {
	p, _ := json.Marshal(payload)
	msg, _ := json.Marshal(WSMessage{Type: msgType, Payload: p})
	select {
	case send <- msg:
	default:
	}
}

func sendWSError(ctx context.Context, conn *websocket.Conn, message string) {
	p, _ := json.Marshal(errorPayload{Message: message})
	msg, _ := json.Marshal(WSMessage{Type: "error", Payload: p})
	conn.Write(ctx, websocket.MessageText, msg)
}
