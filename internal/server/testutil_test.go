package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"nhooyr.io/websocket"

	"fiveinrow/internal/camera"
	"fiveinrow/internal/match"
	"fiveinrow/internal/session"
	"fiveinrow/internal/storage"
)

// --- Test environment ---

type testEnv struct {
	ts      *httptest.Server
	srv     *Server
	mgr     *session.Manager
	matches *match.Store
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := session.NewManager(store, logger)
	matches := match.NewStore(store, logger)

	webFS := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<html><body>test</body></html>")},
	}
	srv := New(mgr, matches, webFS, logger, Options{Camera: camera.DefaultConfig(), MobileCellSize: 28})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, srv: srv, mgr: mgr, matches: matches}
}

// --- Context helpers ---

func timeoutCtx(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// --- REST API helpers ---

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

// decodeResponse checks the status code and decodes the body into v.
func decodeResponse(t *testing.T, resp *http.Response, wantStatus int, v any) {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected %d, got %d: %s", wantStatus, resp.StatusCode, body)
	}
	if v == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createSessionViaAPI(t *testing.T, ts *httptest.Server, xName, oName string) string {
	t.Helper()
	body := fmt.Sprintf(`{"xName":%q,"oName":%q}`, xName, oName)
	var result createSessionResponse
	decodeResponse(t, doJSON(t, http.MethodPost, ts.URL+"/api/sessions", body), http.StatusCreated, &result)
	if result.ID == "" {
		t.Fatal("expected non-empty session id")
	}
	return result.ID
}

func moveViaAPI(t *testing.T, ts *httptest.Server, id string, x, y int) moveResponse {
	t.Helper()
	body := fmt.Sprintf(`{"x":%d,"y":%d}`, x, y)
	var result moveResponse
	decodeResponse(t, doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/moves", body), http.StatusOK, &result)
	return result
}

// playWinViaAPI has X complete a row along y=0 while O plays along y=1.
func playWinViaAPI(t *testing.T, ts *httptest.Server, id string) moveResponse {
	t.Helper()
	var last moveResponse
	for i := 0; i < 5; i++ {
		last = moveViaAPI(t, ts, id, i, 0)
		if !last.Result.OK {
			t.Fatalf("move X (%d,0) rejected: %s", i, last.Result.Reason)
		}
		if i < 4 {
			if res := moveViaAPI(t, ts, id, i, 1); !res.Result.OK {
				t.Fatalf("move O (%d,1) rejected: %s", i, res.Result.Reason)
			}
		}
	}
	return last
}

// --- WebSocket helpers ---

func wsURL(ts *httptest.Server, id string) string {
	return strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/sessions/" + id + "/ws"
}

// wsConnect dials a WebSocket, sends a join message, and consumes the initial
// state. The caller is responsible for closing the connection.
func wsConnect(t *testing.T, ts *httptest.Server, id string, join joinPayload) (*websocket.Conn, statePayload) {
	t.Helper()
	ctx, cancel := timeoutCtx(t)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL(ts, id), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	wsSend(ctx, t, conn, "join", join)
	return conn, readState(t, ctx, conn)
}

// wsSend marshals and writes a typed WebSocket message, calling t.Fatal on error.
func wsSend(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	p, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	data, err := json.Marshal(WSMessage{Type: msgType, Payload: p})
	if err != nil {
		t.Fatalf("marshal ws message: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("ws write: %v", err)
	}
}

// wsRead reads and unmarshals a WebSocket message, calling t.Fatal on error.
func wsRead(ctx context.Context, t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal ws message: %v", err)
	}
	return msg
}

// readTyped reads one message, checks its type and decodes its payload.
func readTyped(t *testing.T, ctx context.Context, conn *websocket.Conn, want string, v any) {
	t.Helper()
	msg := wsRead(ctx, t, conn)
	if msg.Type != want {
		t.Fatalf("expected %s message, got %q: %s", want, msg.Type, string(msg.Payload))
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		t.Fatalf("unmarshal %s payload: %v", want, err)
	}
}

func readState(t *testing.T, ctx context.Context, conn *websocket.Conn) statePayload {
	t.Helper()
	var sp statePayload
	readTyped(t, ctx, conn, "state", &sp)
	return sp
}

func readResult(t *testing.T, ctx context.Context, conn *websocket.Conn) resultPayload {
	t.Helper()
	var rp resultPayload
	readTyped(t, ctx, conn, "result", &rp)
	return rp
}

func readError(t *testing.T, ctx context.Context, conn *websocket.Conn) string {
	t.Helper()
	var ep errorPayload
	readTyped(t, ctx, conn, "error", &ep)
	return ep.Message
}

// cellCenter returns the pixel at the centre of window column col, row row
// for the default 40px unscaled camera.
func cellCenter(col, row int) (float64, float64) {
	return float64(col)*40 + 20, float64(row)*40 + 20
}
