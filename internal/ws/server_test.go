package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"connect4/internal/arena"
	"connect4/internal/config"

	"github.com/gorilla/websocket"
)

func testCoordinator() *arena.Coordinator {
	return arena.NewCoordinator(config.GameConfig{
		MatchFallbackDelay: time.Minute,
		ReconnectGrace:     50 * time.Millisecond,
		BotMoveDelay:       5 * time.Millisecond,
		SettleTimeout:      time.Second,
	}, nil, nil)
}

func startServer(t *testing.T, coord *arena.Coordinator) *httptest.Server {
	t.Helper()
	srv := NewServer(coord, 8)
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, params url.Values) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + params.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return m
}

// readUntil skips messages until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		m := readMessage(t, conn)
		if m["type"] == typ {
			return m
		}
	}
	t.Fatalf("no %q message", typ)
	return nil
}

func expectClosed(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected connection to be closed")
	}
}

func TestHandleWSRequiresUsername(t *testing.T) {
	ts := startServer(t, testCoordinator())
	conn := dial(t, ts, url.Values{"sessionId": {"abc"}})

	msg := readMessage(t, conn)
	if msg["type"] != "error" || msg["message"] != codeUsernameRequired {
		t.Fatalf("unexpected message %v", msg)
	}
	expectClosed(t, conn)
}

func TestHandleWSUnknownSession(t *testing.T) {
	ts := startServer(t, testCoordinator())
	conn := dial(t, ts, url.Values{"sessionId": {"missing"}, "username": {"alice"}})

	msg := readMessage(t, conn)
	if msg["type"] != "error" || msg["message"] != "session_not_found" {
		t.Fatalf("unexpected message %v", msg)
	}
	expectClosed(t, conn)
}

func TestHandleWSPlaysMoves(t *testing.T) {
	coord := testCoordinator()
	ts := startServer(t, coord)

	res, err := coord.RequestMatch("alice")
	if err != nil {
		t.Fatalf("match alice: %v", err)
	}
	alice := dial(t, ts, url.Values{"sessionId": {res.SessionID}, "username": {"alice"}})
	if msg := readMessage(t, alice); msg["type"] != "state" || msg["status"] != "waiting" {
		t.Fatalf("unexpected snapshot %v", msg)
	}

	if _, err := coord.RequestMatch("bob"); err != nil {
		t.Fatalf("match bob: %v", err)
	}
	if msg := readUntil(t, alice, "state"); msg["status"] != "ongoing" {
		t.Fatalf("unexpected state %v", msg)
	}
	bob := dial(t, ts, url.Values{"gameId": {res.SessionID}, "username": {"bob"}})
	if msg := readMessage(t, bob); msg["status"] != "ongoing" {
		t.Fatalf("unexpected bob snapshot %v", msg)
	}

	if err := alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"drop","column":3}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	move := readUntil(t, bob, "move")
	if move["player"] != "alice" || move["column"] != float64(3) || move["row"] != float64(5) {
		t.Fatalf("unexpected move %v", move)
	}
	if state := readUntil(t, bob, "state"); state["turn"] != "bob" {
		t.Fatalf("unexpected state %v", state)
	}

	if err := alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"drop","column":3}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readUntil(t, alice, "error"); msg["message"] != "not_your_turn" {
		t.Fatalf("unexpected error %v", msg)
	}
}

func TestHandleWSDisconnectForfeits(t *testing.T) {
	coord := testCoordinator()
	ts := startServer(t, coord)

	res, _ := coord.RequestMatch("alice")
	coord.RequestMatch("bob")
	alice := dial(t, ts, url.Values{"sessionId": {res.SessionID}, "username": {"alice"}})
	bob := dial(t, ts, url.Values{"sessionId": {res.SessionID}, "username": {"bob"}})
	readMessage(t, alice)
	readMessage(t, bob)

	_ = alice.Close()
	end := readUntil(t, bob, "end")
	if end["result"] != "forfeit" || end["winner"] != "bob" {
		t.Fatalf("unexpected end %v", end)
	}
}

func TestHandleWSReplacesConnection(t *testing.T) {
	coord := testCoordinator()
	ts := startServer(t, coord)

	res, _ := coord.RequestMatch("alice")
	first := dial(t, ts, url.Values{"sessionId": {res.SessionID}, "username": {"alice"}})
	readMessage(t, first)
	second := dial(t, ts, url.Values{"username": {"alice"}})
	if msg := readMessage(t, second); msg["status"] != "waiting" {
		t.Fatalf("unexpected snapshot %v", msg)
	}
	expectClosed(t, first)

	time.Sleep(150 * time.Millisecond)
	s, ok := coord.Session(res.SessionID)
	if !ok {
		t.Fatal("session should survive a replaced connection")
	}
	if v := s.View(); len(v.Connected) != 1 || v.Status != arena.StatusWaiting {
		t.Fatalf("unexpected view %+v", v)
	}
}
