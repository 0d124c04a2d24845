package arena

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"connect4/internal/config"
	"connect4/internal/store"
)

type fakeConn struct {
	mu       sync.Mutex
	msgs     [][]byte
	handlers Handlers
	closed   bool
}

func (f *fakeConn) Send(b []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.msgs = append(f.msgs, append([]byte(nil), b...))
	return true
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) Bind(h Handlers) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = h
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) deliver(raw string) {
	f.mu.Lock()
	h := f.handlers
	f.mu.Unlock()
	h.OnMessage([]byte(raw))
}

// hangUp simulates the transport noticing the peer went away.
func (f *fakeConn) hangUp() {
	f.Close()
	f.mu.Lock()
	h := f.handlers
	f.mu.Unlock()
	h.OnClose()
}

func (f *fakeConn) raw() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.msgs...)
}

func (f *fakeConn) ofType(typ string) []map[string]any {
	var out []map[string]any
	for _, b := range f.raw() {
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			continue
		}
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeConn) last(t *testing.T, typ string) map[string]any {
	t.Helper()
	msgs := f.ofType(typ)
	if len(msgs) == 0 {
		t.Fatalf("no %q message received", typ)
	}
	return msgs[len(msgs)-1]
}

type fakeStore struct {
	mu      sync.Mutex
	records []store.GameRecord
	wins    map[string]int
	saveErr error
	incErr  error
}

func (s *fakeStore) SaveGameRecord(_ context.Context, rec store.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeStore) IncrementWinCount(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.incErr != nil {
		return s.incErr
	}
	if s.wins == nil {
		s.wins = map[string]int{}
	}
	s.wins[username]++
	return nil
}

func (s *fakeStore) saved() []store.GameRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.GameRecord(nil), s.records...)
}

func (s *fakeStore) winsOf(username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wins[username]
}

type publishedEvent struct {
	name      string
	sessionID string
	data      any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, event, sessionID string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{name: event, sessionID: sessionID, data: data})
	return p.err
}

func (p *fakePublisher) names(sessionID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		if ev.sessionID == sessionID {
			out = append(out, ev.name)
		}
	}
	return out
}

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		MatchFallbackDelay: 40 * time.Millisecond,
		ReconnectGrace:     40 * time.Millisecond,
		BotMoveDelay:       5 * time.Millisecond,
		SettleTimeout:      time.Second,
	}
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeStore, *fakePublisher) {
	t.Helper()
	st := &fakeStore{}
	pub := &fakePublisher{}
	return NewCoordinator(testGameConfig(), st, pub), st, pub
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func mustMatch(t *testing.T, c *Coordinator, username string) MatchResult {
	t.Helper()
	res, err := c.RequestMatch(username)
	if err != nil {
		t.Fatalf("request match %s: %v", username, err)
	}
	return res
}

func mustAttach(t *testing.T, c *Coordinator, sessionID, username string) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	if err := c.AttachConnection(conn, sessionID, username); err != nil {
		t.Fatalf("attach %s: %v", username, err)
	}
	return conn
}

// pairedGame returns an ongoing human game between alice (first to move) and bob.
func pairedGame(t *testing.T) (*Coordinator, *Session, *fakeConn, *fakeConn, *fakeStore, *fakePublisher) {
	t.Helper()
	c, st, pub := newTestCoordinator(t)
	a := mustMatch(t, c, "alice")
	b := mustMatch(t, c, "bob")
	if a.SessionID != b.SessionID {
		t.Fatalf("expected shared session, got %s and %s", a.SessionID, b.SessionID)
	}
	s, ok := c.Session(a.SessionID)
	if !ok {
		t.Fatal("session missing")
	}
	ca := mustAttach(t, c, a.SessionID, "alice")
	cb := mustAttach(t, c, a.SessionID, "bob")
	return c, s, ca, cb, st, pub
}

func mustDrop(t *testing.T, s *Session, username string, col int) {
	t.Helper()
	if err := s.HandleDrop(username, col); err != nil {
		t.Fatalf("drop %s col %d: %v", username, col, err)
	}
}
