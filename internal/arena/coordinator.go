package arena

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"connect4/internal/config"
	"connect4/internal/events"
	"connect4/internal/store"

	"github.com/rs/zerolog/log"
)

const (
	// BotPrefix tags synthesized bot identities. Real usernames may not carry it.
	BotPrefix = "BOT_"

	// MatchStatusMatched is reported when a username still maps to a session that is gone.
	MatchStatusMatched = "matched"

	defaultMatchFallbackDelay = 60 * time.Second
	defaultReconnectGrace     = 30 * time.Second
	defaultBotMoveDelay       = 150 * time.Millisecond
	defaultSettleTimeout      = 5 * time.Second
)

var timeAfterFunc = time.AfterFunc

type MatchResult struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
}

type waitingEntry struct {
	username  string
	sessionID string
	timer     *time.Timer
}

// Coordinator pairs players into sessions and routes connections to them. Lock order is
// Coordinator.mu before Session.mu.
type Coordinator struct {
	cfg    config.GameConfig
	store  GameStore
	events EventPublisher
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	byUser   map[string]string
	waiting  *waitingEntry
}

// NewCoordinator builds a coordinator. A nil store skips persistence and a nil publisher
// discards events.
func NewCoordinator(cfg config.GameConfig, st GameStore, pub EventPublisher) *Coordinator {
	if cfg.MatchFallbackDelay <= 0 {
		cfg.MatchFallbackDelay = defaultMatchFallbackDelay
	}
	if cfg.ReconnectGrace <= 0 {
		cfg.ReconnectGrace = defaultReconnectGrace
	}
	if cfg.BotMoveDelay <= 0 {
		cfg.BotMoveDelay = defaultBotMoveDelay
	}
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = defaultSettleTimeout
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Coordinator{
		cfg:      cfg,
		store:    st,
		events:   pub,
		now:      time.Now,
		sessions: map[string]*Session{},
		byUser:   map[string]string{},
	}
}

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username required", ErrInvalidInput)
	}
	if strings.HasPrefix(username, BotPrefix) {
		return "", fmt.Errorf("%w: username reserved", ErrInvalidInput)
	}
	return username, nil
}

// RequestMatch returns the session username should play in, pairing against the waiting
// player when there is one.
func (c *Coordinator) RequestMatch(username string) (MatchResult, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return MatchResult{}, err
	}

	c.mu.Lock()
	if id, ok := c.byUser[username]; ok {
		s := c.sessions[id]
		c.mu.Unlock()
		if s == nil {
			return MatchResult{SessionID: id, Status: MatchStatusMatched}, nil
		}
		return MatchResult{SessionID: id, Status: string(s.Status())}, nil
	}

	if w := c.waiting; w != nil && w.username != username {
		if s := c.sessions[w.sessionID]; s != nil && s.pairHuman(username) {
			w.timer.Stop()
			c.waiting = nil
			c.byUser[username] = s.id
			c.mu.Unlock()

			metricHumanMatchesTotal.Add(1)
			log.Info().
				Str("session_id", s.id).
				Str("party_a", w.username).
				Str("party_b", username).
				Msg("players paired")
			s.flushEvents()
			return MatchResult{SessionID: s.id, Status: string(StatusOngoing)}, nil
		}
		w.timer.Stop()
		c.waiting = nil
	}

	s := newSession(c, store.NewID(), username)
	c.sessions[s.id] = s
	c.byUser[username] = s.id
	entry := &waitingEntry{username: username, sessionID: s.id}
	entry.timer = timeAfterFunc(c.cfg.MatchFallbackDelay, func() { c.fallbackToBot(entry) })
	c.waiting = entry
	c.mu.Unlock()

	metricMatchesCreatedTotal.Add(1)
	metricSessionsActive.Add(1)
	log.Info().
		Str("session_id", s.id).
		Str("username", username).
		Dur("fallback", c.cfg.MatchFallbackDelay).
		Msg("waiting for opponent")
	return MatchResult{SessionID: s.id, Status: string(StatusWaiting)}, nil
}

func (c *Coordinator) fallbackToBot(entry *waitingEntry) {
	c.mu.Lock()
	if c.waiting != entry {
		c.mu.Unlock()
		return
	}
	s := c.sessions[entry.sessionID]
	paired := s != nil && s.pairBot(BotPrefix+entry.username)
	c.waiting = nil
	c.mu.Unlock()

	if !paired {
		return
	}
	metricBotMatchesTotal.Add(1)
	log.Info().
		Str("session_id", s.id).
		Str("username", entry.username).
		Msg("no opponent arrived, bot assigned")
	s.flushEvents()
}

// AttachConnection routes conn to the session named by sessionID, or to the session the
// username is playing in.
func (c *Coordinator) AttachConnection(conn Conn, sessionID, username string) error {
	username, err := normalizeUsername(username)
	if err != nil {
		return err
	}
	sessionID = strings.TrimSpace(sessionID)

	c.mu.Lock()
	var s *Session
	if sessionID != "" {
		s = c.sessions[sessionID]
	}
	if s == nil {
		if id, ok := c.byUser[username]; ok {
			s = c.sessions[id]
		}
	}
	c.mu.Unlock()

	if s == nil {
		return ErrNotFound
	}
	return s.Attach(username, conn)
}

// BindUser maps username to sessionID so the user can rejoin by name, and clears the
// waiting slot if it still points at that session.
func (c *Coordinator) BindUser(username, sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[sessionID]; !ok {
		return
	}
	c.byUser[username] = sessionID
	if c.waiting != nil && c.waiting.sessionID == sessionID {
		c.waiting.timer.Stop()
		c.waiting = nil
	}
}

// ReleaseSession forgets a finished session. Releasing twice is a no-op.
func (c *Coordinator) ReleaseSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[sessionID]; ok {
		delete(c.sessions, sessionID)
		metricSessionsActive.Add(-1)
	}
	for u, id := range c.byUser {
		if id == sessionID {
			delete(c.byUser, u)
		}
	}
	if c.waiting != nil && c.waiting.sessionID == sessionID {
		c.waiting.timer.Stop()
		c.waiting = nil
	}
}

func (c *Coordinator) Session(sessionID string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[sessionID]
	return s, ok
}

// SessionCount returns the number of live sessions.
func (c *Coordinator) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *Coordinator) collaboratorContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.cfg.SettleTimeout)
}
