package arena

import (
	"encoding/json"
	"sync"
	"time"

	"connect4/internal/events"
	"connect4/internal/game"

	"github.com/rs/zerolog/log"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusOngoing  Status = "ongoing"
	StatusFinished Status = "finished"
)

type Move struct {
	Player string
	Column int
	Row    int
	At     time.Time
}

// timerTask identifies one armed timer. Callbacks compare the task they were armed with
// against the session's current one before acting.
type timerTask struct {
	timer *time.Timer
}

func (t *timerTask) stop() {
	if t != nil && t.timer != nil {
		t.timer.Stop()
	}
}

type pendingEvent struct {
	name string
	data any
}

// Session is one game between two parties. All fields below mu are guarded by it.
type Session struct {
	id        string
	createdAt time.Time
	coord     *Coordinator

	publishMu sync.Mutex

	mu        sync.Mutex
	partyA    string
	partyB    string
	isBot     bool
	board     game.Board
	turn      string
	status    Status
	moves     []Move
	conns     map[string]Conn
	reconnect map[string]*timerTask
	botTask   *timerTask
	outbox    []pendingEvent
	settled   bool
}

// SessionView is a point-in-time copy of a session.
type SessionView struct {
	ID        string
	PartyA    string
	PartyB    string
	IsBot     bool
	Status    Status
	Turn      string
	Board     game.Board
	Moves     []Move
	Connected []string
	CreatedAt time.Time
}

func newSession(c *Coordinator, id, partyA string) *Session {
	return &Session{
		id:        id,
		createdAt: c.now(),
		coord:     c,
		partyA:    partyA,
		status:    StatusWaiting,
		conns:     map[string]Conn{},
		reconnect: map[string]*timerTask{},
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	connected := make([]string, 0, len(s.conns))
	for u := range s.conns {
		connected = append(connected, u)
	}
	return SessionView{
		ID:        s.id,
		PartyA:    s.partyA,
		PartyB:    s.partyB,
		IsBot:     s.isBot,
		Status:    s.status,
		Turn:      s.turn,
		Board:     s.board,
		Moves:     append([]Move(nil), s.moves...),
		Connected: connected,
		CreatedAt: s.createdAt,
	}
}

// Attach registers conn for username, replacing any earlier connection of that user. A
// waiting session is paired when a second username attaches.
func (s *Session) Attach(username string, conn Conn) error {
	s.mu.Lock()
	if s.isBot && username == s.partyB {
		s.mu.Unlock()
		return ErrNotParticipant
	}
	if task := s.reconnect[username]; task != nil {
		task.stop()
		delete(s.reconnect, username)
		metricReconnectsTotal.Add(1)
	}

	paired := false
	if s.status == StatusWaiting && username != s.partyA {
		s.startLocked(username, false)
		paired = true
	} else if username != s.partyA && username != s.partyB {
		s.mu.Unlock()
		return ErrNotParticipant
	}

	if old := s.conns[username]; old != nil && old != conn {
		old.Close()
	}
	s.conns[username] = conn
	conn.Bind(Handlers{
		OnMessage: func(raw []byte) { s.HandleMessage(username, raw) },
		OnClose:   func() { s.handleClose(username, conn) },
	})
	if b, err := json.Marshal(s.stateLocked()); err == nil {
		conn.Send(b)
	}
	s.mu.Unlock()

	log.Info().
		Str("session_id", s.id).
		Str("username", username).
		Bool("paired", paired).
		Msg("connection attached")

	if paired {
		metricHumanMatchesTotal.Add(1)
		s.coord.BindUser(username, s.id)
	}
	s.flushEvents()
	return nil
}

// pairHuman fills the second slot of a waiting session. It reports false when the session
// has already left the waiting state.
func (s *Session) pairHuman(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusWaiting || s.partyB != "" || username == s.partyA {
		return false
	}
	s.startLocked(username, false)
	return true
}

func (s *Session) pairBot(botName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusWaiting || s.partyB != "" {
		return false
	}
	s.startLocked(botName, true)
	return true
}

func (s *Session) startLocked(partyB string, bot bool) {
	s.partyB = partyB
	s.isBot = bot
	s.status = StatusOngoing
	s.turn = s.partyA
	s.broadcastLocked(s.stateLocked())
	s.outbox = append(s.outbox, pendingEvent{name: events.EventMatchStart, data: map[string]any{
		"partyA": s.partyA,
		"partyB": s.partyB,
		"isBot":  s.isBot,
	}})
	if s.botTurnLocked() {
		s.scheduleBotLocked()
	}
}

// HandleMessage decodes one inbound client message and dispatches it by type. Failures
// are answered with an error message to the sender only.
func (s *Session) HandleMessage(username string, raw []byte) {
	msg, err := decodeClientMessage(raw)
	if err == nil {
		handler, ok := inboundHandlers[msg.Type]
		if !ok {
			err = ErrUnknownMessage
		} else {
			err = handler(s, username, msg)
		}
	}
	if err != nil {
		s.sendError(username, err)
	}
}

// HandleDrop plays column for username. Rejected drops leave the session untouched.
func (s *Session) HandleDrop(username string, column int) error {
	s.mu.Lock()
	st, err := s.playLocked(username, column)
	s.mu.Unlock()
	if err != nil {
		metricMovesRejectedTotal.Add(1)
		log.Debug().
			Err(err).
			Str("session_id", s.id).
			Str("username", username).
			Int("column", column).
			Msg("drop rejected")
		return err
	}
	s.flushEvents()
	if st != nil {
		s.settle(st)
	}
	return nil
}

func (s *Session) playLocked(player string, column int) (*settlement, error) {
	if s.status != StatusOngoing {
		return nil, ErrGameNotOngoing
	}
	if player != s.turn {
		return nil, ErrNotYourTurn
	}
	row, err := s.board.Drop(column, s.cellOf(player))
	if err != nil {
		return nil, err
	}
	mv := Move{Player: player, Column: column, Row: row, At: s.coord.now()}
	s.moves = append(s.moves, mv)
	metricMovesAcceptedTotal.Add(1)

	s.broadcastLocked(moveMessage{
		Type:      msgTypeMove,
		Player:    mv.Player,
		Column:    mv.Column,
		Row:       mv.Row,
		Timestamp: mv.At.UnixMilli(),
	})
	s.outbox = append(s.outbox, pendingEvent{name: events.EventMove, data: map[string]any{
		"player":     mv.Player,
		"column":     mv.Column,
		"row":        mv.Row,
		"moveNumber": len(s.moves),
		"timestamp":  mv.At.UnixMilli(),
	}})

	if s.board.WinsAt(row, column) {
		return s.finishLocked(ResultWin, player), nil
	}
	if s.board.Full() {
		return s.finishLocked(ResultDraw, ""), nil
	}
	s.turn = s.opponentOf(player)
	s.broadcastLocked(s.stateLocked())
	if s.botTurnLocked() {
		s.scheduleBotLocked()
	}
	return nil, nil
}

func (s *Session) cellOf(username string) game.Cell {
	if username == s.partyA {
		return game.PartyA
	}
	return game.PartyB
}

func (s *Session) opponentOf(username string) string {
	if username == s.partyA {
		return s.partyB
	}
	return s.partyA
}

func (s *Session) botTurnLocked() bool {
	return s.isBot && s.status == StatusOngoing && s.turn == s.partyB
}

func (s *Session) stateLocked() stateMessage {
	return stateMessage{
		Type:    msgTypeState,
		Board:   s.board,
		Turn:    s.turn,
		Status:  s.status,
		Players: playersView{PartyA: s.partyA, PartyB: s.partyB},
		IsBot:   s.isBot,
	}
}

func (s *Session) broadcastLocked(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("session_id", s.id).Msg("encode broadcast")
		return
	}
	for username, conn := range s.conns {
		if !conn.Send(b) {
			log.Debug().
				Str("session_id", s.id).
				Str("username", username).
				Msg("broadcast dropped, connection closing")
		}
	}
}

func (s *Session) sendError(username string, err error) {
	s.mu.Lock()
	conn := s.conns[username]
	s.mu.Unlock()
	if conn != nil {
		conn.Send(EncodeError(err.Error()))
	}
}

// flushEvents publishes queued events in the order they were produced, followed by extra.
func (s *Session) flushEvents(extra ...pendingEvent) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	pending := s.outbox
	s.outbox = nil
	s.mu.Unlock()

	pending = append(pending, extra...)
	for _, ev := range pending {
		ctx, cancel := s.coord.collaboratorContext()
		err := s.coord.events.Publish(ctx, ev.name, s.id, ev.data)
		cancel()
		if err != nil {
			metricCollaboratorFailTotal.Add(1)
			log.Warn().
				Err(err).
				Str("session_id", s.id).
				Str("event", ev.name).
				Msg("publish event failed")
		}
	}
}
