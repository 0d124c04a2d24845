package ws

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"connect4/internal/arena"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const defaultSendBuffer = 16

// Attacher routes an upgraded connection to its game session.
type Attacher interface {
	AttachConnection(conn arena.Conn, sessionID, username string) error
}

type Server struct {
	coord      Attacher
	upgrader   websocket.Upgrader
	sendBuffer int
}

func NewServer(coord Attacher, sendBuffer int) *Server {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Server{
		coord:      coord,
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		sendBuffer: sendBuffer,
	}
}

// HandleWS upgrades the request and attaches the client to the session named by the
// sessionId (or legacy gameId) query parameter, falling back to the username's session.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	req := parseJoinRequest(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	metricWSConnectionsTotal.Add(1)

	if req.Username == "" {
		reject(conn, codeUsernameRequired)
		return
	}

	client := newClient(conn, s.sendBuffer)
	if err := s.coord.AttachConnection(client, req.SessionID, req.Username); err != nil {
		log.Info().
			Err(err).
			Str("session_id", req.SessionID).
			Str("username", req.Username).
			Msg("websocket attach rejected")
		reject(conn, attachErrorCode(err))
		return
	}

	metricWSConnectionsActive.Add(1)
	defer metricWSConnectionsActive.Add(-1)
	go client.writeLoop()
	client.readLoop()
}

func attachErrorCode(err error) string {
	switch {
	case errors.Is(err, arena.ErrNotFound):
		return arena.ErrNotFound.Error()
	case errors.Is(err, arena.ErrNotParticipant):
		return arena.ErrNotParticipant.Error()
	case errors.Is(err, arena.ErrInvalidInput):
		return codeInvalidUsername
	default:
		return codeInternalError
	}
}

// reject tells a client why it cannot join and closes the connection.
func reject(conn *websocket.Conn, code string) {
	metricWSRejectedTotal.Add(1)
	deadline := time.Now().Add(writeWait)
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.WriteMessage(websocket.TextMessage, arena.EncodeError(code))
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, code), deadline)
	_ = conn.Close()
}

type joinRequest struct {
	SessionID string
	Username  string
}

func parseJoinRequest(r *http.Request) joinRequest {
	q := r.URL.Query()
	sessionID := strings.TrimSpace(q.Get("sessionId"))
	if sessionID == "" {
		sessionID = strings.TrimSpace(q.Get("gameId"))
	}
	return joinRequest{
		SessionID: sessionID,
		Username:  strings.TrimSpace(q.Get("username")),
	}
}
