package arena

import (
	"encoding/json"

	"connect4/internal/game"
)

const (
	msgTypeState = "state"
	msgTypeMove  = "move"
	msgTypeEnd   = "end"
	msgTypeError = "error"

	msgTypeDrop = "drop"
)

type playersView struct {
	PartyA string `json:"partyA"`
	PartyB string `json:"partyB"`
}

type stateMessage struct {
	Type    string      `json:"type"`
	Board   game.Board  `json:"board"`
	Turn    string      `json:"turn"`
	Status  Status      `json:"status"`
	Players playersView `json:"players"`
	IsBot   bool        `json:"isBot"`
}

type moveMessage struct {
	Type      string `json:"type"`
	Player    string `json:"player"`
	Column    int    `json:"column"`
	Row       int    `json:"row"`
	Timestamp int64  `json:"timestamp"`
}

type endMessage struct {
	Type   string `json:"type"`
	Result string `json:"result"`
	Winner string `json:"winner,omitempty"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// clientMessage is the union of every inbound message. Col is the legacy spelling of Column.
type clientMessage struct {
	Type   string `json:"type"`
	Column *int   `json:"column,omitempty"`
	Col    *int   `json:"col,omitempty"`
}

func (m clientMessage) column() (int, bool) {
	switch {
	case m.Column != nil:
		return *m.Column, true
	case m.Col != nil:
		return *m.Col, true
	default:
		return 0, false
	}
}

type messageHandler func(s *Session, username string, msg clientMessage) error

var inboundHandlers = map[string]messageHandler{
	msgTypeDrop: handleDropMessage,
}

func handleDropMessage(s *Session, username string, msg clientMessage) error {
	col, ok := msg.column()
	if !ok {
		return game.ErrInvalidColumn
	}
	return s.HandleDrop(username, col)
}

func decodeClientMessage(raw []byte) (clientMessage, error) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return clientMessage{}, ErrInvalidMessage
	}
	if msg.Type == "" {
		return clientMessage{}, ErrInvalidMessage
	}
	return msg, nil
}

// EncodeError renders an error message for a client. Transports use it for failures that
// happen before a session is attached.
func EncodeError(code string) []byte {
	b, _ := json.Marshal(errorMessage{Type: msgTypeError, Message: code})
	return b
}
