package arena

import "errors"

// Error values double as the codes sent to clients in error messages.
var (
	ErrInvalidInput   = errors.New("invalid_input")
	ErrNotFound       = errors.New("session_not_found")
	ErrNotParticipant = errors.New("not_a_participant")

	ErrGameNotOngoing = errors.New("game_not_ongoing")
	ErrNotYourTurn    = errors.New("not_your_turn")
	ErrInvalidMessage = errors.New("invalid_message")
	ErrUnknownMessage = errors.New("unknown_message_type")
)
