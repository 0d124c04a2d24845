package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	EventMatchStart = "match_start"
	EventMove       = "move"
	EventMatchEnd   = "match_end"
)

var (
	ErrQueueFull = errors.New("events_queue_full")
	ErrClosed    = errors.New("events_publisher_closed")
)

// Publisher emits game lifecycle events. Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, event, sessionID string, data any) error
	Close() error
}

// Envelope is the JSON document written for every event.
type Envelope struct {
	EventID   string          `json:"event_id"`
	Event     string          `json:"event"`
	SessionID string          `json:"session_id"`
	TS        time.Time       `json:"ts"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func newEnvelope(event, sessionID string, data any, now time.Time) (Envelope, error) {
	env := Envelope{
		EventID:   uuid.NewString(),
		Event:     event,
		SessionID: sessionID,
		TS:        now.UTC(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Envelope{}, err
		}
		env.Data = raw
	}
	return env, nil
}

// Nop discards every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }

func (Nop) Close() error { return nil }
