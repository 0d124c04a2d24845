package arena

import (
	"context"

	"connect4/internal/store"
)

// GameStore persists finished games and the win leaderboard.
type GameStore interface {
	SaveGameRecord(ctx context.Context, rec store.GameRecord) error
	IncrementWinCount(ctx context.Context, username string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event, sessionID string, data any) error
}
