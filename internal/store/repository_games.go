package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// SaveGameRecord inserts a finished game. Saving the same id twice is a no-op.
func (s *Store) SaveGameRecord(ctx context.Context, rec GameRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("game record id required")
	}
	moves := rec.Moves
	if moves == nil {
		moves = []MoveRecord{}
	}
	movesJSON, err := json.Marshal(moves)
	if err != nil {
		return fmt.Errorf("encode moves: %w", err)
	}
	analyticsJSON, err := json.Marshal(rec.Analytics)
	if err != nil {
		return fmt.Errorf("encode analytics: %w", err)
	}
	finished := rec.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO games (id, created_at, finished_at, duration_seconds, party_a, party_b, is_bot, winner, result, moves, analytics)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID,
		timestamptzParam(rec.CreatedAt),
		timestamptzParam(finished),
		rec.DurationSeconds,
		rec.PartyA,
		textParam(rec.PartyB),
		rec.IsBot,
		rec.Winner,
		rec.Result,
		movesJSON,
		analyticsJSON,
	)
	return err
}

func (s *Store) GetGameRecord(ctx context.Context, id string) (*GameRecord, error) {
	var (
		rec           GameRecord
		createdAt     pgtype.Timestamptz
		finishedAt    pgtype.Timestamptz
		partyB        pgtype.Text
		movesJSON     []byte
		analyticsJSON []byte
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT id, created_at, finished_at, duration_seconds, party_a, party_b, is_bot, winner, result, moves, analytics
		FROM games WHERE id = $1`, id).Scan(
		&rec.ID,
		&createdAt,
		&finishedAt,
		&rec.DurationSeconds,
		&rec.PartyA,
		&partyB,
		&rec.IsBot,
		&rec.Winner,
		&rec.Result,
		&movesJSON,
		&analyticsJSON,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	rec.CreatedAt = createdAt.Time
	rec.FinishedAt = finishedAt.Time
	rec.PartyB = textVal(partyB)
	if len(movesJSON) > 0 {
		if err := json.Unmarshal(movesJSON, &rec.Moves); err != nil {
			return nil, fmt.Errorf("decode moves: %w", err)
		}
	}
	if len(analyticsJSON) > 0 {
		if err := json.Unmarshal(analyticsJSON, &rec.Analytics); err != nil {
			return nil, fmt.Errorf("decode analytics: %w", err)
		}
	}
	return &rec, nil
}
