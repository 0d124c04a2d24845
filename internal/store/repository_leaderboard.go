package store

import (
	"context"
	"errors"
	"strings"
)

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

func (s *Store) IncrementWinCount(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username required")
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO leaderboard (username, wins, updated_at) VALUES ($1, 1, now())
		ON CONFLICT (username) DO UPDATE SET wins = leaderboard.wins + 1, updated_at = now()`,
		username,
	)
	return err
}

func (s *Store) QueryLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	limit = clampLeaderboardLimit(limit)
	rows, err := s.Pool.Query(ctx, `
		SELECT username, wins FROM leaderboard
		ORDER BY wins DESC, username ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Wins); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func clampLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		return maxLeaderboardLimit
	}
	return limit
}
