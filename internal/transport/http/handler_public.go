package httptransport

import (
	"context"
	"net/http"
	"strconv"

	"connect4/internal/store"

	"github.com/rs/zerolog/log"
)

const maxLeaderboardLimit = 100

type LeaderboardReader interface {
	QueryLeaderboard(ctx context.Context, limit int) ([]store.LeaderboardEntry, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type PublicHandlers struct {
	leaderboard  LeaderboardReader
	db           Pinger
	defaultLimit int
}

func NewPublicHandlers(leaderboard LeaderboardReader, db Pinger, defaultLimit int) *PublicHandlers {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &PublicHandlers{leaderboard: leaderboard, db: db, defaultLimit: defaultLimit}
}

func (h *PublicHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricLeaderboardQueryTotal.Add(1)
		limit := h.defaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_limit")
				return
			}
			limit = n
		}
		if limit < 1 {
			limit = 1
		}
		if limit > maxLeaderboardLimit {
			limit = maxLeaderboardLimit
		}

		rows, err := h.leaderboard.QueryLeaderboard(r.Context(), limit)
		if err != nil {
			metricLeaderboardQueryErrors.Add(1)
			log.Error().Err(err).Int("limit", limit).Msg("leaderboard query failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		if rows == nil {
			rows = []store.LeaderboardEntry{}
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func (h *PublicHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}
