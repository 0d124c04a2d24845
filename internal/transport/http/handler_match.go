package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"connect4/internal/arena"

	"github.com/rs/zerolog/log"
)

const maxRequestBodyBytes = 4096

type Matcher interface {
	RequestMatch(username string) (arena.MatchResult, error)
}

type MatchHandlers struct {
	matcher Matcher
}

func NewMatchHandlers(matcher Matcher) *MatchHandlers {
	return &MatchHandlers{matcher: matcher}
}

type matchRequest struct {
	Username string `json:"username"`
}

func (h *MatchHandlers) Match() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricMatchRequestsTotal.Add(1)
		var req matchRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
			metricMatchErrorsTotal.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		res, err := h.matcher.RequestMatch(req.Username)
		if err != nil {
			metricMatchErrorsTotal.Add(1)
			if errors.Is(err, arena.ErrInvalidInput) {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_username")
				return
			}
			log.Error().Err(err).Str("username", req.Username).Msg("request match failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
