package arena

import (
	"connect4/internal/events"
	"connect4/internal/store"

	"github.com/rs/zerolog/log"
)

const (
	ResultWin     = store.ResultWin
	ResultDraw    = store.ResultDraw
	ResultForfeit = store.ResultForfeit
)

type settlement struct {
	record store.GameRecord
	winner string
}

// finishLocked moves the session to finished and returns the work left for settle. It
// returns nil when the session was already settled.
func (s *Session) finishLocked(result, winner string) *settlement {
	if s.settled {
		return nil
	}
	s.settled = true
	s.status = StatusFinished

	s.botTask.stop()
	s.botTask = nil
	for u, task := range s.reconnect {
		task.stop()
		delete(s.reconnect, u)
	}

	finishedAt := s.coord.now()
	label := winner
	if result == ResultDraw {
		label = store.WinnerDraw
		winner = ""
	}
	moves := make([]store.MoveRecord, 0, len(s.moves))
	for _, mv := range s.moves {
		moves = append(moves, store.MoveRecord{Player: mv.Player, Column: mv.Column, Row: mv.Row, Timestamp: mv.At})
	}

	s.broadcastLocked(s.stateLocked())
	s.broadcastLocked(endMessage{Type: msgTypeEnd, Result: result, Winner: label})

	return &settlement{
		winner: winner,
		record: store.GameRecord{
			ID:              s.id,
			CreatedAt:       s.createdAt,
			FinishedAt:      finishedAt,
			DurationSeconds: int(finishedAt.Sub(s.createdAt).Seconds()),
			PartyA:          s.partyA,
			PartyB:          s.partyB,
			IsBot:           s.isBot,
			Winner:          label,
			Result:          result,
			Moves:           moves,
			Analytics: store.GameAnalytics{
				Result:     result,
				TotalMoves: len(moves),
				Bot:        s.isBot,
			},
		},
	}
}

// settle runs the collaborator side of a finished game and releases the session. Store and
// publish failures are logged and never stop the release.
func (s *Session) settle(st *settlement) {
	rec := st.record
	s.flushEvents()

	if s.coord.store != nil {
		ctx, cancel := s.coord.collaboratorContext()
		if err := s.coord.store.SaveGameRecord(ctx, rec); err != nil {
			metricCollaboratorFailTotal.Add(1)
			log.Error().Err(err).Str("session_id", s.id).Msg("save game record failed")
		}
		if st.winner != "" {
			if err := s.coord.store.IncrementWinCount(ctx, st.winner); err != nil {
				metricCollaboratorFailTotal.Add(1)
				log.Error().Err(err).Str("session_id", s.id).Str("username", st.winner).Msg("increment win count failed")
			}
		}
		cancel()
	}

	s.flushEvents(pendingEvent{name: events.EventMatchEnd, data: map[string]any{
		"result":          rec.Result,
		"winner":          rec.Winner,
		"durationSeconds": rec.DurationSeconds,
		"moves":           len(rec.Moves),
	}})

	metricSettlementsTotal.Add(1)
	if rec.Result == ResultForfeit {
		metricForfeitsTotal.Add(1)
	}
	log.Info().
		Str("session_id", s.id).
		Str("result", rec.Result).
		Str("winner", rec.Winner).
		Int("moves", len(rec.Moves)).
		Int("duration_seconds", rec.DurationSeconds).
		Msg("session settled")

	s.coord.ReleaseSession(s.id)
}
