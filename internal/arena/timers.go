package arena

import (
	"connect4/internal/game"

	"github.com/rs/zerolog/log"
)

func (s *Session) scheduleBotLocked() {
	s.botTask.stop()
	task := &timerTask{}
	task.timer = timeAfterFunc(s.coord.cfg.BotMoveDelay, func() { s.runBotMove(task) })
	s.botTask = task
}

func (s *Session) runBotMove(task *timerTask) {
	s.mu.Lock()
	if s.botTask != task {
		s.mu.Unlock()
		return
	}
	s.botTask = nil
	if !s.botTurnLocked() {
		s.mu.Unlock()
		return
	}
	col := game.ChooseColumn(s.board, s.cellOf(s.partyB), s.cellOf(s.partyA))
	if col < 0 {
		s.mu.Unlock()
		return
	}
	bot := s.partyB
	st, err := s.playLocked(bot, col)
	s.mu.Unlock()
	if err != nil {
		log.Error().Err(err).Str("session_id", s.id).Int("column", col).Msg("bot move rejected")
		return
	}
	s.flushEvents()
	if st != nil {
		s.settle(st)
	}
}

func (s *Session) handleClose(username string, conn Conn) {
	s.mu.Lock()
	if cur := s.conns[username]; cur == nil || cur != conn {
		s.mu.Unlock()
		return
	}
	delete(s.conns, username)
	if s.status == StatusFinished {
		s.mu.Unlock()
		return
	}
	s.reconnect[username].stop()
	task := &timerTask{}
	task.timer = timeAfterFunc(s.coord.cfg.ReconnectGrace, func() { s.expireReconnect(username, task) })
	s.reconnect[username] = task
	s.mu.Unlock()

	log.Info().
		Str("session_id", s.id).
		Str("username", username).
		Dur("grace", s.coord.cfg.ReconnectGrace).
		Msg("connection lost, reconnect grace started")
}

func (s *Session) expireReconnect(username string, task *timerTask) {
	s.mu.Lock()
	if s.reconnect[username] != task {
		s.mu.Unlock()
		return
	}
	delete(s.reconnect, username)
	if s.status == StatusFinished {
		s.mu.Unlock()
		return
	}

	other := s.opponentOf(username)
	var st *settlement
	switch {
	case other != "" && s.conns[other] != nil:
		st = s.finishLocked(ResultForfeit, other)
	case len(s.conns) == 0:
		st = s.finishLocked(ResultDraw, "")
	case other != "":
		st = s.finishLocked(ResultForfeit, other)
	default:
		st = s.finishLocked(ResultDraw, "")
	}
	s.mu.Unlock()

	log.Info().
		Str("session_id", s.id).
		Str("username", username).
		Msg("reconnect grace expired")
	if st != nil {
		s.settle(st)
	}
}
