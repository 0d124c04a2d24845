package arena

import "expvar"

var (
	metricMatchesCreatedTotal = expvar.NewInt("arena_matches_created_total")
	metricHumanMatchesTotal   = expvar.NewInt("arena_human_matches_total")
	metricBotMatchesTotal     = expvar.NewInt("arena_bot_matches_total")
	metricSessionsActive      = expvar.NewInt("arena_sessions_active")

	metricMovesAcceptedTotal = expvar.NewInt("arena_moves_accepted_total")
	metricMovesRejectedTotal = expvar.NewInt("arena_moves_rejected_total")

	metricReconnectsTotal       = expvar.NewInt("arena_reconnects_total")
	metricSettlementsTotal      = expvar.NewInt("arena_settlements_total")
	metricForfeitsTotal         = expvar.NewInt("arena_forfeits_total")
	metricCollaboratorFailTotal = expvar.NewInt("arena_collaborator_failures_total")
)
