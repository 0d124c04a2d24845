package httptransport

import "expvar"

var (
	metricMatchRequestsTotal = expvar.NewInt("http_match_requests_total")
	metricMatchErrorsTotal   = expvar.NewInt("http_match_errors_total")

	metricLeaderboardQueryTotal  = expvar.NewInt("http_leaderboard_query_total")
	metricLeaderboardQueryErrors = expvar.NewInt("http_leaderboard_query_errors_total")

	metricEncodeErrorsTotal = expvar.NewInt("http_encode_errors_total")
)
