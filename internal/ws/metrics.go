package ws

import "expvar"

var (
	metricWSConnectionsTotal  = expvar.NewInt("ws_connections_total")
	metricWSConnectionsActive = expvar.NewInt("ws_connections_active")
	metricWSRejectedTotal     = expvar.NewInt("ws_rejected_total")
	metricWSSendDroppedTotal  = expvar.NewInt("ws_send_dropped_total")
)
