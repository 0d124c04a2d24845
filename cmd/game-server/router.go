package main

import (
	"connect4/internal/config"
	httptransport "connect4/internal/transport/http"
	"connect4/internal/ws"

	"github.com/go-chi/chi/v5"
)

type routerStore interface {
	httptransport.LeaderboardReader
	httptransport.Pinger
}

func newRouter(cfg config.ServerConfig, matcher httptransport.Matcher, st routerStore, wsServer *ws.Server) *chi.Mux {
	return httptransport.NewRouter(cfg, matcher, st, st, wsServer.HandleWS)
}

func logRoutes(r chi.Router) {
	httptransport.LogRoutes(r)
}
