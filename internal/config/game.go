package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// GameConfig holds the lifecycle delays of a session.
type GameConfig struct {
	MatchFallbackDelay time.Duration `env:"MATCH_FALLBACK_DELAY" envDefault:"60s"`
	ReconnectGrace     time.Duration `env:"RECONNECT_GRACE" envDefault:"30s"`
	BotMoveDelay       time.Duration `env:"BOT_MOVE_DELAY" envDefault:"150ms"`
	SettleTimeout      time.Duration `env:"SETTLE_TIMEOUT" envDefault:"5s"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
