package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type EventsConfig struct {
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic    string   `env:"KAFKA_TOPIC" envDefault:"game-events"`
	KafkaClientID string   `env:"KAFKA_CLIENT_ID" envDefault:"connect4"`

	Workers   int           `env:"EVENTS_WORKERS" envDefault:"2"`
	Buffer    int           `env:"EVENTS_BUFFER" envDefault:"1024"`
	RetryMax  int           `env:"EVENTS_RETRY_MAX" envDefault:"3"`
	RetryBase time.Duration `env:"EVENTS_RETRY_BASE" envDefault:"200ms"`
}

// Enabled reports whether any broker is configured.
func (c EventsConfig) Enabled() bool {
	for _, b := range c.KafkaBrokers {
		if b != "" {
			return true
		}
	}
	return false
}

func LoadEvents() (EventsConfig, error) {
	var cfg EventsConfig
	err := env.Parse(&cfg)
	return cfg, err
}
