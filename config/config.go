package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all relay settings.
type Config struct {
	Host  string `env:"HOST" envDefault:"localhost"`
	Port  int    `env:"PORT" envDefault:"8080"`
	Debug bool   `env:"DEBUG" envDefault:"false"`

	// Room sweeping. Only rooms that are both empty and older than RoomTTL
	// are removed.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	RoomTTL       time.Duration `env:"ROOM_TTL" envDefault:"30m"`

	// Interval between periodic stats log lines.
	StatsInterval time.Duration `env:"STATS_INTERVAL" envDefault:"30s"`

	// Optional ngrok tunnel for exposing a local relay publicly.
	NgrokEnabled   bool   `env:"NGROK_ENABLED" envDefault:"false"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server should listen on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
