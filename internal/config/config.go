package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath           string        `env:"DB_PATH"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"json"`
	PollInterval     time.Duration `env:"POLL_INTERVAL" envDefault:"15s"`
	Admins           []string      `env:"ADMINS" envSeparator:","`
	LeaderboardLimit int           `env:"LEADERBOARD_LIMIT" envDefault:"10"`
}

// Load reads STUDYBOT_* environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "STUDYBOT_"})
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("STUDYBOT_POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	if cfg.LeaderboardLimit <= 0 {
		return nil, fmt.Errorf("STUDYBOT_LEADERBOARD_LIMIT must be positive, got %d", cfg.LeaderboardLimit)
	}
	return &cfg, nil
}
