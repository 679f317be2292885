package config

import (
	"fmt"
	"time"

	"github.com/avvvet/bingo-match/internal/engine"
	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port      string `env:"MATCH_SERVICE_PORT" envDefault:"8082"`
	RateLimit int    `env:"RATE_LIMIT" envDefault:"100"`
	JWTSecret string `env:"JWT_SECRET_KEY"`

	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	PostgresURL     string `env:"POSTGRES_URL"`
	MongoURI        string `env:"MONGODB_URI"`
	StatsCollection string `env:"MATCH_STATS_COLLECTION" envDefault:"player_stats"`

	NatsURL   string `env:"NATS_URL"`
	NatsToken string `env:"NATS_TOKEN"`

	CallInterval    time.Duration `env:"MATCH_CALL_INTERVAL" envDefault:"3s"`
	PrizeMultiplier string        `env:"MATCH_PRIZE_MULTIPLIER" envDefault:"4"`
	AccountTimeout  time.Duration `env:"MATCH_ACCOUNT_TIMEOUT" envDefault:"5s"`
}

// Load reads the service configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CallInterval <= 0 {
		return Config{}, fmt.Errorf("MATCH_CALL_INTERVAL must be positive, got %s", cfg.CallInterval)
	}
	return cfg, nil
}

// Engine converts the match settings for the engine.
func (c Config) Engine() (engine.Config, error) {
	mult, err := decimal.NewFromString(c.PrizeMultiplier)
	if err != nil {
		return engine.Config{}, fmt.Errorf("MATCH_PRIZE_MULTIPLIER: %w", err)
	}
	if !mult.IsPositive() {
		return engine.Config{}, fmt.Errorf("MATCH_PRIZE_MULTIPLIER must be positive, got %s", mult)
	}
	return engine.Config{
		CallInterval:    c.CallInterval,
		PrizeMultiplier: mult,
		AccountTimeout:  c.AccountTimeout,
	}, nil
}
