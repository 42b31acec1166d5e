package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	PostgresURL string `env:"POSTGRES_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR"` // empty means in-process counters

	APIToken string `env:"API_TOKEN,required"`

	RateLimitEnabled       bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRequests      int  `env:"RATE_LIMIT_REQUESTS" envDefault:"60"`
	RateLimitWindowSeconds int  `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`

	DefaultRolloutPercent int     `env:"DEFAULT_ROLLOUT_PERCENT" envDefault:"100"`
	GlobalRatePerSecond   float64 `env:"GLOBAL_RATE_PER_SECOND" envDefault:"50"`
	MaxBodyBytes          int64   `env:"MAX_BODY_BYTES" envDefault:"1048576"` // 1MB

	RedactionFields string `env:"REDACT_FIELDS" envDefault:"email,password,credit_card,ssn"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
