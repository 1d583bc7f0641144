package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is built once at process start and handed to the storage helper and
// every handler, instead of each call site reading the process environment.
type Config struct {
	Port      string `env:"GAME_SERVICE_PORT" envDefault:"8080"`
	RateLimit int    `env:"RATE_LIMIT" envDefault:"100"`

	PostgresURL string `env:"POSTGRES_URL,required"`
	NatsURL     string `env:"NATS_URL" envDefault:"nats://localhost:4224"`
	NatsToken   string `env:"NATS_TOKEN"`

	JWTSecretKey string `env:"JWT_SECRET_KEY"`

	AWSRegion     string `env:"AWS_REGION" envDefault:"ap-south-1"`
	AWSAccessKey  string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	DefaultBucket string `env:"DEFAULT_S3_BUCKET" envDefault:"pinelime-orders"`

	CutoutAPIKey    string `env:"CUTOUT_API_KEY,required"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	ReplicateAPIKey string `env:"REPLICATE_API_KEY"`

	PollInterval time.Duration `env:"STYLIZE_POLL_INTERVAL" envDefault:"1s"`
	PollDeadline time.Duration `env:"STYLIZE_POLL_DEADLINE" envDefault:"5m"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse service config: %w", err)
	}
	return cfg, nil
}
