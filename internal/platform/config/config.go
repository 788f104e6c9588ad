// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full service configuration.
type Config struct {
	Server Server
	Auth   Auth
	Limits Limits
	Events Events
	Redis  Redis
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"COLONX_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"COLONX_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Auth configures JWT caller authentication.
type Auth struct {
	SigningKey string `env:"COLONX_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	Issuer     string `env:"COLONX_JWT_ISSUER" envDefault:"colonx"`
	Audience   string `env:"COLONX_JWT_AUDIENCE" envDefault:"colonx-ledger"`
	// DevTokenEndpoint exposes POST /auth/dev-token for local development.
	DevTokenEndpoint bool `env:"COLONX_DEV_TOKEN_ENDPOINT" envDefault:"false"`
}

// Limits toggles the validation pipeline bounds.
type Limits struct {
	EnableSupplyLimits    bool `env:"COLONX_ENABLE_SUPPLY_LIMITS" envDefault:"true"`
	EnableOperationLimits bool `env:"COLONX_ENABLE_OPERATION_LIMITS" envDefault:"true"`
}

// Events configures the announcement pipeline. With an empty PostgresDSN the
// service falls back to the in-memory sink; with empty Brokers the outbox is
// written but not relayed.
type Events struct {
	PostgresDSN   string        `env:"COLONX_EVENTS_POSTGRES_DSN"`
	Brokers       []string      `env:"COLONX_KAFKA_BROKERS"`
	Topic         string        `env:"COLONX_KAFKA_TOPIC" envDefault:"colonx.ledger-events"`
	AsyncBuffer   int           `env:"COLONX_EVENTS_ASYNC_BUFFER" envDefault:"256"`
	RelayInterval time.Duration `env:"COLONX_EVENTS_RELAY_INTERVAL" envDefault:"1s"`
	RelayBatch    int           `env:"COLONX_EVENTS_RELAY_BATCH" envDefault:"100"`
}

// Redis configures the token revocation store. Empty URL disables revocation
// checking.
type Redis struct {
	URL          string        `env:"COLONX_REDIS_URL"`
	PoolSize     int           `env:"COLONX_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"COLONX_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"COLONX_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"COLONX_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"COLONX_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// FromEnv builds the configuration so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
