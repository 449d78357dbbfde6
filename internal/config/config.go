package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`
	Port int    `env:"PORT" envDefault:"8080"`

	// memory | postgres
	Store string `env:"STORE" envDefault:"memory"`
	DB    DBConfig

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	NotifyQueue   string `env:"NOTIFY_QUEUE" envDefault:"userdir:notifications"`

	AssetBaseURL string        `env:"ASSET_BASE_URL" envDefault:"https://assets.localhost"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"30s"`

	// empty disables auth on write routes
	JWTSecret string `env:"JWT_SECRET"`
	WriteRole string `env:"WRITE_ROLE" envDefault:"service"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"userdir"`

	WorkerPollTimeout time.Duration `env:"WORKER_POLL_TIMEOUT" envDefault:"2s"`
	WorkerHealthPort  int           `env:"WORKER_HEALTH_PORT" envDefault:"8081"`
}

type DBConfig struct {
	Host     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"userdir"`
	Password string `env:"DB_PASSWORD" envDefault:"userdir"`
	Name     string `env:"DB_NAME" envDefault:"userdir"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"5"`
}

// URL builds the postgres connection string.
func (d DBConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	// a missing .env is fine outside local dev
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.Store {
	case "memory", "postgres":
	default:
		return Config{}, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	return cfg, nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
