package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "STORE", "CACHE_TTL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Env != "dev" || cfg.Port != 8080 || cfg.Store != "memory" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("expected 30s cache ttl, got %s", cfg.CacheTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "p@ss")
	t.Setenv("CACHE_TTL", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Port != 9090 || cfg.Store != "postgres" || cfg.CacheTTL != 5*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}

	want := "postgres://userdir:p%40ss@db:5432/userdir?sslmode=disable"
	if got := cfg.DB.URL(); got != want {
		t.Fatalf("db url: got %s, want %s", got, want)
	}
}

func TestLoad_UnknownStore(t *testing.T) {
	t.Setenv("STORE", "sqlite")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}
