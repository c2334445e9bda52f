package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DATABASE_URL", "REDIS_ADDR", "REDIS_CACHE_TTL", "OTEL_PROBABILITY", "DB_MAX_OPEN_CONNS"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.HTTPAddr != ":8080" {
		t.Fatalf("expected :8080, got %s", c.HTTPAddr)
	}
	if c.DatabaseURL != "" || c.RedisAddr != "" {
		t.Fatalf("expected no database or redis by default, got %q %q", c.DatabaseURL, c.RedisAddr)
	}
	if c.RedisCacheTTL != 30*time.Second {
		t.Fatalf("unexpected ttl %v", c.RedisCacheTTL)
	}
	if c.TraceProbability != 1.0 || c.DBMaxOpenConns != 25 {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.TLS() {
		t.Fatal("tls must be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/inventory")
	t.Setenv("REDIS_CACHE_TTL", "2m")
	t.Setenv("OTEL_PROBABILITY", "0.25")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("TLS_CERT_FILE", "certs/server.crt")
	t.Setenv("TLS_KEY_FILE", "certs/server.key")
	c := Load()
	if c.HTTPAddr != ":9090" || c.DatabaseURL != "postgres://localhost/inventory" {
		t.Fatalf("unexpected %+v", c)
	}
	if c.RedisCacheTTL != 2*time.Minute || c.TraceProbability != 0.25 || c.DBMaxOpenConns != 7 {
		t.Fatalf("unexpected %+v", c)
	}
	if !c.TLS() {
		t.Fatal("expected tls enabled")
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	c := Load()
	if c.DBMaxOpenConns != 25 || c.ShutdownTimeout != 15*time.Second {
		t.Fatalf("expected defaults, got %+v", c)
	}
}
