// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, storage and telemetry.
type Config struct {
	ServiceName     string
	HTTPAddr        string
	TLSCertFile     string
	TLSKeyFile      string
	ShutdownTimeout time.Duration
	LogLevel        string

	// DatabaseURL selects the postgres store; empty keeps records in memory.
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnMaxLife  time.Duration

	// RedisAddr enables the product cache; empty disables it.
	RedisAddr     string
	RedisCacheTTL time.Duration

	OTELHost         string
	TraceProbability float64
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func floatenv(key string, def float64) float64 {
	f, err := strconv.ParseFloat(getenv(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}

func durenv(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(key, ""))
	if err != nil {
		return def
	}
	return d
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		ServiceName:      getenv("SERVICE_NAME", "inventoryflow"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		TLSCertFile:      getenv("TLS_CERT_FILE", ""),
		TLSKeyFile:       getenv("TLS_KEY_FILE", ""),
		ShutdownTimeout:  durenv("SHUTDOWN_TIMEOUT", 15*time.Second),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		DatabaseURL:      getenv("DATABASE_URL", ""),
		DBMaxOpenConns:   atoienv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:   atoienv("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLife:    durenv("DB_CONN_MAX_LIFETIME", time.Hour),
		RedisAddr:        getenv("REDIS_ADDR", ""),
		RedisCacheTTL:    durenv("REDIS_CACHE_TTL", 30*time.Second),
		OTELHost:         getenv("OTEL_HOST", ""),
		TraceProbability: floatenv("OTEL_PROBABILITY", 1.0),
	}
}

// TLS reports whether both certificate and key are configured.
func (c Config) TLS() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}
