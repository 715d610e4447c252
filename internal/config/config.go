// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every knob the binaries read from the environment.
type Config struct {
	HTTPAddr        string
	SQLitePath      string
	RedisAddr       string // empty disables the catalog cache
	KafkaBrokers    string // comma-separated; empty disables the outbox relay
	OutboxInterval  time.Duration
	CacheTTL        time.Duration
	ShutdownTimeout time.Duration
	OTLPEndpoint    string // empty disables tracing
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		SQLitePath:      getenv("SQLITE_PATH", "./data/shop.db"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		KafkaBrokers:    getenv("KAFKA_BROKERS", ""),
		OutboxInterval:  durenvs("OUTBOX_INTERVAL", 2),
		CacheTTL:        durenvs("CACHE_TTL", 300),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		OTLPEndpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}
