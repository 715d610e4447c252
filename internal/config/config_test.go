package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %s", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "" || cfg.KafkaBrokers != "" {
		t.Fatalf("cache and relay must be disabled by default")
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("unexpected ShutdownTimeout: %v", cfg.ShutdownTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("OUTBOX_INTERVAL", "7")
	t.Setenv("KAFKA_BROKERS", "localhost:9092,localhost:9093")

	cfg := Load()
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("unexpected HTTPAddr: %s", cfg.HTTPAddr)
	}
	if cfg.OutboxInterval != 7*time.Second {
		t.Fatalf("unexpected OutboxInterval: %v", cfg.OutboxInterval)
	}
	if cfg.KafkaBrokers != "localhost:9092,localhost:9093" {
		t.Fatalf("unexpected KafkaBrokers: %s", cfg.KafkaBrokers)
	}
}

func TestBadIntFallsBackToDefault(t *testing.T) {
	t.Setenv("CACHE_TTL", "not-a-number")
	cfg := Load()
	if cfg.CacheTTL != 300*time.Second {
		t.Fatalf("unexpected CacheTTL: %v", cfg.CacheTTL)
	}
}
