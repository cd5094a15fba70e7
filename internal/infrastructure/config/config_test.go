package config_test

import (
	"testing"
	"time"

	"github.com/iho/barter/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageDriver != config.DriverMemory {
		t.Fatalf("expected memory storage by default, got %s", cfg.StorageDriver)
	}

	if cfg.PresenceTTL != 90*time.Second {
		t.Fatalf("expected 90s presence TTL, got %s", cfg.PresenceTTL)
	}

	if cfg.MaxTradeItems != 1000 {
		t.Fatalf("expected 1000 max trade items, got %d", cfg.MaxTradeItems)
	}

	if !cfg.RecordRejections {
		t.Fatalf("expected rejections to be recorded by default")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.NeedsRedis() {
		t.Fatalf("expected default config to run without redis")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PRESENCE_DRIVER", "redis")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("PRESENCE_TTL", "2m")
	t.Setenv("TRADE_TIMEOUT", "3s")
	t.Setenv("RECORD_REJECTIONS", "false")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageDriver != config.DriverPostgres || cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected postgres storage, got %s %s", cfg.StorageDriver, cfg.DatabaseURL)
	}

	if cfg.PresenceTTL != 2*time.Minute {
		t.Fatalf("expected 2m presence TTL, got %s", cfg.PresenceTTL)
	}

	if cfg.TradeTimeout != 3*time.Second {
		t.Fatalf("expected 3s trade timeout, got %s", cfg.TradeTimeout)
	}

	if cfg.RecordRejections {
		t.Fatalf("expected rejections recording to be disabled")
	}

	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected kafka brokers: %v", cfg.KafkaBrokers)
	}

	if !cfg.AuthEnabled || cfg.JWTSecret != "top-secret" {
		t.Fatalf("expected auth overrides to apply")
	}

	if !cfg.NeedsRedis() {
		t.Fatalf("expected redis presence to require redis")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage driver", map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{"unknown presence driver", map[string]string{"PRESENCE_DRIVER": "etcd"}},
		{"zero ttl", map[string]string{"PRESENCE_TTL": "0s"}},
		{"auth without secret", map[string]string{"AUTH_ENABLED": "true", "JWT_SECRET": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
