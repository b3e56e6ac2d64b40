package config_test

import (
	"testing"
	"time"

	"github.com/iho/loanledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DAILY_PENALTY_RATE", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.DefaultThresholdMonths != 3 {
		t.Fatalf("expected default threshold of 3 months, got %d", cfg.DefaultThresholdMonths)
	}

	rate, err := cfg.PenaltyRate()
	if err != nil {
		t.Fatalf("unexpected error parsing penalty rate: %v", err)
	}
	if rate.String() != "0.001" {
		t.Fatalf("expected default penalty rate 0.001, got %s", rate)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("DAILY_PENALTY_RATE", "0.0005")
	t.Setenv("DEFAULT_THRESHOLD_MONTHS", "6")
	t.Setenv("SWEEP_INTERVAL", "12h")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.DefaultThresholdMonths != 6 || cfg.SweepInterval != 12*time.Hour {
		t.Fatalf("expected delinquency overrides, got threshold=%d interval=%s", cfg.DefaultThresholdMonths, cfg.SweepInterval)
	}

	rate, err := cfg.PenaltyRate()
	if err != nil {
		t.Fatalf("unexpected error parsing penalty rate: %v", err)
	}
	if rate.String() != "0.0005" {
		t.Fatalf("expected penalty rate override, got %s", rate)
	}
}

func TestLoadInvalidPenaltyRate(t *testing.T) {
	t.Setenv("DAILY_PENALTY_RATE", "not-a-rate")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid penalty rate")
	}
}

func TestLoadNegativePenaltyRate(t *testing.T) {
	t.Setenv("DAILY_PENALTY_RATE", "-0.001")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for negative penalty rate")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
