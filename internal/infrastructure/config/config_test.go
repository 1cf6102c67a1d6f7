package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SnapshotPath != "bankledger.json" {
		t.Errorf("expected default snapshot path, got %q", cfg.SnapshotPath)
	}
	if cfg.SnapshotKey != "bankledger:snapshot" {
		t.Errorf("expected default snapshot key, got %q", cfg.SnapshotKey)
	}
	if cfg.RedisURL != "" {
		t.Errorf("expected redis disabled by default, got %q", cfg.RedisURL)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "console" {
		t.Errorf("unexpected logging defaults: %q %q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.InterestBaseRate != 0.02 || cfg.InterestBonusRate != 0.005 {
		t.Errorf("unexpected interest defaults: %v %v", cfg.InterestBaseRate, cfg.InterestBonusRate)
	}
	if cfg.FeeOverdraft != 35 || cfg.FeeMaintenance != 5 || cfg.FeeMinimumBalance != 500 {
		t.Errorf("unexpected fee defaults: %v %v %v", cfg.FeeOverdraft, cfg.FeeMaintenance, cfg.FeeMinimumBalance)
	}
	if cfg.MaxTransactionAmount != 1000000 {
		t.Errorf("unexpected max transaction default: %v", cfg.MaxTransactionAmount)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SNAPSHOT_PATH", "/var/lib/ledger/state.json")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FEE_OVERDRAFT", "25.50")
	t.Setenv("MAX_TRANSACTION_AMOUNT", "50000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SnapshotPath != "/var/lib/ledger/state.json" {
		t.Errorf("expected overridden path, got %q", cfg.SnapshotPath)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("expected overridden redis URL, got %q", cfg.RedisURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected overridden log level, got %q", cfg.LogLevel)
	}
	if cfg.FeeOverdraft != 25.50 {
		t.Errorf("expected overridden overdraft fee, got %v", cfg.FeeOverdraft)
	}
	if cfg.MaxTransactionAmount != 50000 {
		t.Errorf("expected overridden max amount, got %v", cfg.MaxTransactionAmount)
	}
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("FEE_OVERDRAFT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed numeric value")
	}
}

func TestSettingsConversion(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	interest := cfg.InterestSettings()
	if interest.BaseRate != 0.02 {
		t.Errorf("expected base rate 0.02, got %v", interest.BaseRate)
	}
	if !interest.HighBalanceThreshold.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected threshold 10000, got %s", interest.HighBalanceThreshold)
	}

	fees := cfg.FeeSettings()
	if !fees.Overdraft.Equal(decimal.NewFromInt(35)) {
		t.Errorf("expected overdraft 35, got %s", fees.Overdraft)
	}
	if !fees.MinimumBalance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected minimum balance 500, got %s", fees.MinimumBalance)
	}

	if !cfg.MaxAmount().Equal(decimal.NewFromInt(1000000)) {
		t.Errorf("expected max amount 1000000, got %s", cfg.MaxAmount())
	}
}
