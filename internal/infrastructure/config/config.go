package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// Config holds all application configuration. Loaded once at startup and
// never mutated afterwards.
type Config struct {
	// Snapshot persistence
	SnapshotPath string `env:"SNAPSHOT_PATH" envDefault:"bankledger.json"`
	RedisURL     string `env:"REDIS_URL"     envDefault:""`
	SnapshotKey  string `env:"SNAPSHOT_KEY"  envDefault:"bankledger:snapshot"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// Interest tiering
	InterestBaseRate             float64 `env:"INTEREST_BASE_RATE"              envDefault:"0.02"`
	InterestMinimumBalance       float64 `env:"INTEREST_MINIMUM_BALANCE"        envDefault:"1000"`
	InterestBonusRate            float64 `env:"INTEREST_BONUS_RATE"             envDefault:"0.005"`
	InterestHighBalanceThreshold float64 `env:"INTEREST_HIGH_BALANCE_THRESHOLD" envDefault:"10000"`

	// Fees
	FeeOverdraft      float64 `env:"FEE_OVERDRAFT"       envDefault:"35"`
	FeeMaintenance    float64 `env:"FEE_MAINTENANCE"     envDefault:"5"`
	FeeMinimumBalance float64 `env:"FEE_MINIMUM_BALANCE" envDefault:"500"`

	// Transaction limits
	MaxTransactionAmount float64 `env:"MAX_TRANSACTION_AMOUNT" envDefault:"1000000"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// InterestSettings converts the configured interest tiering to domain settings.
func (c *Config) InterestSettings() domain.InterestSettings {
	return domain.InterestSettings{
		BaseRate:             c.InterestBaseRate,
		MinimumBalance:       decimal.NewFromFloat(c.InterestMinimumBalance),
		BonusRate:            c.InterestBonusRate,
		HighBalanceThreshold: decimal.NewFromFloat(c.InterestHighBalanceThreshold),
	}
}

// FeeSettings converts the configured fees to domain settings.
func (c *Config) FeeSettings() domain.FeeSettings {
	return domain.FeeSettings{
		Overdraft:      decimal.NewFromFloat(c.FeeOverdraft),
		Maintenance:    decimal.NewFromFloat(c.FeeMaintenance),
		MinimumBalance: decimal.NewFromFloat(c.FeeMinimumBalance),
	}
}

// MaxAmount returns the per-transaction ceiling as a decimal.
func (c *Config) MaxAmount() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxTransactionAmount)
}
