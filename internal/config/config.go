// Package config loads the quantdesk YAML configuration and applies
// environment variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Alpaca  Alpaca  `yaml:"alpaca"`
	Trading Trading `yaml:"trading"`
	Risk    Risk    `yaml:"risk"`
	Journal Journal `yaml:"journal"`
	History History `yaml:"history"`
	Logging Logging `yaml:"logging"`
}

// Alpaca holds credentials and endpoints for the Alpaca broker API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
}

// Trading selects the broker connection the trader binary uses.
type Trading struct {
	// BrokerID is the registry key for the configured connection.
	BrokerID string `yaml:"broker_id"`
	// BrokerType is "alpaca" or "simulator".
	BrokerType string `yaml:"broker_type"`
	// PaperMode selects the broker's practice environment.
	PaperMode bool `yaml:"paper_mode"`
}

// Risk holds the risk-limit thresholds as fractions of portfolio value.
// Zero values fall back to the built-in defaults. MaxCorrelation and
// MaxLeverage are accepted but not yet enforced by any check.
type Risk struct {
	MaxPositionPct      float64 `yaml:"max_position_pct"`
	MaxPortfolioRiskPct float64 `yaml:"max_portfolio_risk_pct"`
	MaxDailyLossPct     float64 `yaml:"max_daily_loss_pct"`
	MaxSectorPct        float64 `yaml:"max_sector_pct"`
	MaxCorrelation      float64 `yaml:"max_correlation"`
	MaxLeverage         float64 `yaml:"max_leverage"`
}

// Journal configures the order journal.
type Journal struct {
	// Path of the SQLite database; empty disables journaling.
	Path string `yaml:"path"`
}

// History configures the daily-bar history store and fetcher.
type History struct {
	DataDir         string   `yaml:"data_dir"`
	Symbols         []string `yaml:"symbols"`
	StartDate       string   `yaml:"start_date"`
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
	// Benchmark is the symbol used for beta computation (e.g. "SPY").
	Benchmark string `yaml:"benchmark"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML configuration at path and applies environment
// variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}
	if v := os.Getenv("JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.History.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Canonical Alpaca env vars take highest priority; these are the names
	// the SDK itself understands.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Trading.BrokerID == "" {
		cfg.Trading.BrokerID = "primary"
	}
	if cfg.Trading.BrokerType == "" {
		cfg.Trading.BrokerType = "alpaca"
	}
	if cfg.History.RateLimitPerMin == 0 {
		cfg.History.RateLimitPerMin = 200
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
