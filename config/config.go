package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/equitysim/market"
)

// DateLayout is the format for start/end dates in config files.
const DateLayout = "2006-01-02"

// Config represents a complete simulation run configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	ID   string      `json:"id" yaml:"id"`
	Cash market.Cash `json:"cash" yaml:"cash"` // smallest currency unit
}

// BacktestConfig sets the date range and strategy of a run.
type BacktestConfig struct {
	Start    string `json:"start" yaml:"start"`
	End      string `json:"end" yaml:"end"`
	Strategy string `json:"strategy" yaml:"strategy"`
	Ticker   string `json:"ticker" yaml:"ticker"`
}

// DataConfig locates the historical event store.
type DataConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Dates parses the configured date range.
func (b BacktestConfig) Dates() (start, end time.Time, err error) {
	start, err = time.Parse(DateLayout, b.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse backtest.start: %w", err)
	}
	end, err = time.Parse(DateLayout, b.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse backtest.end: %w", err)
	}
	return start, end, nil
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (format chosen by extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.Cash <= 0 {
		return fmt.Errorf("account.cash must be positive")
	}
	start, end, err := c.Backtest.Dates()
	if err != nil {
		return err
	}
	if start.After(end) {
		return fmt.Errorf("backtest.start must not be after backtest.end")
	}
	if c.Backtest.Strategy == "" {
		return fmt.Errorf("backtest.strategy is required")
	}
	if c.Backtest.Ticker == "" {
		return fmt.Errorf("backtest.ticker is required")
	}
	if c.Data.DBPath == "" {
		return fmt.Errorf("data.db_path is required")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:   "SIM-001",
			Cash: 100_000_000, // 1,000,000.00 in cents
		},
		Backtest: BacktestConfig{
			Start:    "2024-09-01",
			End:      "2024-12-31",
			Strategy: "buy-hold",
			Ticker:   "IVV",
		},
		Data: DataConfig{
			DBPath: "./events.sqlite",
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
	}
}
