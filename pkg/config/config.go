// Package config loads pipeline parameters from an optional config.yml,
// falling back to built-in defaults for every value.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Seed      int64           `mapstructure:"seed"`
	Data      DataConfig      `mapstructure:"data"`
	Finance   FinanceConfig   `mapstructure:"finance"`
	CLV       CLVConfig       `mapstructure:"clv"`
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
}

type DataConfig struct {
	RawDir       string `mapstructure:"raw_dir"`
	ProcessedDir string `mapstructure:"processed_dir"`
	GeneratedDir string `mapstructure:"generated_dir"`
	SeedFile     string `mapstructure:"seed_file"`
}

type FinanceConfig struct {
	AnnualInterestRate float64 `mapstructure:"annual_interest_rate"`
	COGSRate           float64 `mapstructure:"cogs_rate"`
	AnnualOverheadEUR  float64 `mapstructure:"annual_overhead_eur"`
}

type CLVConfig struct {
	DiscountRate float64 `mapstructure:"discount_rate"`
	ATierMinEUR  float64 `mapstructure:"a_tier_min_eur"`
	ExitBelowEUR float64 `mapstructure:"exit_below_eur"`
}

type WarehouseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Load reads config from the given file, or from an optional ./config.yml
// when path is empty. A missing optional file is not an error: the defaults
// describe the standard dataset.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("seed", 42)
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.processed_dir", "data/processed")
	v.SetDefault("data.generated_dir", "data/generated")
	v.SetDefault("data.seed_file", "wholesale_customers.csv")
	v.SetDefault("finance.annual_interest_rate", 0.05)
	v.SetDefault("finance.cogs_rate", 0.60)
	v.SetDefault("finance.annual_overhead_eur", 1180000.0)
	v.SetDefault("clv.discount_rate", 0.0)
	v.SetDefault("clv.a_tier_min_eur", 5000.0)
	v.SetDefault("clv.exit_below_eur", -1000.0)
	v.SetDefault("warehouse.dsn", "data/warehouse.db")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// SeedPath is the location of the raw wholesale customers file.
func (c *Config) SeedPath() string {
	return filepath.Join(c.Data.RawDir, c.Data.SeedFile)
}

// ProcessedPath joins a file name onto the processed data directory.
func (c *Config) ProcessedPath(name string) string {
	return filepath.Join(c.Data.ProcessedDir, name)
}

// GeneratedPath joins a file name onto the generated data directory.
func (c *Config) GeneratedPath(name string) string {
	return filepath.Join(c.Data.GeneratedDir, name)
}
