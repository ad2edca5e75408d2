// Package config handles configuration loading for getvalue.
// It supports YAML config files with .env and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seenimoa/getvalue/internal/infra"
	"github.com/seenimoa/getvalue/internal/manager"
	"github.com/seenimoa/getvalue/internal/providers/fmp"
)

const envPrefix = "GETVALUE"

// Config represents the complete application configuration.
type Config struct {
	FMP     FMPConfig     `mapstructure:"fmp"     yaml:"fmp"`
	Ingest  IngestConfig  `mapstructure:"ingest"  yaml:"ingest"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-" json:"-"`
}

// FMPConfig holds the Financial Modeling Prep client settings.
type FMPConfig struct {
	APIKey            string `mapstructure:"api_key"            yaml:"api_key"            json:"-"`
	BaseURL           string `mapstructure:"base_url"           yaml:"base_url"`
	TimeoutSec        int    `mapstructure:"timeout_sec"        yaml:"timeout_sec"`
	RateLimitMs       int    `mapstructure:"rate_limit_ms"      yaml:"rate_limit_ms"` // spacing between requests
	AnnualPeriods     int    `mapstructure:"annual_periods"     yaml:"annual_periods"`
	QuarterlyPeriods  int    `mapstructure:"quarterly_periods"  yaml:"quarterly_periods"`
	ConcurrentFetches int    `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
}

// IngestConfig holds pasted-data settings.
type IngestConfig struct {
	DefaultTicker string `mapstructure:"default_ticker" yaml:"default_ticker"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.getvalue/config.yaml (home directory)
//  3. /etc/getvalue/config.yaml (system)
//
// A .env file in the working directory is loaded into the environment first.
// Environment variables override config file values.
// Format: GETVALUE_<SECTION>_<KEY>, e.g., GETVALUE_FMP_API_KEY
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".getvalue"))
	v.AddConfigPath("/etc/getvalue")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// loadDotEnv loads ./.env without overriding variables already set.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env: %w", err)
	}
	return nil
}

// setDefaults sets defaults for every config value except the API key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("fmp.base_url", fmp.DefaultBaseURL)
	v.SetDefault("fmp.timeout_sec", 15)
	v.SetDefault("fmp.rate_limit_ms", 300)
	v.SetDefault("fmp.annual_periods", 10)
	v.SetDefault("fmp.quarterly_periods", 8)
	v.SetDefault("fmp.concurrent_fetches", 3)

	v.SetDefault("ingest.default_ticker", "UNKNOWN")

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads the API key from the environment.
// GETVALUE_FMP_API_KEY wins over the bare FMP_API_KEY.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("FMP_API_KEY"); key != "" {
		cfg.FMP.APIKey = key
	}
	if key := os.Getenv(envPrefix + "_FMP_API_KEY"); key != "" {
		cfg.FMP.APIKey = key
	}
}

// FMPOptions converts the fmp section to provider options.
func (c *Config) FMPOptions() fmp.Options {
	return fmp.Options{
		BaseURL:           c.FMP.BaseURL,
		Timeout:           time.Duration(c.FMP.TimeoutSec) * time.Second,
		RateLimit:         time.Duration(c.FMP.RateLimitMs) * time.Millisecond,
		QuarterlyPeriods:  c.FMP.QuarterlyPeriods,
		ConcurrentFetches: c.FMP.ConcurrentFetches,
	}
}

// ManagerOptions converts the config to data manager options.
func (c *Config) ManagerOptions() manager.Options {
	return manager.Options{
		AnnualPeriods: c.FMP.AnnualPeriods,
		DefaultTicker: c.Ingest.DefaultTicker,
	}
}

// LogOptions converts the logging section.
func (c *Config) LogOptions() infra.LogOptions {
	return infra.LogOptions{Level: c.Logging.Level, Format: c.Logging.Format}
}

// Addr returns the API listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
