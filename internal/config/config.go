// Package config handles configuration loading for edgarfetch.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Edgar      EdgarConfig      `mapstructure:"edgar"      yaml:"edgar"`
	Download   DownloadConfig   `mapstructure:"download"   yaml:"download"`
	Identity   IdentityConfig   `mapstructure:"identity"   yaml:"identity"`
	Batch      BatchConfig      `mapstructure:"batch"      yaml:"batch"`
	Statements StatementsConfig `mapstructure:"statements" yaml:"statements"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
}

// EdgarConfig holds registry access settings. The registry rejects
// unidentified traffic, so UserAgent must describe the caller.
type EdgarConfig struct {
	UserAgent         string `mapstructure:"user_agent"          yaml:"user_agent"`
	RequestsPerSecond int    `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"     yaml:"timeout_seconds"`
	BaseURL           string `mapstructure:"base_url"            yaml:"base_url"`
	SearchURL         string `mapstructure:"search_url"          yaml:"search_url"`
	TickersURL        string `mapstructure:"tickers_url"         yaml:"tickers_url"`
}

// DownloadConfig holds filing download and localization settings.
type DownloadConfig struct {
	Root               string `mapstructure:"root"                yaml:"root"`
	Year               int    `mapstructure:"year"                yaml:"year"`
	Overwrite          bool   `mapstructure:"overwrite"           yaml:"overwrite"`
	UseFolders         bool   `mapstructure:"use_folders"         yaml:"use_folders"` // resources/{images,css} vs flat images/, css/
	ProcessImages      bool   `mapstructure:"process_images"      yaml:"process_images"`
	ProcessStylesheets bool   `mapstructure:"process_stylesheets" yaml:"process_stylesheets"`
	ResourceWorkers    int    `mapstructure:"resource_workers"    yaml:"resource_workers"`
}

// IdentityConfig holds ticker-to-CIK cache settings.
type IdentityConfig struct {
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"`
	TTLHours  int    `mapstructure:"ttl_hours"  yaml:"ttl_hours"`
}

// BatchConfig holds multi-day batch run settings.
type BatchConfig struct {
	CompaniesCSV    string `mapstructure:"companies_csv"     yaml:"companies_csv"`
	ProgressPath    string `mapstructure:"progress_path"     yaml:"progress_path"`
	DailyLimit      int    `mapstructure:"daily_limit"       yaml:"daily_limit"`
	CallsPerCompany int    `mapstructure:"calls_per_company" yaml:"calls_per_company"`
}

// StatementsConfig holds the annual-statement export API settings.
type StatementsConfig struct {
	APIKey    string `mapstructure:"api_key"    yaml:"api_key"`
	BaseURL   string `mapstructure:"base_url"   yaml:"base_url"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
	File  string `mapstructure:"file"  yaml:"file"`  // empty = stderr
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config.yaml (working directory)
//  2. ./config/config.yaml
//  3. ~/.edgarfetch/config.yaml
//  4. /etc/edgarfetch/config.yaml
//
// Environment variables override config file values.
// Format: EDGARFETCH_<SECTION>_<KEY>, e.g., EDGARFETCH_EDGAR_USER_AGENT
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".edgarfetch"))
	v.AddConfigPath("/etc/edgarfetch")

	// Environment variable settings
	v.SetEnvPrefix("EDGARFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("EDGARFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// Validate checks settings that would make every operation fail.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Edgar.UserAgent) == "" {
		return fmt.Errorf("config: edgar.user_agent must identify the caller (the registry rejects unidentified traffic)")
	}
	if c.Edgar.RequestsPerSecond <= 0 {
		return fmt.Errorf("config: edgar.requests_per_second must be positive, got %d", c.Edgar.RequestsPerSecond)
	}
	if c.Download.Root == "" {
		return fmt.Errorf("config: download.root must not be empty")
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Registry defaults
	v.SetDefault("edgar.user_agent", "edgarfetch/1.0 (github.com/seenimoa/edgarfetch)")
	v.SetDefault("edgar.requests_per_second", 10)
	v.SetDefault("edgar.timeout_seconds", 30)
	v.SetDefault("edgar.base_url", "https://www.sec.gov")
	v.SetDefault("edgar.search_url", "https://www.sec.gov/cgi-bin/browse-edgar")
	v.SetDefault("edgar.tickers_url", "https://www.sec.gov/files/company_tickers.json")

	// Download defaults
	v.SetDefault("download.root", "./downloads")
	v.SetDefault("download.year", time.Now().Year()-1) // most recent complete year
	v.SetDefault("download.overwrite", false)
	v.SetDefault("download.use_folders", true)
	v.SetDefault("download.process_images", true)
	v.SetDefault("download.process_stylesheets", true)
	v.SetDefault("download.resource_workers", 4)

	// Identity cache defaults
	v.SetDefault("identity.cache_path", "./company_cache.json")
	v.SetDefault("identity.ttl_hours", 24)

	// Batch defaults
	v.SetDefault("batch.companies_csv", "./companies.csv")
	v.SetDefault("batch.progress_path", "./progress.json")
	v.SetDefault("batch.daily_limit", 240)
	v.SetDefault("batch.calls_per_company", 3)

	// Statements defaults
	v.SetDefault("statements.base_url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("statements.output_dir", "./statements")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if ua := os.Getenv("EDGARFETCH_EDGAR_USER_AGENT"); ua != "" {
		cfg.Edgar.UserAgent = ua
	}
	if key := os.Getenv("EDGARFETCH_STATEMENTS_API_KEY"); key != "" {
		cfg.Statements.APIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
