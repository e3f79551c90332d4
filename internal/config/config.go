package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Upstream APIs
	CatalogAPIURL string // public catalog (default: http://localhost:8080/api)
	AccountAPIURL string // user accounts and libraries (default: http://localhost:8081/api)

	// Gateways
	RequestTimeout       time.Duration
	GatewayRatePerSecond float64
	DetailCacheTTL       time.Duration // How long fetched game details are reused

	// View
	CompactThreshold float64 // Fraction of the viewport height that switches navigation to compact mode
	PrefetchMargin   int     // Rows from the bottom at which the next page is requested

	// Inspector
	InspectorAddr string // Empty disables the local inspector server

	// Tracing
	TraceFile string // Gateway spans are appended here as JSON; empty disables export

	// Paths
	DatabaseFile string // $CONFIG_DIR/unig.db
	LogFile      string // $CONFIG_DIR/unig.log

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	viper.SetDefault("CATALOG_API_URL", "http://localhost:8080/api")
	viper.SetDefault("ACCOUNT_API_URL", "http://localhost:8081/api")
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 10)
	viper.SetDefault("GATEWAY_RATE_PER_SECOND", 10)
	viper.SetDefault("DETAIL_CACHE_MINUTES", 5)
	viper.SetDefault("COMPACT_THRESHOLD", 0.7)
	viper.SetDefault("PREFETCH_MARGIN", 3)
	viper.SetDefault("INSPECTOR_ADDR", "")
	viper.SetDefault("TRACE_FILE", "")
	viper.SetDefault("LOG_LEVEL", "info")

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "unig")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// A relative trace file lives in the config directory
	traceFile := viper.GetString("TRACE_FILE")
	if traceFile != "" && !filepath.IsAbs(traceFile) {
		traceFile = filepath.Join(configDir, traceFile)
	}

	config := &Config{
		CatalogAPIURL: viper.GetString("CATALOG_API_URL"),
		AccountAPIURL: viper.GetString("ACCOUNT_API_URL"),

		RequestTimeout:       time.Duration(viper.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		GatewayRatePerSecond: viper.GetFloat64("GATEWAY_RATE_PER_SECOND"),
		DetailCacheTTL:       time.Duration(viper.GetInt("DETAIL_CACHE_MINUTES")) * time.Minute,

		CompactThreshold: viper.GetFloat64("COMPACT_THRESHOLD"),
		PrefetchMargin:   viper.GetInt("PREFETCH_MARGIN"),

		InspectorAddr: viper.GetString("INSPECTOR_ADDR"),

		TraceFile: traceFile,

		DatabaseFile: filepath.Join(configDir, "unig.db"),
		LogFile:      filepath.Join(configDir, "unig.log"),

		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the values that cannot be defaulted away
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"CATALOG_API_URL": c.CatalogAPIURL,
		"ACCOUNT_API_URL": c.AccountAPIURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	if c.GatewayRatePerSecond <= 0 {
		return fmt.Errorf("GATEWAY_RATE_PER_SECOND must be positive")
	}
	if c.CompactThreshold <= 0 || c.CompactThreshold > 1 {
		return fmt.Errorf("COMPACT_THRESHOLD must be in (0, 1], got %v", c.CompactThreshold)
	}
	if c.PrefetchMargin < 0 {
		return fmt.Errorf("PREFETCH_MARGIN must not be negative")
	}
	return nil
}
