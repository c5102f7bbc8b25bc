//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-starload.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// DateLayout is the layout of generate start and end dates.
const DateLayout = "2006-01-02"

// Config holds all configuration for pgedge-starload.
type Config struct {
	// Connection is the backend connection string (DSN or file path).
	Connection string `mapstructure:"connection"`

	// Backend is the storage backend: postgres, mysql, sqlite, sqlserver
	// or memory.
	Backend string `mapstructure:"backend"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is auto, console or json.
	LogFormat string `mapstructure:"log_format"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`

	// Metrics selects where load metrics go.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// InitConfig holds configuration for schema initialization.
type InitConfig struct {
	// DropExisting drops existing schema before initialization.
	DropExisting bool `mapstructure:"drop_existing"`
}

// LoadConfig holds configuration for a load run.
type LoadConfig struct {
	// Input is the CSV export to load.
	Input string `mapstructure:"input"`

	// Delimiter is the CSV field separator.
	Delimiter string `mapstructure:"delimiter"`

	// ConflictPolicy is "first-wins" or "reject".
	ConflictPolicy string `mapstructure:"conflict_policy"`

	// BatchSize is the number of rows per insert call.
	BatchSize int `mapstructure:"batch_size"`

	// DryRun loads into an in-memory store and reports what would change.
	DryRun bool `mapstructure:"dry_run"`
}

// GenerateConfig holds configuration for synthetic input generation.
type GenerateConfig struct {
	// Output is the CSV file to write.
	Output string `mapstructure:"output"`

	// Orders is the number of orders to generate.
	Orders int `mapstructure:"orders"`

	// Seed makes the output reproducible; 0 picks a random seed.
	Seed int64 `mapstructure:"seed"`

	// StartDate and EndDate bound purchase timestamps (YYYY-MM-DD).
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`

	// Pattern names the purchase time pattern (uniform, regional, global).
	Pattern string `mapstructure:"pattern"`
}

// MetricsConfig holds configuration for run metrics.
type MetricsConfig struct {
	// Backend is none, datadog or prometheus.
	Backend string `mapstructure:"backend"`

	// JobName tags every metric.
	JobName string `mapstructure:"job_name"`

	// PushgatewayURL is used by the prometheus backend.
	PushgatewayURL string `mapstructure:"pushgateway_url"`

	// Tags are extra datadog tags such as "env:prod".
	Tags []string `mapstructure:"tags"`

	// FlushInterval is the datadog flush period in seconds.
	FlushInterval int `mapstructure:"flush_interval"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Backend:   "postgres",
		LogLevel:  "info",
		LogFormat: "auto",
		Init: InitConfig{
			DropExisting: false,
		},
		Load: LoadConfig{
			Delimiter:      ",",
			ConflictPolicy: "first-wins",
			BatchSize:      1000,
		},
		Generate: GenerateConfig{
			Output:    "orders.csv",
			Orders:    1000,
			StartDate: "2016-09-01",
			EndDate:   "2018-10-31",
			Pattern:   "regional",
		},
		Metrics: MetricsConfig{
			Backend:        "none",
			JobName:        "starload",
			PushgatewayURL: "http://localhost:9091",
			FlushInterval:  60,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-starload.yaml
// 3. ~/.config/pgedge-starload/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-starload")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-starload"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Backend == "" {
		return fmt.Errorf("backend is required")
	}
	if c.Connection == "" && c.Backend != "memory" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateInit checks configuration required for init command.
// The memory backend is refused: nothing it creates outlives the process.
func (c *Config) ValidateInit() error {
	if c.Backend == "memory" {
		return fmt.Errorf("the memory backend keeps nothing between runs; use 'load --dry-run' instead")
	}
	return c.Validate()
}

// ValidateLoad checks configuration required for load command.
// A dry run needs no connection.
func (c *Config) ValidateLoad() error {
	if !c.Load.DryRun {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	if c.Load.Input == "" {
		return fmt.Errorf("input file is required for load")
	}
	if len([]rune(c.Load.Delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character")
	}
	if c.Load.ConflictPolicy != "" && c.Load.ConflictPolicy != "first-wins" && c.Load.ConflictPolicy != "reject" {
		return fmt.Errorf("conflict_policy must be 'first-wins' or 'reject'")
	}
	if c.Load.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	switch c.Metrics.Backend {
	case "", "none", "datadog":
	case "prometheus":
		if c.Metrics.PushgatewayURL == "" {
			return fmt.Errorf("pushgateway_url is required for the prometheus metrics backend")
		}
	default:
		return fmt.Errorf("metrics backend must be 'none', 'datadog' or 'prometheus'")
	}
	return nil
}

// ValidateGenerate checks configuration required for generate command.
func (c *Config) ValidateGenerate() error {
	if c.Generate.Output == "" {
		return fmt.Errorf("output file is required for generate")
	}
	if c.Generate.Orders < 1 {
		return fmt.Errorf("orders must be at least 1")
	}
	start, end, err := c.Generate.Range()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	return nil
}

// Range parses the start and end dates.
func (g GenerateConfig) Range() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, g.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: expected YYYY-MM-DD", g.StartDate)
	}
	end, err := time.Parse(DateLayout, g.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: expected YYYY-MM-DD", g.EndDate)
	}
	return start, end, nil
}
