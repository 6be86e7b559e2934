package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/stocklot/backend/internal/domain/inventory"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Log           LogConfig
	Expiry        ExpiryConfig
	Notifications NotificationConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds settings for the embedded SQLite store
type DatabaseConfig struct {
	Path        string        // database file path, ":memory:" for in-memory
	BusyTimeout time.Duration // how long writers wait on a locked database
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// ExpiryConfig holds defaults for expiry classification and the dashboard
// summary window. The soon/ok thresholds seed the settings store on first
// run; the persisted values win afterwards.
type ExpiryConfig struct {
	SoonThresholdDays int
	OkThresholdDays   int
	SummaryDaysAhead  int
}

// NotificationConfig holds local notification settings
type NotificationConfig struct {
	Enabled bool
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STOCKLOT_ prefix (e.g. STOCKLOT_DATABASE_PATH)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOCKLOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Path:        v.GetString("database.path"),
			BusyTimeout: v.GetDuration("database.busy_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Expiry: ExpiryConfig{
			SoonThresholdDays: v.GetInt("expiry.soon_threshold_days"),
			OkThresholdDays:   v.GetInt("expiry.ok_threshold_days"),
			SummaryDaysAhead:  v.GetInt("expiry.summary_days_ahead"),
		},
		Notifications: NotificationConfig{
			Enabled: v.GetBool("notifications.enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "stocklot-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "stocklot.db"
	}
	if cfg.Database.BusyTimeout == 0 {
		cfg.Database.BusyTimeout = 5 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Expiry.SoonThresholdDays == 0 {
		cfg.Expiry.SoonThresholdDays = inventory.DefaultSoonThresholdDays
	}
	if cfg.Expiry.OkThresholdDays == 0 {
		cfg.Expiry.OkThresholdDays = inventory.DefaultOKThresholdDays
	}
	if cfg.Expiry.SummaryDaysAhead == 0 {
		cfg.Expiry.SummaryDaysAhead = 30
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Expiry.SoonThresholdDays < inventory.MinSoonThresholdDays || c.Expiry.SoonThresholdDays > inventory.MaxSoonThresholdDays {
		return fmt.Errorf("expiry.soon_threshold_days must be between %d and %d, got %d",
			inventory.MinSoonThresholdDays, inventory.MaxSoonThresholdDays, c.Expiry.SoonThresholdDays)
	}
	if c.Expiry.OkThresholdDays < inventory.MinOKThresholdDays || c.Expiry.OkThresholdDays > inventory.MaxOKThresholdDays {
		return fmt.Errorf("expiry.ok_threshold_days must be between %d and %d, got %d",
			inventory.MinOKThresholdDays, inventory.MaxOKThresholdDays, c.Expiry.OkThresholdDays)
	}
	if c.Expiry.OkThresholdDays <= c.Expiry.SoonThresholdDays {
		return fmt.Errorf("expiry.ok_threshold_days (%d) must exceed expiry.soon_threshold_days (%d)",
			c.Expiry.OkThresholdDays, c.Expiry.SoonThresholdDays)
	}
	if c.Expiry.SummaryDaysAhead < 0 {
		return fmt.Errorf("expiry.summary_days_ahead cannot be negative")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}
	return nil
}

// ExpirySettings returns the configured default thresholds as domain settings
func (c *ExpiryConfig) ExpirySettings() inventory.ExpirySettings {
	return inventory.ExpirySettings{
		SoonThresholdDays: c.SoonThresholdDays,
		OkThresholdDays:   c.OkThresholdDays,
	}.Normalized()
}

// DSN returns the SQLite connection string. The busy timeout keeps
// concurrent writers from failing immediately with SQLITE_BUSY.
func (d *DatabaseConfig) DSN() string {
	if d.Path == ":memory:" {
		return "file::memory:?cache=shared"
	}
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprintf("%d", d.BusyTimeout.Milliseconds()))
	q.Set("_foreign_keys", "1")
	return fmt.Sprintf("file:%s?%s", d.Path, q.Encode())
}
