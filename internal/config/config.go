package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database      DatabaseConfig
	Ledger        LedgerConfig
	Notifications NotificationsConfig
	UI            UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LedgerConfig bounds series expansion.
type LedgerConfig struct {
	HorizonYears    int `mapstructure:"horizon_years"`
	MaxInstallments int `mapstructure:"max_installments"`
}

// NotificationsConfig holds reminder selection settings.
type NotificationsConfig struct {
	LookaheadDays int `mapstructure:"lookahead_days"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat string `mapstructure:"date_format"`
	Currency   string
	LogLevel   string `mapstructure:"log_level"`
}

// Load reads configuration from file and env. Env var overrides use prefix CABE_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "cabe", "cabe.db"))
	v.SetDefault("ledger.horizon_years", 10)
	v.SetDefault("ledger.max_installments", 120)
	v.SetDefault("notifications.lookahead_days", 30)
	v.SetDefault("ui.date_format", "02/01/2006")
	v.SetDefault("ui.currency", "BRL")
	v.SetDefault("ui.log_level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("CABE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "cabe"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CABE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed.
func Save(cfg Config) error {
	path := os.Getenv("CABE_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "cabe", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("ledger.horizon_years", cfg.Ledger.HorizonYears)
	v.Set("ledger.max_installments", cfg.Ledger.MaxInstallments)
	v.Set("notifications.lookahead_days", cfg.Notifications.LookaheadDays)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.currency", cfg.UI.Currency)
	v.Set("ui.log_level", cfg.UI.LogLevel)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
