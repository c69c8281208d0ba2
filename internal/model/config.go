package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// FeedConfig describes one read-only external calendar feed.
type FeedConfig struct {
	// ID is the unique identifier for this feed instance. It also keys the
	// feed's password in the system keyring.
	ID string `mapstructure:"id" yaml:"id"`

	// Name is the user-defined label for this feed.
	Name string `mapstructure:"name" yaml:"name"`

	// URL is the ICS subscription endpoint.
	URL string `mapstructure:"url" yaml:"url"`

	// Username enables HTTP basic auth when non-empty; the password is
	// looked up in the keyring.
	Username string `mapstructure:"username" yaml:"username"`

	// Enabled controls whether this feed is fetched.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// NotificationsConfig holds reminder settings.
type NotificationsConfig struct {
	// Enabled gates desktop reminder notifications.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// StorePath is the SQLite database path backing the board.
	StorePath string `mapstructure:"store_path" yaml:"store_path"`

	// Timezone is the IANA timezone all calendar dates are interpreted in.
	Timezone string `mapstructure:"timezone" yaml:"timezone"`

	// RefreshCron is the cron schedule for external feed refreshes.
	RefreshCron string `mapstructure:"refresh_cron" yaml:"refresh_cron"`

	Feeds         []FeedConfig        `mapstructure:"feeds" yaml:"feeds"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/familyboard/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "familyboard", "config.yaml")
}

// DefaultStorePath returns the default SQLite database path.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "familyboard.db")
	}
	return filepath.Join(home, ".local", "share", "familyboard", "board.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		StorePath:   DefaultStorePath(),
		Timezone:    "Local",
		RefreshCron: "*/15 * * * *",
		Feeds:       []FeedConfig{},
		Notifications: NotificationsConfig{
			Enabled: true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("store_path", DefaultStorePath())
	v.SetDefault("timezone", "Local")
	v.SetDefault("refresh_cron", "*/15 * * * *")
	v.SetDefault("notifications.enabled", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Viper unmarshals missing bools as false; treat an absent enabled key
	// on a feed as true.
	for i := range cfg.Feeds {
		if !cfg.Feeds[i].Enabled {
			key := fmt.Sprintf("feeds.%d.enabled", i)
			if !v.IsSet(key) {
				cfg.Feeds[i].Enabled = true
			}
		}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("store_path", cfg.StorePath)
	v.Set("timezone", cfg.Timezone)
	v.Set("refresh_cron", cfg.RefreshCron)
	v.Set("feeds", cfg.Feeds)
	v.Set("notifications", cfg.Notifications)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
