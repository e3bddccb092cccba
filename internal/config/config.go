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
	Source SourceConfig `mapstructure:"source"`
	Cache  CacheConfig  `mapstructure:"cache"`
	UI     UIConfig     `mapstructure:"ui"`
}

// SourceConfig points at the user's linked-data store.
type SourceConfig struct {
	TypeIndex      string `mapstructure:"type_index"`
	WebID          string `mapstructure:"web_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CacheConfig holds sqlite settings for the document cache.
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	AvatarIcon string `mapstructure:"avatar_icon"`
}

// Load reads configuration from file and env. Env var overrides use prefix SOLIDGROUPS_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("source.type_index", "")
	v.SetDefault("source.web_id", "")
	v.SetDefault("source.timeout_seconds", 30)
	v.SetDefault("cache.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "solidgroups", "cache.db"))
	v.SetDefault("ui.avatar_icon", "◯")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SOLIDGROUPS_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "solidgroups"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SOLIDGROUPS")
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
// needed. Used when the picker remembers the last type index it was pointed
// at.
func Save(cfg Config) error {
	path := os.Getenv("SOLIDGROUPS_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "solidgroups", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("source.type_index", cfg.Source.TypeIndex)
	v.Set("source.web_id", cfg.Source.WebID)
	v.Set("source.timeout_seconds", cfg.Source.TimeoutSeconds)
	v.Set("cache.path", cfg.Cache.Path)
	v.Set("ui.avatar_icon", cfg.UI.AvatarIcon)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
