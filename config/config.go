// Package config loads user preferences from ~/.wisp/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configDir  = ".wisp"
	configFile = "config"
	configType = "yaml"
)

// Config is the persisted user configuration.
type Config struct {
	REPL REPL `mapstructure:"repl" yaml:"repl"`
	Log  Log  `mapstructure:"log" yaml:"log"`
}

// REPL holds display settings and data-file locations.
type REPL struct {
	Format        string `mapstructure:"format" yaml:"format"`
	RowLimit      int    `mapstructure:"row_limit" yaml:"row_limit"`
	HistoryFile   string `mapstructure:"history_file" yaml:"history_file"`
	BookmarksFile string `mapstructure:"bookmarks_file" yaml:"bookmarks_file"`
}

// Log holds the structured-logger settings.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Load reads the configuration from ~/.wisp/config.yaml.
// A missing file yields the defaults, not an error.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}
	return LoadDir(dir)
}

// LoadDir is Load against an explicit directory.
func LoadDir(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetDefault("repl.format", "table")
	v.SetDefault("repl.row_limit", 1000)
	v.SetDefault("repl.history_file", filepath.Join(dir, "history"))
	v.SetDefault("repl.bookmarks_file", filepath.Join(dir, "bookmarks.json"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to dir/config.yaml, creating the directory if needed.
func Save(cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.Set("repl", map[string]any{
		"format":         cfg.REPL.Format,
		"row_limit":      cfg.REPL.RowLimit,
		"history_file":   cfg.REPL.HistoryFile,
		"bookmarks_file": cfg.REPL.BookmarksFile,
	})
	v.Set("log", map[string]any{
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
	})

	path := filepath.Join(dir, configFile+"."+configType)
	return v.WriteConfigAs(path)
}

// Dir returns the per-user configuration directory, ~/.wisp.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
