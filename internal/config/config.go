// Package config loads tag-hints settings from a TOML file, the environment
// and defaults, in increasing order of precedence: defaults, file, env.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variables consulted by Load.
const (
	EnvConfig = "TAG_HINTS_CONFIG"
	EnvDB     = "TAG_HINTS_DB"
)

// Config holds all settings.
type Config struct {
	DB           string    `toml:"db"`
	Mode         string    `toml:"mode"`
	SnapshotSize int       `toml:"snapshot_size"`
	QueryLimit   int       `toml:"query_limit"`
	LoadTimeout  string    `toml:"load_timeout"`
	Log          LogConfig `toml:"log"`
}

// LogConfig controls the slog handler used by the CLI.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		DB:           defaultDBPath(),
		Mode:         "default",
		SnapshotSize: 101,
		QueryLimit:   20,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

func defaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tag-hints", "hints.db")
}

// Path returns the config file location: $TAG_HINTS_CONFIG, else
// ~/.config/tag-hints/config.toml.
func Path() (string, error) {
	if env := os.Getenv(EnvConfig); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tag-hints", "config.toml"), nil
}

// Load reads the config file at path (Path() when empty). A missing file
// yields the defaults. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config: load %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config: stat %s: %w", path, err)
	}

	if v := os.Getenv(EnvDB); v != "" {
		cfg.DB = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("config: db path is empty")
	}
	if c.SnapshotSize <= 0 {
		return fmt.Errorf("config: snapshot_size must be positive, got %d", c.SnapshotSize)
	}
	if c.QueryLimit <= 0 {
		return fmt.Errorf("config: query_limit must be positive, got %d", c.QueryLimit)
	}
	if _, err := c.LoadTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// LoadTimeoutDuration parses load_timeout. Empty means no timeout.
func (c Config) LoadTimeoutDuration() (time.Duration, error) {
	if c.LoadTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.LoadTimeout)
	if err != nil {
		return 0, fmt.Errorf("config: load_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: load_timeout must not be negative, got %s", c.LoadTimeout)
	}
	return d, nil
}

// SlogLevel parses the log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}

// NewLogger builds the slog.Logger described by l, writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
