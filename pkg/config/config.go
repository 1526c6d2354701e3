// Package config loads chatbridge client configuration from a TOML file and
// the environment. Environment variables override file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const (
	DefaultURL     = "http://127.0.0.1:6061"
	DefaultTimeout = 5 * time.Minute
)

// Config is the client configuration.
type Config struct {
	Debug   bool          `toml:"debug" env:"CHATBRIDGE_DEBUG"`
	Bridge  BridgeConfig  `toml:"bridge"`
	Journal JournalConfig `toml:"journal"`
}

// BridgeConfig locates the host.
type BridgeConfig struct {
	URL       string        `toml:"url" env:"CHATBRIDGE_URL"`
	Timeout   time.Duration `toml:"timeout" env:"CHATBRIDGE_TIMEOUT"`
	UserAgent string        `toml:"user_agent" env:"CHATBRIDGE_USER_AGENT"`
}

// JournalConfig controls the invocation journal. An empty Path disables it.
type JournalConfig struct {
	Path string `toml:"path" env:"CHATBRIDGE_JOURNAL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Bridge: BridgeConfig{
			URL:     DefaultURL,
			Timeout: DefaultTimeout,
		},
	}
}

// DefaultPath returns the default location of the configuration file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve config directory: %w", err)
	}
	return filepath.Join(dir, "chatbridge", "config.toml"), nil
}

// Load reads the configuration at path on top of the defaults and applies
// environment overrides. An empty path means DefaultPath, which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("could not load config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("could not apply environment: %w", err)
	}

	if cfg.Bridge.URL == "" {
		return cfg, errors.New("bridge url must not be empty")
	}
	if cfg.Bridge.Timeout < 0 {
		return cfg, fmt.Errorf("bridge timeout must not be negative: %s", cfg.Bridge.Timeout)
	}

	return cfg, nil
}
