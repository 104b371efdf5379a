// Package config loads application configuration from defaults, an optional
// YAML file, and SECM_ environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides, e.g. SECM_BACKEND=sqlite.
const EnvPrefix = "SECM_"

// Storage backends selectable with the backend key.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Config holds the application configuration.
type Config struct {
	Backend        string `koanf:"backend"`
	SecretFile     string `koanf:"secret_file"`
	DBPath         string `koanf:"db_path"`
	BoltPath       string `koanf:"bolt_path"`
	KeyringService string `koanf:"keyring_service"`
	KeyringAccount string `koanf:"keyring_account"`
	LogLevel       string `koanf:"log_level"`
}

// Load resolves the user's home directory and reads configuration from
// SECM_CONFIG (or <user config dir>/secm/config.yaml when unset) and the
// environment. A missing home directory is an error: no default path can be
// built without it.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determine home directory: %w", err)
	}

	configPath := os.Getenv(EnvPrefix + "CONFIG")
	if configPath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			configPath = filepath.Join(dir, "secm", "config.yaml")
		}
	}

	return LoadFrom(home, configPath)
}

// LoadFrom builds a Config with defaults rooted at home. configPath is
// optional; a path that does not exist is ignored.
func LoadFrom(home, configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(home), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", configPath, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("access config file %s: %w", configPath, err)
		}
	}

	// SECM_SECRET_FILE -> secret_file
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.SecretFile = expandHome(cfg.SecretFile, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.BoltPath = expandHome(cfg.BoltPath, home)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults(home string) map[string]any {
	return map[string]any{
		"backend":         BackendFile,
		"secret_file":     filepath.Join(home, ".secrets"),
		"db_path":         filepath.Join(home, ".secrets.db"),
		"bolt_path":       filepath.Join(home, ".secrets.bolt"),
		"keyring_service": "secm",
		"keyring_account": "secm",
		"log_level":       "warn",
	}
}

// Validate checks that the selected backend is known and has a path, and
// that the keyring identifiers and log level are usable.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile:
		if c.SecretFile == "" {
			return errors.New("secret_file must not be empty")
		}
	case BackendSQLite:
		if c.DBPath == "" {
			return errors.New("db_path must not be empty")
		}
	case BackendBolt:
		if c.BoltPath == "" {
			return errors.New("bolt_path must not be empty")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend, BackendFile, BackendSQLite, BackendBolt)
	}

	if c.KeyringService == "" || c.KeyringAccount == "" {
		return errors.New("keyring_service and keyring_account must not be empty")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the configured slog level. Validate has already checked it.
func (c *Config) Level() slog.Level {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// StoragePath returns the path of the selected backend.
func (c *Config) StoragePath() string {
	switch c.Backend {
	case BackendSQLite:
		return c.DBPath
	case BackendBolt:
		return c.BoltPath
	default:
		return c.SecretFile
	}
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
