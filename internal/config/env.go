package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. OPENBOB_TRACKER_POLL_INTERVAL=2s
const EnvPrefix = "openbob"

const configFileName = "config.yaml"

// LoadFromEnv loads configuration from environment variables.
// Environment variables override values already present in cfg.
func LoadFromEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// LoadFile overlays a YAML config file onto cfg
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

// DefaultFilePath returns ~/.config/openbob/config.yaml (platform equivalent)
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "openbob", configFileName), nil
}

// Load builds the effective configuration: defaults, then the YAML file, then
// the environment. An explicit path must exist; the default path may not.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultFilePath(); err == nil {
			path = p
		}
	}

	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
