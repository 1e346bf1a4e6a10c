package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the ~/.lsc/config.toml file.
type Config struct {
	ProcessName string   `toml:"process_name,omitempty" json:"process_name"`
	Discover    Discover `toml:"discover,omitempty" json:"discover"`
}

// Discover holds retry-policy preferences for credential discovery.
type Discover struct {
	MaxAttempts  int `toml:"max_attempts,omitempty" json:"max_attempts"`
	RetryDelayMS int `toml:"retry_delay_ms,omitempty" json:"retry_delay_ms"`
}

// configDirOverride is set by the --config-dir flag or LSC_HOME env var.
var configDirOverride string

// SetConfigDir allows the CLI to pass in the --config-dir / LSC_HOME value.
func SetConfigDir(dir string) {
	configDirOverride = dir
}

// LSCHome returns the config directory path.
// Precedence: --config-dir flag / SetConfigDir > LSC_HOME env > ~/.lsc
func LSCHome() string {
	if configDirOverride != "" {
		return configDirOverride
	}
	if v := os.Getenv("LSC_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".lsc")
	}
	return filepath.Join(home, ".lsc")
}

// ConfigPath returns the full path to config.toml.
func ConfigPath() string {
	return filepath.Join(LSCHome(), "config.toml")
}

// EnsureDir creates the lsc home directory if it does not exist.
func EnsureDir() error {
	return os.MkdirAll(LSCHome(), 0o755)
}

// Load reads config.toml and returns a Config struct.
// If the file does not exist, it returns a zero-value Config (defaults).
func Load() (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}
	return cfg, nil
}

// Save writes the Config struct back to config.toml.
func Save(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o644)
}

// validKeys lists the dot-separated keys that can be used with Get/Set.
var validKeys = map[string]bool{
	"process_name":            true,
	"discover.max_attempts":   true,
	"discover.retry_delay_ms": true,
}

// Get retrieves a single config value by dot-separated key.
func Get(key string) (string, error) {
	if !validKeys[key] {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return getField(cfg, key)
}

// Set sets a single config value by dot-separated key.
func Set(key, value string) error {
	if !validKeys[key] {
		return fmt.Errorf("unknown config key: %s", key)
	}
	cfg, err := Load()
	if err != nil {
		return err
	}
	if err := setField(cfg, key, value); err != nil {
		return err
	}
	return Save(cfg)
}

func getField(cfg *Config, key string) (string, error) {
	switch key {
	case "process_name":
		return cfg.ProcessName, nil
	case "discover.max_attempts":
		return strconv.Itoa(cfg.Discover.MaxAttempts), nil
	case "discover.retry_delay_ms":
		return strconv.Itoa(cfg.Discover.RetryDelayMS), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

func setField(cfg *Config, key, value string) error {
	switch key {
	case "process_name":
		cfg.ProcessName = value
	case "discover.max_attempts":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("discover.max_attempts must be a positive integer, got %q", value)
		}
		cfg.Discover.MaxAttempts = n
	case "discover.retry_delay_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("discover.retry_delay_ms must be a non-negative integer, got %q", value)
		}
		cfg.Discover.RetryDelayMS = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
