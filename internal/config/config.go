// Package config provides configuration loading for hivecli.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/beehive-tools/hivecli/internal/logging"
	"github.com/beehive-tools/hivecli/internal/models"
	"gopkg.in/yaml.v3"
)

const appName = "hivecli"

// Config represents the complete hivecli configuration
type Config struct {
	Endpoint models.Endpoint `yaml:"endpoint"`
	// Timeout bounds every request to the API (default: 30s)
	Timeout time.Duration  `yaml:"timeout"`
	Log     logging.Config `yaml:"log"`
}

// DefaultConfig returns a Config pointing at a local beehive instance
func DefaultConfig() *Config {
	return &Config{
		Endpoint: models.DefaultEndpoint(),
		Timeout:  30 * time.Second,
		Log: logging.Config{
			Level: "info",
			File:  DefaultLogPath(),
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/hivecli/config.yaml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// DefaultLogPath returns $XDG_STATE_HOME/hivecli/hivecli.log, falling back
// to the user cache directory.
func DefaultLogPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName, appName+".log")
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, appName+".log")
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Endpoint.Host == "" {
		return fmt.Errorf("endpoint.host is required")
	}
	u, err := url.Parse(c.Endpoint.Host)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint.host must be an absolute URL, got %q", c.Endpoint.Host)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint.host must use http or https, got %q", u.Scheme)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads the config at path. An empty path means the default location,
// which may be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return DefaultConfig(), nil
	}

	config, err := LoadFromFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Endpoint.Host != "" {
		c.Endpoint.Host = other.Endpoint.Host
	}
	if other.Endpoint.Namespace != "" {
		c.Endpoint.Namespace = other.Endpoint.Namespace
	}
	if other.Timeout != 0 {
		c.Timeout = other.Timeout
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}
}
