package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultProfileName is the profile used when none is selected.
	DefaultProfileName = "default"
	// DefaultURL is the placeholder server address used when neither a
	// flag, an environment variable, nor the profile provides one.
	DefaultURL = "http://localhost:3000"
	// DefaultNotifyThreshold is the minimum query duration that triggers
	// a desktop notification when notifications are enabled.
	DefaultNotifyThreshold = 10 * time.Second
)

// ErrInvalidURL indicates a profile URL is not a usable HTTP/HTTPS URL.
var ErrInvalidURL = errors.New("invalid server URL")

// Profile is a named set of connection settings for one Metabase instance.
// The name is the key under [profiles] in the config file.
type Profile struct {
	// URL is the Metabase server base URL.
	URL string `toml:"url,omitempty"`
	// Email is the account used for session login prompts.
	Email string `toml:"email,omitempty"`
}

// NotificationConfig holds settings for desktop notifications.
type NotificationConfig struct {
	// Enabled enables notifications for long-running queries.
	Enabled bool `toml:"enabled,omitempty"`
	// MinDuration is the query duration threshold, e.g. "10s".
	MinDuration string `toml:"min_duration,omitempty"`
}

// Threshold returns the parsed MinDuration, falling back to the default
// when unset or unparsable.
func (n NotificationConfig) Threshold() time.Duration {
	if n.MinDuration == "" {
		return DefaultNotifyThreshold
	}
	d, err := time.ParseDuration(n.MinDuration)
	if err != nil || d < 0 {
		return DefaultNotifyThreshold
	}
	return d
}

// Config represents the mbr configuration file.
type Config struct {
	// Profiles maps profile names to their stored records.
	Profiles map[string]Profile `toml:"profiles,omitempty"`
	// Notifications holds desktop notification settings.
	Notifications NotificationConfig `toml:"notifications,omitempty"`

	// filePath is the path where this config was loaded from.
	filePath string `toml:"-"`
}

// Default returns a new Config with default values.
func Default() *Config {
	paths := GetPaths()
	return &Config{
		Profiles: map[string]Profile{},
		filePath: paths.ConfigFile,
	}
}

// DefaultProfile returns the in-memory profile substituted when the
// selected profile has no stored record. It is never persisted
// implicitly; only an explicit "config set" writes it.
func DefaultProfile() Profile {
	return Profile{URL: DefaultURL}
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	paths := GetPaths()
	return LoadFrom(paths.ConfigFile)
}

// LoadFrom loads the configuration from a specific path.
// A missing file is not an error; it yields an empty profile store.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.filePath = path

	// #nosec G304 - path is the config file path (controlled, from user config directory)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}

	return cfg, nil
}

// Save writes the configuration to its file path.
func (c *Config) Save() error {
	if c.filePath == "" {
		return errors.New("config file path not set")
	}

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetProfile returns the stored profile record for name.
func (c *Config) GetProfile(name string) (Profile, bool) {
	p, ok := c.Profiles[name]
	return p, ok
}

// SetProfile stores or replaces the profile record for name.
func (c *Config) SetProfile(name string, p Profile) {
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	c.Profiles[name] = p
}

// ProfileNames returns the stored profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilePath returns the path where this config was loaded from.
func (c *Config) FilePath() string {
	return c.filePath
}

// ValidateURL validates that a server URL is a usable HTTP/HTTPS URL.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	// Must be HTTP or HTTPS
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: URL must use http or https scheme, got %q", ErrInvalidURL, parsed.Scheme)
	}

	// Must have a host
	if parsed.Host == "" {
		return fmt.Errorf("%w: URL must have a host", ErrInvalidURL)
	}

	return nil
}
