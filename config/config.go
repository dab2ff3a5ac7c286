package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/hsbacot/livesearch/client"
	"github.com/hsbacot/livesearch/resolver"
)

// CurrentVersion is written to new config files
const CurrentVersion = 1

// Config represents the application configuration
type Config struct {
	Version int `toml:"version"`

	// Resolver settings
	DebounceMS    int  `toml:"debounce_ms"`
	HistoryLimit  int  `toml:"history_limit"`
	CaseSensitive bool `toml:"case_sensitive"`

	// Source settings
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
	Offline bool     `toml:"offline"`
	// Latency of the offline catalog
	OfflineLatency Duration `toml:"offline_latency"`
}

// Duration is a time.Duration stored as a string such as "30s"
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Version:        CurrentVersion,
		DebounceMS:     int(resolver.DefaultDebounce / time.Millisecond),
		HistoryLimit:   resolver.DefaultHistoryLimit,
		BaseURL:        client.DefaultBaseURL,
		Timeout:        Duration{client.DefaultTimeout},
		OfflineLatency: Duration{400 * time.Millisecond},
	}
}

// DefaultPath returns the config file location under the user config dir
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "livesearch", "config.toml")
}

// Load reads the config at path. A missing file yields the defaults.
// Values absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to path, creating parent directories
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically (write to temp file, then rename)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// Validate rejects values the resolver cannot work with
func (c *Config) Validate() error {
	var errs []error
	if c.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMS))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit))
	}
	if c.Timeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.OfflineLatency.Duration < 0 {
		errs = append(errs, fmt.Errorf("offline_latency must not be negative, got %s", c.OfflineLatency))
	}
	return errors.Join(errs...)
}

// Debounce returns the debounce delay as a duration
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ResolverOptions translates the config into resolver options
func (c *Config) ResolverOptions() []resolver.Option {
	return []resolver.Option{
		resolver.WithDebounce(c.Debounce()),
		resolver.WithHistoryLimit(c.HistoryLimit),
		resolver.WithCaseSensitive(c.CaseSensitive),
	}
}

// Source builds the library source the config selects
func (c *Config) Source() client.Source {
	if c.Offline {
		return client.NewCatalog(client.DemoLibraries(), c.OfflineLatency.Duration)
	}
	return client.NewClient(c.BaseURL, c.Timeout.Duration)
}
