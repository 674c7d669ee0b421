package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for lirra-admin.
//
// Fields:
//   - ServerURL: base URL of the Lirra API, e.g. http://127.0.0.1:8080.
//   - RequestTimeout: per-request HTTP timeout.
//   - NoColor: disables coloured output.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	NoColor        bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second
	c.NoColor = false
}

// Load applies defaults and then, when path is not empty, the JSON file at
// path. Command-line flags are applied afterwards by the caller.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path == "" {
		return cfg, nil
	}
	if err := parseJson(cfg, path); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
