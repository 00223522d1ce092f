// Package config holds runtime settings for the feed CLI.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the HTTP API.
//   - RequestTimeout: per-request timeout for API calls.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with defaults matching a locally running server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then the JSON file given with -c/-config,
// then flags. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, os.Args[1:]); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseFlags(cfg, os.Args[1:]); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}
