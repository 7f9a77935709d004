// Package config handles configuration for the client component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the MoodNotes CLI.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP endpoint.
//   - DatabaseDSN: path of the local SQLite ledger database.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - SignInSettleDelay: how long the sign-in screen stays busy before the
//     result is surfaced.
type Config struct {
	ServerURL           string
	DatabaseDSN         string
	OnlineCheckInterval time.Duration
	SignInSettleDelay   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabaseDSN = "moodnotes.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.SignInSettleDelay = 600 * time.Millisecond
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
