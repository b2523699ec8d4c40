package config

import "time"

// Config holds runtime settings for the GophNotes CLI.
//
// Fields:
//   - ServerURL: base URL of the GophNotes HTTP API.
//   - DBPath: SQLite file holding session metadata and local drafts.
//   - RequestTimeout: per-request timeout of the API client.
//   - AutosaveDebounce: quiet period after the last edit before autosaving.
//   - AutosaveInterval: period of the unconditional autosave tick.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL        string
	DBPath           string
	RequestTimeout   time.Duration
	AutosaveDebounce time.Duration
	AutosaveInterval time.Duration
	LogLevel         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DBPath = "gophnotes.db"
	c.RequestTimeout = 10 * time.Second
	c.AutosaveDebounce = 2 * time.Second
	c.AutosaveInterval = 3 * time.Second
	c.LogLevel = "warn"
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
