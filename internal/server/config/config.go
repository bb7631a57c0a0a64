// Package config handles configuration for the server component, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the vault service.
//
// Fields:
//   - Address: bind address of the HTTP endpoint.
//   - DataDir: root directory for the vault, recycle bin and account file.
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - SessionTTL: lifetime of an issued session.
type Config struct {
	Address    string
	DataDir    string
	SecretKey  string
	SessionTTL time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Address = ":5000"
	c.DataDir = "data"
	c.SecretKey = "cosmic_secret_2025"
	c.SessionTTL = 12 * time.Hour
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
