// Package config handles server configuration: defaults, environment
// overlay, then command-line flags.
package config

import (
	"flag"
	"fmt"
	"os"
)

// Storage backend names accepted by -storage.
const (
	StorageSQLite = "sqlite"
	StorageBolt   = "bolt"
)

// Config holds runtime settings for the authkeeper server.
type Config struct {
	Addr         string // bind address for the HTTP endpoint
	Storage      string // user store backend: sqlite or bolt
	DatabasePath string // path to the database file
	LogLevel     string // debug, info, warn, error
	LogFormat    string // text or json
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.Storage = StorageSQLite
	c.DatabasePath = "authkeeper.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// applyEnv overlays values from AUTHKEEPER_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("AUTHKEEPER_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("AUTHKEEPER_STORAGE"); v != "" {
		c.Storage = v
	}
	if v := os.Getenv("AUTHKEEPER_DB_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("AUTHKEEPER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("AUTHKEEPER_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}

// registerFlags binds the config fields to fs with current values as
// defaults, so flags win over both env and defaults.
func (c *Config) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP bind address")
	fs.StringVar(&c.Storage, "storage", c.Storage, "user store backend: sqlite or bolt")
	fs.StringVar(&c.DatabasePath, "db", c.DatabasePath, "database file path")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text or json")
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Storage != StorageSQLite && c.Storage != StorageBolt {
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	return nil
}

// Load builds a Config by applying defaults, then the environment, then the
// given command-line arguments.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.applyEnv()
	cfg.registerFlags(fs)

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
