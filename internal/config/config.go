// Package config loads CLI configuration: a TOML file for the storage
// endpoint settings and environment variables for the Azure AD credentials.
// Credentials are deliberately env-only so config files never contain
// secrets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults applied when the config file leaves fields unset.
const (
	DefaultDNSSuffix      = "dfs.core.windows.net"
	DefaultTimeoutSeconds = 30
	DefaultLogLevel       = "info"
)

// Config is the TOML config file schema.
type Config struct {
	AccountName    string `toml:"account_name"`
	FilesystemID   string `toml:"filesystem_id"`
	DNSSuffix      string `toml:"dns_suffix"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	LogLevel       string `toml:"log_level"`
}

// ErrIncomplete is returned by Validate when required fields are missing.
var ErrIncomplete = errors.New("config: account_name and filesystem_id are required")

// Validate checks required fields after defaults are applied.
func (c *Config) Validate() error {
	if c.AccountName == "" || c.FilesystemID == "" {
		return ErrIncomplete
	}

	return nil
}

// applyDefaults fills unset fields in place.
func (c *Config) applyDefaults() {
	if c.DNSSuffix == "" {
		c.DNSSuffix = DefaultDNSSuffix
	}

	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// DefaultPath returns the default config file location,
// $XDG_CONFIG_HOME/downstage/config.toml (or the OS equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolving user config dir: %w", err)
	}

	return filepath.Join(dir, "downstage", "config.toml"), nil
}
