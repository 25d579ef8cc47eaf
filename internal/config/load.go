package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Load reads and validates a TOML config file, applying defaults. Unknown
// keys are rejected so typos fail loudly instead of silently falling back
// to defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: %s contains unknown key %q", path, undecoded[0].String())
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
