package config

import "github.com/caarlos0/env/v11"

// applyEnv layers ISLANDS_* environment variables over the loaded
// configuration. Unset variables leave the file values alone.
func applyEnv(cfg *Config) error {
	return env.Parse(cfg)
}
