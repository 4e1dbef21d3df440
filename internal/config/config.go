// Package config loads the islands configuration: YAML files resolved
// through a search order, with ISLANDS_* environment variables layered
// on top.
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML files and environment variables
// can both carry "30m" style values.
type Duration time.Duration

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config is the whole configuration tree.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Match   MatchConfig   `yaml:"match"`
	Bot     BotConfig     `yaml:"bot"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig holds the SSH server settings.
type ServerConfig struct {
	Host        string   `yaml:"host" env:"ISLANDS_SERVER_HOST"`
	Port        int      `yaml:"port" env:"ISLANDS_SERVER_PORT"`
	HostKeyPath string   `yaml:"host_key_path" env:"ISLANDS_SERVER_HOST_KEY"`
	IdleTimeout Duration `yaml:"idle_timeout" env:"ISLANDS_SERVER_IDLE_TIMEOUT"`
}

// MatchConfig holds the session directory housekeeping settings.
type MatchConfig struct {
	IdleTTL     Duration `yaml:"idle_ttl" env:"ISLANDS_MATCH_IDLE_TTL"`
	SweepPeriod Duration `yaml:"sweep_period" env:"ISLANDS_MATCH_SWEEP_PERIOD"`
}

// BotConfig holds the computer opponent settings.
type BotConfig struct {
	Name  string   `yaml:"name" env:"ISLANDS_BOT_NAME"`
	Delay Duration `yaml:"delay" env:"ISLANDS_BOT_DELAY"`
}

// StorageConfig holds the match archive settings.
type StorageConfig struct {
	Path string `yaml:"path" env:"ISLANDS_DB_PATH"`
}
