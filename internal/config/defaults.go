package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/islands.yaml
var defaultIslandsYAML []byte

// Default returns the hardcoded configuration, the last resort when no
// file resolves.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        2323,
			HostKeyPath: ".ssh/islands_ed25519",
			IdleTimeout: Duration(30 * time.Minute),
		},
		Match: MatchConfig{
			IdleTTL:     Duration(30 * time.Minute),
			SweepPeriod: Duration(time.Minute),
		},
		Bot: BotConfig{
			Name:  "Castaway",
			Delay: Duration(400 * time.Millisecond),
		},
		Storage: StorageConfig{
			Path: "~/.islands/matches.db",
		},
	}
}
