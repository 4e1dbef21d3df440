package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-islands/internal/config"
	"github.com/vovakirdan/tui-islands/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the islands SSH server",
	Long: `Start an SSH server that lets players connect and duel each other.

Each connection gets its own session with a mode picker: host a match
and share the join code, join with a code from a friend, or duel the
computer. The display name is the SSH username. Matches are archived
per-server, so everyone shares the same history.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.islands/host_key

Examples:
  islands serve                          # Listen per config (default :2323)
  islands serve --ssh :2222              # Listen on port 2222
  islands serve --host-key ./my_key      # Use specific host key
  islands serve --db ./matches.db        # Use specific database

Players connect with:
  ssh ada@yourserver -p 2323`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH listen address (host:port, overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes before disconnecting (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) {
	fileCfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		fileCfg.Storage.Path = flagDBPath
	}

	address := fmt.Sprintf("%s:%d", fileCfg.Server.Host, fileCfg.Server.Port)
	if flagSSHAddr != "" {
		address = flagSSHAddr
	}

	hostKey := fileCfg.Server.HostKeyPath
	if flagHostKey != "" {
		hostKey = flagHostKey
	}

	idleTimeout := fileCfg.Server.IdleTimeout.Std()
	if flagIdleTimeout > 0 {
		idleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	}

	cfg := tui.SSHServerConfig{
		Address:     address,
		HostKeyPath: hostKey,
		DBPath:      fileCfg.Storage.Path,
		IdleTimeout: idleTimeout,
		MatchTTL:    fileCfg.Match.IdleTTL.Std(),
		SweepPeriod: fileCfg.Match.SweepPeriod.Std(),
		BotName:     fileCfg.Bot.Name,
		BotDelay:    fileCfg.Bot.Delay.Std(),
	}

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting islands SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh <your-name>@localhost -p 2323")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
