// islands is a terminal duel over hidden island fleets. Each player
// scatters five island shapes on a private 10x10 grid, then the players
// trade coordinate guesses until one side's islands are all destroyed.
//
// Usage:
//
//	islands play             - Play locally against the computer
//	islands serve            - Start SSH server for two-player duels
//	islands history          - Show recorded matches
//	islands shapes           - Show the five island shapes
//
// Global flags:
//
//	--config <path> - Path to a config YAML (default: search order)
//	--db <path>     - Path to the match database (overrides config)
//	--name <name>   - Player display name (default: $USER)
//	--seed <value>  - RNG seed for the computer opponent (0 = random)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig string
	flagDBPath string
	flagName   string
	flagSeed   int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "islands",
	Short: "Islands - hidden island duels in your terminal",
	Long: `Islands is a two-player battleship-style duel played in the
terminal. Each player hides five island shapes on a private 10x10 grid,
then the players take turns guessing coordinates until one player's
islands are completely destroyed.

Available commands:
  play     - Play against the computer, no server needed
  serve    - Start an SSH server for two-player duels
  history  - View recorded matches and player records
  shapes   - Show the five island shapes

Examples:
  islands play
  islands play --name ada
  islands serve --ssh :2323
  islands history
  islands history ada
  islands shapes`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML (default: ~/.islands/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to match database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagName, "name", "", "Player display name (default: $USER)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed for the computer opponent (0 = random based on time)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(shapesCmd)
}
