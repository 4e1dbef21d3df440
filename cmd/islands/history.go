package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-islands/internal/config"
	"github.com/vovakirdan/tui-islands/internal/storage"
)

var flagLimit int

var historyCmd = &cobra.Command{
	Use:   "history [player]",
	Short: "Show recorded matches",
	Long: `Display recent matches from the archive.

With a player name, shows only that player's matches along with their
win/loss record.

Examples:
  islands history
  islands history ada
  islands history --limit 50`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum number of matches to show")
}

func runHistory(_ *cobra.Command, args []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening match database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	player := ""
	if len(args) == 1 {
		player = args[0]
	}

	var matches []storage.MatchRecord
	if player != "" {
		matches, err = store.PlayerMatches(player, flagLimit)
	} else {
		matches, err = store.RecentMatches(flagLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving matches: %v\n", err)
		os.Exit(1)
	}

	if player != "" {
		fmt.Printf("Match History - %s\n", player)
	} else {
		fmt.Println("Match History")
	}
	fmt.Println()

	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'islands play' to record the first one!")
		return
	}

	// Calculate the players column width
	playersWidth := 7 // "Players" header
	for _, rec := range matches {
		pair := fmt.Sprintf("%s vs %s", rec.Player1, rec.Player2)
		if len(pair) > playersWidth {
			playersWidth = len(pair)
		}
	}

	// Print header
	fmt.Printf("  %-16s  %-6s  %-*s  %-10s  %-7s  %s\n", "Date", "Code", playersWidth, "Players", "Winner", "Shots", "Time")
	fmt.Printf("  %-16s  %-6s  %-*s  %-10s  %-7s  %s\n", "----", "----", playersWidth, "-------", "------", "-----", "----")

	// Print matches
	for _, rec := range matches {
		winner := rec.Winner
		if winner == "" {
			winner = "-"
		}
		elapsed := "-"
		if rec.DurationSecs > 0 {
			elapsed = (time.Duration(rec.DurationSecs) * time.Second).String()
		}
		fmt.Printf("  %-16s  %-6s  %-*s  %-10s  %-7s  %s\n",
			rec.CreatedAt.Format("2006-01-02 15:04"),
			rec.Code,
			playersWidth, fmt.Sprintf("%s vs %s", rec.Player1, rec.Player2),
			winner,
			fmt.Sprintf("%d/%d", rec.Shots1, rec.Shots2),
			elapsed,
		)
	}

	// Show the player's record
	if player != "" {
		stats, statsErr := store.GetPlayerStats(player)
		if statsErr == nil && stats.Played > 0 {
			fmt.Println()
			fmt.Printf("Record: %d played, %d won, %d lost, %d abandoned, %d shots fired\n",
				stats.Played, stats.Wins, stats.Losses, stats.Abandoned, stats.TotalShots)
		}
	}
}
