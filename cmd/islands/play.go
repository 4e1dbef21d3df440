package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-islands/internal/bot"
	"github.com/vovakirdan/tui-islands/internal/config"
	"github.com/vovakirdan/tui-islands/internal/game"
	"github.com/vovakirdan/tui-islands/internal/match"
	"github.com/vovakirdan/tui-islands/internal/platform/tui"
	"github.com/vovakirdan/tui-islands/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play island duels against the computer",
	Long: `Start the local game with a mode picker menu. Duels run against
the computer opponent; hosting another human needs 'islands serve'.

Placement controls:
  WASD/Arrows  - Move the anchor
  Tab / N      - Next island shape
  Enter/Space  - Place the island
  R            - Declare your islands ready

Battle controls:
  WASD/Arrows  - Aim
  Enter/Space  - Fire
  Q/Ctrl+C     - Quit

Examples:
  islands play
  islands play --name ada
  islands play --seed 42
  islands play --db ./matches.db`,
	Run: runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}

	name := playerName()

	// Open match storage
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open match database: %v\n", err)
		// Continue without storage - duels still work
		store = nil
	}

	// Session internals log through this; discard so the alt screen
	// stays clean.
	logger := log.New(io.Discard)

	directory := match.NewDirectory(match.DirectoryConfig{
		IdleTTL:     cfg.Match.IdleTTL.Std(),
		SweepPeriod: cfg.Match.SweepPeriod.Std(),
	}, logger)
	if store != nil {
		directory.SetArchiver(store)
	}
	directory.Start()

	// Get terminal size
	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	// Menu loop
	for {
		result, err := tui.RunMenu(tui.LocalMenuItems(), width, height)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}

		// Carry size changes across screens
		width = result.Width
		height = result.Height

		if result.Quit {
			break
		}

		stay := true
		var runErr error
		switch result.ID {
		case tui.MenuItemBot:
			stay, runErr = playBotDuel(directory, logger, cfg.Bot, name, width, height)
		case tui.MenuItemHistory:
			stay, runErr = tui.RunHistory(store, name, width, height)
		default:
			stay = false
		}
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		}
		if !stay {
			break
		}
	}

	// Cleanup
	directory.Stop()
	if store != nil {
		store.Close()
	}
}

// playBotDuel runs one duel against the computer and reports whether
// the player wants the menu again.
func playBotDuel(directory *match.Directory, logger *log.Logger, botCfg config.BotConfig, name string, width, height int) (bool, error) {
	session, err := directory.Create(name)
	if err != nil {
		return true, fmt.Errorf("cannot create match: %w", err)
	}
	defer directory.Remove(session.Code())

	handle := match.NewChannelHandle("cli-"+name, 64)
	defer handle.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := session.Subscribe(ctx, handle); err != nil {
		return true, fmt.Errorf("cannot subscribe: %w", err)
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	botCtx, botCancel := context.WithCancel(context.Background())
	defer botCancel()
	b := bot.New(bot.Config{
		Seat:  game.Player2,
		Seed:  seed,
		Delay: botCfg.Delay.Std(),
	}, logger)
	go func() {
		//nolint:errcheck // A dead bot surfaces as an abandoned match
		b.Run(botCtx, session, botCfg.Name)
	}()

	return tui.RunMatch(session, handle, game.Player1, name, width, height)
}

// playerName resolves the display name: flag, then $USER, then a
// fallback.
func playerName() string {
	if flagName != "" {
		return flagName
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "islander"
}
