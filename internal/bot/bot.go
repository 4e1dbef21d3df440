// Package bot plays island duels without a human. A Bot is a plain
// session client: it seats itself, scatters its fleet, and fires at a
// shuffled deck of coordinates whenever the turn comes around. Under a
// fixed seed its whole game is reproducible.
package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-islands/internal/game"
	"github.com/vovakirdan/tui-islands/internal/match"
)

// ErrBadSeat reports a bot configured for a seat that does not exist.
var ErrBadSeat = errors.New("bot: invalid seat")

// Config controls one bot.
type Config struct {
	Seat  game.PlayerID
	Seed  int64
	Delay time.Duration // pause before each shot, zero for instant play
}

// Bot is a computer opponent. Create one per match.
type Bot struct {
	cfg Config
	rng *rand.Rand
	log *log.Logger
}

// New creates a bot for the given seat.
func New(cfg Config, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.Default()
	}
	return &Bot{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		log: logger,
	}
}

// Run plays the match to its end: seat, place, ready, then answer every
// turn until the game is over or the session goes away. When the bot
// holds the player2 seat it joins under the given name first. A session
// that stops mid-game is a normal way for a match to end, not an error.
// Run blocks; start it on its own goroutine when a human shares the
// match.
func (b *Bot) Run(ctx context.Context, s *match.Session, name string) error {
	err := b.play(ctx, s, name)
	if errors.Is(err, match.ErrSessionClosed) {
		return nil
	}
	return err
}

func (b *Bot) play(ctx context.Context, s *match.Session, name string) error {
	if !b.cfg.Seat.Valid() {
		return ErrBadSeat
	}
	if b.cfg.Seat == game.Player2 {
		if err := s.AddPlayer(ctx, name); err != nil {
			return fmt.Errorf("bot: join: %w", err)
		}
	}

	handle := match.NewChannelHandle(fmt.Sprintf("bot-%s", b.cfg.Seat), 64)
	defer handle.Close()
	if err := s.Subscribe(ctx, handle); err != nil {
		return fmt.Errorf("bot: subscribe: %w", err)
	}

	if err := b.placeFleet(ctx, s); err != nil {
		return err
	}

	// A hosting bot cannot declare ready until the second seat fills.
	view, err := s.View(ctx, b.cfg.Seat)
	if err != nil {
		return fmt.Errorf("bot: view: %w", err)
	}
	if view.Phase == game.PhaseInitialized {
		if err := b.awaitOpponent(ctx, s, handle); err != nil {
			return err
		}
	}

	if err := s.SetIslandsReady(ctx, b.cfg.Seat); err != nil {
		return fmt.Errorf("bot: ready: %w", err)
	}
	b.log.Debug("bot ready", "seat", b.cfg.Seat)

	deck := b.shuffledCoords()
	next := 0
	for {
		select {
		case evt := <-handle.Events():
			switch e := evt.(type) {
			case match.BattleStartedEvent:
				if e.FirstTurn == b.cfg.Seat {
					if err := b.fire(ctx, s, deck, &next); err != nil {
						return err
					}
				}
			case match.GuessResolvedEvent:
				if turn, ok := e.Phase.Turn(); ok && turn == b.cfg.Seat {
					if err := b.fire(ctx, s, deck, &next); err != nil {
						return err
					}
				}
			case match.GameOverEvent:
				b.log.Debug("bot done", "seat", b.cfg.Seat, "won", e.Winner == b.cfg.Seat)
				return nil
			case match.SessionClosedEvent:
				return nil
			}
		case <-s.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// awaitOpponent blocks until the second player joins. Events drained
// here are safe to discard: nothing the firing loop cares about can
// happen before both players are ready.
func (b *Bot) awaitOpponent(ctx context.Context, s *match.Session, handle *match.ChannelHandle) error {
	for {
		select {
		case evt := <-handle.Events():
			switch evt.(type) {
			case match.PlayerJoinedEvent:
				return nil
			case match.SessionClosedEvent:
				return match.ErrSessionClosed
			}
		case <-s.Done():
			return match.ErrSessionClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// placeFleet scatters the five islands at random anchors until each one
// lands on open water.
func (b *Bot) placeFleet(ctx context.Context, s *match.Session) error {
	for _, typ := range game.IslandTypes() {
		placed := false
		for attempt := 0; attempt < 200 && !placed; attempt++ {
			row := 1 + b.rng.Intn(game.BoardSize)
			col := 1 + b.rng.Intn(game.BoardSize)
			err := s.PositionIsland(ctx, b.cfg.Seat, typ, row, col)
			switch {
			case err == nil:
				placed = true
			case errors.Is(err, game.ErrInvalidCoordinate), errors.Is(err, game.ErrOverlappingIsland):
				// anchor was no good, roll again
			default:
				return fmt.Errorf("bot: position %s: %w", typ, err)
			}
		}
		if !placed {
			return fmt.Errorf("bot: no room for %s", typ)
		}
	}
	return nil
}

// fire takes the next coordinate off the deck and guesses it.
func (b *Bot) fire(ctx context.Context, s *match.Session, deck []game.Coordinate, next *int) error {
	if b.cfg.Delay > 0 {
		select {
		case <-time.After(b.cfg.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if *next >= len(deck) {
		return nil
	}
	c := deck[*next]
	*next++
	_, err := s.Guess(ctx, b.cfg.Seat, c.Row, c.Col)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, match.ErrSessionClosed):
		return err
	default:
		var violation *game.RuleViolationError
		if errors.As(err, &violation) {
			// the turn moved on without us; put the shot back
			*next--
			return nil
		}
		return fmt.Errorf("bot: guess: %w", err)
	}
}

// shuffledCoords deals the whole grid in seed-determined order.
func (b *Bot) shuffledCoords() []game.Coordinate {
	coords := make([]game.Coordinate, 0, game.BoardSize*game.BoardSize)
	for row := 1; row <= game.BoardSize; row++ {
		for col := 1; col <= game.BoardSize; col++ {
			coords = append(coords, game.Coordinate{Row: row, Col: col})
		}
	}
	b.rng.Shuffle(len(coords), func(i, j int) {
		coords[i], coords[j] = coords[j], coords[i]
	})
	return coords
}
