package match

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-islands/internal/game"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession("test-match", "TEST42", "ada", testLogger())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	s.Start()
	t.Cleanup(s.Stop)
	return s
}

// fleetAnchors is a five-island layout with no overlaps, used for both
// players in tests.
var fleetAnchors = map[game.IslandType][2]int{
	game.IslandDot:    {1, 1},
	game.IslandSquare: {1, 3},
	game.IslandAtoll:  {1, 6},
	game.IslandLShape: {5, 1},
	game.IslandSShape: {5, 5},
}

func placeFleet(t *testing.T, s *Session, p game.PlayerID) {
	t.Helper()
	for typ, rc := range fleetAnchors {
		if err := s.PositionIsland(context.Background(), p, typ, rc[0], rc[1]); err != nil {
			t.Fatalf("Positioning %s for %s failed: %v", typ, p, err)
		}
	}
}

// fleetCells lists every cell covered by the fleetAnchors layout.
func fleetCells(t *testing.T) []game.Coordinate {
	t.Helper()
	var cells []game.Coordinate
	for typ, rc := range fleetAnchors {
		anchor, err := game.NewCoordinate(rc[0], rc[1])
		if err != nil {
			t.Fatalf("Bad anchor: %v", err)
		}
		island, err := game.NewIsland(typ, anchor)
		if err != nil {
			t.Fatalf("Bad island: %v", err)
		}
		for c := range island.Cells {
			cells = append(cells, c)
		}
	}
	return cells
}

// battleSession returns a session with both players seated, fleets
// placed, and the first turn open.
func battleSession(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()
	s := newTestSession(t)
	if err := s.AddPlayer(ctx, "grace"); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	placeFleet(t, s, game.Player1)
	placeFleet(t, s, game.Player2)
	if err := s.SetIslandsReady(ctx, game.Player1); err != nil {
		t.Fatalf("Player1 ready failed: %v", err)
	}
	if err := s.SetIslandsReady(ctx, game.Player2); err != nil {
		t.Fatalf("Player2 ready failed: %v", err)
	}
	return s
}

func TestNewSessionRejectsBlankHost(t *testing.T) {
	if _, err := NewSession("id", "CODE", "   ", testLogger()); !errors.Is(err, ErrInvalidPlayerName) {
		t.Errorf("Expected ErrInvalidPlayerName, got %v", err)
	}
}

func TestAddPlayer(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	if err := s.AddPlayer(ctx, "grace"); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}

	view, err := s.View(ctx, game.Player1)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.Phase != game.PhasePlayersSet {
		t.Errorf("Expected players_set, got %s", view.Phase)
	}
	if view.OpponentName != "grace" {
		t.Errorf("Expected opponent grace, got %q", view.OpponentName)
	}

	// The second seat can only be taken once
	err = s.AddPlayer(ctx, "linus")
	var violation *game.RuleViolationError
	if !errors.As(err, &violation) {
		t.Errorf("Expected RuleViolationError, got %v", err)
	}
}

func TestAddPlayerRejectsBlankName(t *testing.T) {
	s := newTestSession(t)
	if err := s.AddPlayer(context.Background(), ""); !errors.Is(err, ErrInvalidPlayerName) {
		t.Errorf("Expected ErrInvalidPlayerName, got %v", err)
	}
}

func TestPositionIslandValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	// Off-grid anchor is rejected before anything changes
	err := s.PositionIsland(ctx, game.Player1, game.IslandDot, 99, 1)
	if !errors.Is(err, game.ErrInvalidCoordinate) {
		t.Errorf("Expected ErrInvalidCoordinate, got %v", err)
	}

	// Unknown shape is rejected
	err = s.PositionIsland(ctx, game.Player1, game.IslandType(42), 1, 1)
	if !errors.Is(err, game.ErrInvalidIslandType) {
		t.Errorf("Expected ErrInvalidIslandType, got %v", err)
	}

	// A failed placement leaves the board as it was
	if err := s.PositionIsland(ctx, game.Player1, game.IslandSquare, 1, 1); err != nil {
		t.Fatalf("Placing square failed: %v", err)
	}
	err = s.PositionIsland(ctx, game.Player1, game.IslandDot, 2, 2)
	if !errors.Is(err, game.ErrOverlappingIsland) {
		t.Errorf("Expected ErrOverlappingIsland, got %v", err)
	}

	view, err := s.View(ctx, game.Player1)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(view.Board) != 1 {
		t.Errorf("Expected exactly the square on the board, got %d islands", len(view.Board))
	}
	if _, ok := view.Board[game.IslandDot]; ok {
		t.Error("Rejected dot should not be on the board")
	}
}

func TestSetIslandsReadyNeedsFullFleet(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	if err := s.AddPlayer(ctx, "grace"); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}

	// Only one island down: readiness is refused and nothing commits
	if err := s.PositionIsland(ctx, game.Player1, game.IslandDot, 1, 1); err != nil {
		t.Fatalf("Positioning failed: %v", err)
	}
	if err := s.SetIslandsReady(ctx, game.Player1); !errors.Is(err, game.ErrNotAllIslandsPlaced) {
		t.Errorf("Expected ErrNotAllIslandsPlaced, got %v", err)
	}

	view, _ := s.View(ctx, game.Player1)
	if view.YouReady {
		t.Error("Failed readiness should not set the flag")
	}
	if view.Phase != game.PhasePlayersSet {
		t.Errorf("Expected players_set, got %s", view.Phase)
	}
}

func TestReadinessFreezesBoard(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	if err := s.AddPlayer(ctx, "grace"); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	placeFleet(t, s, game.Player1)
	if err := s.SetIslandsReady(ctx, game.Player1); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}

	// Ready again is a harmless no-op
	if err := s.SetIslandsReady(ctx, game.Player1); err != nil {
		t.Errorf("Repeated ready should be accepted, got %v", err)
	}

	// But the frozen board can no longer be rearranged
	err := s.PositionIsland(ctx, game.Player1, game.IslandDot, 9, 9)
	var violation *game.RuleViolationError
	if !errors.As(err, &violation) {
		t.Errorf("Expected RuleViolationError, got %v", err)
	}
}

func TestBattleOpensWithPlayer1Turn(t *testing.T) {
	s := battleSession(t)
	view, err := s.View(context.Background(), game.Player2)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.Phase != game.PhasePlayer1Turn {
		t.Errorf("Expected player1_turn, got %s", view.Phase)
	}
	if !view.YouReady || !view.OpponentReady {
		t.Error("Both players should be ready")
	}
}

func TestGuessOutOfTurnChangesNothing(t *testing.T) {
	ctx := context.Background()
	s := battleSession(t)

	_, err := s.Guess(ctx, game.Player2, 1, 1)
	var violation *game.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("Expected RuleViolationError, got %v", err)
	}

	view, _ := s.View(ctx, game.Player2)
	if view.Phase != game.PhasePlayer1Turn {
		t.Errorf("Phase should be untouched, got %s", view.Phase)
	}
	if view.Shots.Count() != 0 {
		t.Errorf("Rejected guess should not be logged, got %d shots", view.Shots.Count())
	}
}

func TestGuessInvalidCoordinateKeepsTurn(t *testing.T) {
	ctx := context.Background()
	s := battleSession(t)

	if _, err := s.Guess(ctx, game.Player1, 0, 7); !errors.Is(err, game.ErrInvalidCoordinate) {
		t.Fatalf("Expected ErrInvalidCoordinate, got %v", err)
	}

	// The turn was not consumed
	view, _ := s.View(ctx, game.Player1)
	if view.Phase != game.PhasePlayer1Turn {
		t.Errorf("Expected player1_turn after rejected guess, got %s", view.Phase)
	}

	reply, err := s.Guess(ctx, game.Player1, 10, 10)
	if err != nil {
		t.Fatalf("Valid guess failed: %v", err)
	}
	if reply.Result != game.Miss {
		t.Errorf("Expected miss at open water, got %v", reply.Result)
	}
	if reply.Phase != game.PhasePlayer2Turn {
		t.Errorf("Expected player2_turn, got %s", reply.Phase)
	}
}

func TestGuessAlternatesAndLogs(t *testing.T) {
	ctx := context.Background()
	s := battleSession(t)

	reply, err := s.Guess(ctx, game.Player1, 1, 1)
	if err != nil {
		t.Fatalf("Guess failed: %v", err)
	}
	if reply.Result != game.Hit || reply.Destroyed != game.IslandDot {
		t.Errorf("Expected the dot destroyed, got %+v", reply)
	}

	view, _ := s.View(ctx, game.Player1)
	if !view.Shots.Hits.Contains(game.Coordinate{Row: 1, Col: 1}) {
		t.Error("Hit should be in player1's shot log")
	}

	// Player2's own board shows the damage
	view2, _ := s.View(ctx, game.Player2)
	if !view2.Board[game.IslandDot].Destroyed() {
		t.Error("Player2's dot should be destroyed")
	}
	if view2.Phase != game.PhasePlayer2Turn {
		t.Errorf("Expected player2_turn, got %s", view2.Phase)
	}
}

func TestFullMatch(t *testing.T) {
	ctx := context.Background()
	s := battleSession(t)

	cells := fleetCells(t)
	var last GuessReply
	for i, c := range cells {
		reply, err := s.Guess(ctx, game.Player1, c.Row, c.Col)
		if err != nil {
			t.Fatalf("Guess %d at %v failed: %v", i, c, err)
		}
		if reply.Result != game.Hit {
			t.Errorf("Guess at fleet cell %v should hit", c)
		}
		last = reply

		if i < len(cells)-1 {
			// Player2 burns their turn on open water
			if _, err := s.Guess(ctx, game.Player2, 10, 10); err != nil {
				t.Fatalf("Player2 guess failed: %v", err)
			}
		}
	}

	if last.Phase != game.PhaseGameOver {
		t.Errorf("Expected game_over after the last island fell, got %s", last.Phase)
	}
	if !s.Finished() {
		t.Error("Session should report finished")
	}

	// Nothing moves after game over
	if _, err := s.Guess(ctx, game.Player2, 5, 5); err == nil {
		t.Error("Guessing after game over should be rejected")
	}
	view, _ := s.View(ctx, game.Player1)
	if view.Phase != game.PhaseGameOver {
		t.Errorf("Phase should stay game_over, got %s", view.Phase)
	}
}

func TestRepeatedGuessPassesTurn(t *testing.T) {
	ctx := context.Background()
	s := battleSession(t)

	if _, err := s.Guess(ctx, game.Player1, 10, 10); err != nil {
		t.Fatalf("Guess failed: %v", err)
	}
	if _, err := s.Guess(ctx, game.Player2, 10, 10); err != nil {
		t.Fatalf("Guess failed: %v", err)
	}

	// Guessing the same water again wastes the turn but stays legal
	reply, err := s.Guess(ctx, game.Player1, 10, 10)
	if err != nil {
		t.Fatalf("Repeat guess failed: %v", err)
	}
	if reply.Result != game.Miss {
		t.Errorf("Expected miss, got %v", reply.Result)
	}

	view, _ := s.View(ctx, game.Player1)
	if view.Shots.Count() != 1 {
		t.Errorf("Repeat guess should not grow the log, got %d", view.Shots.Count())
	}
	if view.Phase != game.PhasePlayer2Turn {
		t.Errorf("Repeat guess should still pass the turn, got %s", view.Phase)
	}
}

func TestViewRejectsUnknownSeat(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.View(context.Background(), game.PlayerID(3)); !errors.Is(err, ErrInvalidPlayer) {
		t.Errorf("Expected ErrInvalidPlayer, got %v", err)
	}
}

func TestMailboxSerializesCompetingGuesses(t *testing.T) {
	ctx := context.Background()
	s := battleSession(t)

	// Many goroutines race to guess for player1; the mailbox admits them
	// one at a time, so exactly one can win the turn.
	const racers = 16
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		col := 1 + i%10
		wg.Add(1)
		go func(col int) {
			defer wg.Done()
			_, err := s.Guess(ctx, game.Player1, 10, col)
			errs <- err
		}(col)
	}
	wg.Wait()
	close(errs)

	won := 0
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		var violation *game.RuleViolationError
		if !errors.As(err, &violation) {
			t.Errorf("Expected RuleViolationError for the losers, got %v", err)
		}
	}
	if won != 1 {
		t.Errorf("Exactly one racer should win the turn, got %d", won)
	}

	view, err := s.View(ctx, game.Player1)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.Phase != game.PhasePlayer2Turn {
		t.Errorf("Expected player2_turn after one guess, got %s", view.Phase)
	}
	if view.Shots.Count() != 1 {
		t.Errorf("Expected one logged shot, got %d", view.Shots.Count())
	}
}

func TestConcurrentViewsStayConsistent(t *testing.T) {
	ctx := context.Background()
	s := battleSession(t)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			view, err := s.View(ctx, game.Player2)
			if err != nil {
				return
			}
			// A snapshot is internally coherent: hits on our board can
			// only exist once the battle has begun.
			if view.Board.HitCount() > 0 && view.Phase == game.PhasePlayersSet {
				t.Error("Snapshot mixes battle damage with pre-battle phase")
				return
			}
		}
	}()

	players := [2]game.PlayerID{game.Player1, game.Player2}
	for i, c := range fleetCells(t) {
		if _, err := s.Guess(ctx, players[i%2], c.Row, c.Col); err != nil {
			t.Fatalf("Guess failed: %v", err)
		}
	}
	close(done)
	wg.Wait()
}

func TestStopFailsPendingAndLaterRequests(t *testing.T) {
	s := newTestSession(t)
	s.Stop()

	if err := s.AddPlayer(context.Background(), "grace"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Expected ErrSessionClosed, got %v", err)
	}
	if _, err := s.View(context.Background(), game.Player1); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Expected ErrSessionClosed, got %v", err)
	}

	select {
	case <-s.Done():
	default:
		t.Error("Done should be closed after Stop")
	}
}

func TestEventsFollowCommitOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	handle := NewChannelHandle("watcher", 64)
	if err := s.Subscribe(ctx, handle); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := s.AddPlayer(ctx, "grace"); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	placeFleet(t, s, game.Player1)
	placeFleet(t, s, game.Player2)
	if err := s.SetIslandsReady(ctx, game.Player1); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}
	if err := s.SetIslandsReady(ctx, game.Player2); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}
	if _, err := s.Guess(ctx, game.Player1, 1, 1); err != nil {
		t.Fatalf("Guess failed: %v", err)
	}

	want := []string{"joined", "ready1", "ready2", "battle", "guess"}
	for _, step := range want {
		select {
		case evt := <-handle.Events():
			switch step {
			case "joined":
				if e, ok := evt.(PlayerJoinedEvent); !ok || e.Name != "grace" {
					t.Errorf("Step %s: got %#v", step, evt)
				}
			case "ready1":
				if e, ok := evt.(IslandsReadyEvent); !ok || e.Player != game.Player1 {
					t.Errorf("Step %s: got %#v", step, evt)
				}
			case "ready2":
				if e, ok := evt.(IslandsReadyEvent); !ok || e.Player != game.Player2 {
					t.Errorf("Step %s: got %#v", step, evt)
				}
			case "battle":
				if e, ok := evt.(BattleStartedEvent); !ok || e.FirstTurn != game.Player1 {
					t.Errorf("Step %s: got %#v", step, evt)
				}
			case "guess":
				e, ok := evt.(GuessResolvedEvent)
				if !ok || e.By != game.Player1 || e.Result != game.Hit || e.Destroyed != game.IslandDot {
					t.Errorf("Step %s: got %#v", step, evt)
				}
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Timed out waiting for %s event", step)
		}
	}

	// Rejected requests publish nothing
	if err := s.AddPlayer(ctx, "mallory"); err == nil {
		t.Fatal("Second AddPlayer should fail")
	}
	select {
	case evt := <-handle.Events():
		t.Errorf("Rejected request should not publish, got %#v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

type captureArchiver struct {
	results chan Result
}

func (a *captureArchiver) SaveMatch(res Result) error {
	a.results <- res
	return nil
}

func TestCompletedMatchIsArchived(t *testing.T) {
	ctx := context.Background()
	arch := &captureArchiver{results: make(chan Result, 1)}

	s, err := NewSession("match-1", "ABCDEF", "ada", testLogger())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	s.SetArchiver(arch)
	s.Start()
	t.Cleanup(s.Stop)

	if err := s.AddPlayer(ctx, "grace"); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	placeFleet(t, s, game.Player1)
	placeFleet(t, s, game.Player2)
	if err := s.SetIslandsReady(ctx, game.Player1); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}
	if err := s.SetIslandsReady(ctx, game.Player2); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}

	cells := fleetCells(t)
	for i, c := range cells {
		if _, err := s.Guess(ctx, game.Player1, c.Row, c.Col); err != nil {
			t.Fatalf("Guess failed: %v", err)
		}
		if i < len(cells)-1 {
			if _, err := s.Guess(ctx, game.Player2, 10, 10); err != nil {
				t.Fatalf("Guess failed: %v", err)
			}
		}
	}

	select {
	case res := <-arch.results:
		if res.MatchID != "match-1" || res.Code != "ABCDEF" {
			t.Errorf("Wrong identity in result: %+v", res)
		}
		if res.Winner != "ada" || res.EndReason != "completed" {
			t.Errorf("Expected ada to win a completed match, got %+v", res)
		}
		if res.Shots1 != len(cells) {
			t.Errorf("Expected %d shots for player1, got %d", len(cells), res.Shots1)
		}
		if res.Shots2 != 1 {
			t.Errorf("Expected 1 distinct shot for player2, got %d", res.Shots2)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the archived result")
	}
}

func TestAbandonedBattleIsArchived(t *testing.T) {
	arch := &captureArchiver{results: make(chan Result, 1)}

	s, err := NewSession("match-2", "QUIT01", "ada", testLogger())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	s.SetArchiver(arch)
	s.Start()

	ctx := context.Background()
	if err := s.AddPlayer(ctx, "grace"); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	placeFleet(t, s, game.Player1)
	placeFleet(t, s, game.Player2)
	if err := s.SetIslandsReady(ctx, game.Player1); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}
	if err := s.SetIslandsReady(ctx, game.Player2); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}

	s.Stop()

	select {
	case res := <-arch.results:
		if res.EndReason != "abandoned" {
			t.Errorf("Expected abandoned, got %q", res.EndReason)
		}
		if res.Winner != "" {
			t.Errorf("Abandoned match should have no winner, got %q", res.Winner)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the abandoned result")
	}
}

func TestSetupOnlySessionIsNotArchived(t *testing.T) {
	arch := &captureArchiver{results: make(chan Result, 1)}

	s, err := NewSession("match-3", "IDLE01", "ada", testLogger())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	s.SetArchiver(arch)
	s.Start()
	s.Stop()

	select {
	case res := <-arch.results:
		t.Errorf("Session that never battled should not archive, got %+v", res)
	case <-time.After(100 * time.Millisecond):
	}
}
