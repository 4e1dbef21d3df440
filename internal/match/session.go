// Package match runs island duels. Each duel lives in a Session: a
// single goroutine that owns all match state and consumes requests from
// a mailbox channel one at a time. Requests are validated against pure
// values from the game package and committed only when every step
// succeeded, so callers on any number of goroutines observe a match
// that moves atomically from one consistent state to the next.
package match

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-islands/internal/game"
)

var (
	// ErrSessionClosed reports an operation on a stopped session.
	ErrSessionClosed = errors.New("match: session closed")

	// ErrInvalidPlayerName rejects empty or blank player names.
	ErrInvalidPlayerName = errors.New("match: invalid player name")

	// ErrInvalidPlayer rejects a player id that is not one of the two seats.
	ErrInvalidPlayer = errors.New("match: invalid player seat")

	// ErrNilHandle rejects a nil event subscription.
	ErrNilHandle = errors.New("match: nil event handle")
)

// Archiver receives the record of a finished or abandoned match.
// Implementations must be safe for concurrent use; saves are fire-and-
// forget and never block the session.
type Archiver interface {
	SaveMatch(res Result) error
}

// Result is the archived summary of one match.
type Result struct {
	MatchID      string
	Code         string
	Player1      string
	Player2      string
	Winner       string // empty when the match was abandoned
	EndReason    string // "completed" or "abandoned"
	Shots1       int
	Shots2       int
	DurationSecs int
}

// GuessReply is the synchronous answer to a guess.
type GuessReply struct {
	Result    game.GuessResult
	Destroyed game.IslandType
	Phase     game.Phase
}

// PlayerView is a consistent snapshot of the match from one player's
// side. The board and shot log inside are copy-on-write values: the
// session never mutates them after handing them out, so the caller may
// read them freely.
type PlayerView struct {
	Phase         game.Phase
	You           game.PlayerID
	YourName      string
	OpponentName  string
	YouReady      bool
	OpponentReady bool
	Board         game.Board
	Shots         game.ShotLog
}

type playerSlot struct {
	name  string
	board game.Board
	shots game.ShotLog
}

type matchState struct {
	player1 playerSlot
	player2 playerSlot
	rules   game.Rules
}

// Session is one running match. All exported methods are safe for
// concurrent use: they post a request into the mailbox and wait for the
// session goroutine's reply.
type Session struct {
	id   string
	code string
	log  *log.Logger

	archiver Archiver

	requests chan request
	done     chan struct{}
	stopOnce sync.Once

	createdAt  time.Time
	lastActive atomic.Int64
	finished   atomic.Bool

	// Owned by the run goroutine after Start; nothing else touches these.
	state matchState
	subs  []EventHandle
}

// NewSession creates a match hosted by the named first player. Call
// SetArchiver if match results should be persisted, then Start.
func NewSession(id, code, hostName string, logger *log.Logger) (*Session, error) {
	if strings.TrimSpace(hostName) == "" {
		return nil, ErrInvalidPlayerName
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Session{
		id:        id,
		code:      code,
		log:       logger,
		requests:  make(chan request, 32),
		done:      make(chan struct{}),
		createdAt: time.Now(),
		state: matchState{
			player1: playerSlot{name: hostName, board: game.NewBoard(), shots: game.NewShotLog()},
			player2: playerSlot{board: game.NewBoard(), shots: game.NewShotLog()},
			rules:   game.NewRules(),
		},
	}
	s.lastActive.Store(s.createdAt.UnixNano())
	return s, nil
}

// SetArchiver sets the optional match result sink. Must be called
// before Start.
func (s *Session) SetArchiver(a Archiver) {
	s.archiver = a
}

// Start launches the session goroutine.
func (s *Session) Start() {
	go s.run()
}

// Stop shuts the session down. Pending and later requests fail with
// ErrSessionClosed. Safe to call multiple times.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// ID returns the match identifier.
func (s *Session) ID() string { return s.id }

// Code returns the join code the session was created under.
func (s *Session) Code() string { return s.code }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastActive returns the time of the most recent handled request.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Finished reports whether the match has reached game over.
func (s *Session) Finished() bool { return s.finished.Load() }

// Done returns a channel that closes when the session stops.
func (s *Session) Done() <-chan struct{} { return s.done }

// AddPlayer seats the second player.
func (s *Session) AddPlayer(ctx context.Context, name string) error {
	req := addPlayerReq{name: name, reply: make(chan error, 1)}
	if err := s.submit(ctx, req); err != nil {
		return err
	}
	return s.awaitErr(ctx, req.reply)
}

// PositionIsland places or moves one of the player's islands, anchored
// at (row, col).
func (s *Session) PositionIsland(ctx context.Context, player game.PlayerID, typ game.IslandType, row, col int) error {
	req := positionIslandReq{player: player, typ: typ, row: row, col: col, reply: make(chan error, 1)}
	if err := s.submit(ctx, req); err != nil {
		return err
	}
	return s.awaitErr(ctx, req.reply)
}

// SetIslandsReady declares the player's placement final. Once both
// players are ready the battle starts with player1's turn.
func (s *Session) SetIslandsReady(ctx context.Context, player game.PlayerID) error {
	req := setIslandsReadyReq{player: player, reply: make(chan error, 1)}
	if err := s.submit(ctx, req); err != nil {
		return err
	}
	return s.awaitErr(ctx, req.reply)
}

// Guess fires at (row, col) on the opponent's board.
func (s *Session) Guess(ctx context.Context, player game.PlayerID, row, col int) (GuessReply, error) {
	req := guessReq{player: player, row: row, col: col, reply: make(chan guessReply, 1)}
	if err := s.submit(ctx, req); err != nil {
		return GuessReply{}, err
	}
	select {
	case rep := <-req.reply:
		return rep.val, rep.err
	case <-s.done:
		select {
		case rep := <-req.reply:
			return rep.val, rep.err
		default:
			return GuessReply{}, ErrSessionClosed
		}
	case <-ctx.Done():
		return GuessReply{}, ctx.Err()
	}
}

// View returns a consistent snapshot from the player's side.
func (s *Session) View(ctx context.Context, player game.PlayerID) (PlayerView, error) {
	req := viewReq{player: player, reply: make(chan viewReply, 1)}
	if err := s.submit(ctx, req); err != nil {
		return PlayerView{}, err
	}
	select {
	case rep := <-req.reply:
		return rep.val, rep.err
	case <-s.done:
		select {
		case rep := <-req.reply:
			return rep.val, rep.err
		default:
			return PlayerView{}, ErrSessionClosed
		}
	case <-ctx.Done():
		return PlayerView{}, ctx.Err()
	}
}

// Subscribe registers an event handle. Events committed after the
// subscription are delivered to it in order.
func (s *Session) Subscribe(ctx context.Context, h EventHandle) error {
	if h == nil {
		return ErrNilHandle
	}
	req := subscribeReq{handle: h, reply: make(chan error, 1)}
	if err := s.submit(ctx, req); err != nil {
		return err
	}
	return s.awaitErr(ctx, req.reply)
}

func (s *Session) submit(ctx context.Context, req request) error {
	select {
	case s.requests <- req:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// awaitErr waits for an error-only reply. When the session stops while
// the caller waits, a reply that was already sent still wins.
func (s *Session) awaitErr(ctx context.Context, reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-s.done:
		select {
		case err := <-reply:
			return err
		default:
			return ErrSessionClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) run() {
	s.log.Debug("session started", "id", s.id, "code", s.code)
	for {
		select {
		case req := <-s.requests:
			s.lastActive.Store(time.Now().UnixNano())
			s.handle(req)
		case <-s.done:
			s.shutdown()
			return
		}
	}
}

func (s *Session) handle(req request) {
	switch r := req.(type) {
	case addPlayerReq:
		r.reply <- s.handleAddPlayer(r)
	case positionIslandReq:
		r.reply <- s.handlePositionIsland(r)
	case setIslandsReadyReq:
		r.reply <- s.handleSetIslandsReady(r)
	case guessReq:
		val, err := s.handleGuess(r)
		r.reply <- guessReply{val: val, err: err}
	case viewReq:
		val, err := s.handleView(r)
		r.reply <- viewReply{val: val, err: err}
	case subscribeReq:
		s.subs = append(s.subs, r.handle)
		r.reply <- nil
	}
}

func (s *Session) handleAddPlayer(r addPlayerReq) error {
	if strings.TrimSpace(r.name) == "" {
		return ErrInvalidPlayerName
	}
	rules, err := s.state.rules.Check(game.AddPlayer{})
	if err != nil {
		return err
	}
	s.state.player2.name = r.name
	s.state.rules = rules
	s.log.Debug("player joined", "id", s.id, "name", r.name)
	s.publish(PlayerJoinedEvent{Name: r.name})
	return nil
}

func (s *Session) handlePositionIsland(r positionIslandReq) error {
	rules, err := s.state.rules.Check(game.PositionIslands{Player: r.player})
	if err != nil {
		return err
	}
	coord, err := game.NewCoordinate(r.row, r.col)
	if err != nil {
		return err
	}
	slot := s.slot(r.player)
	board, err := slot.board.PlaceIsland(r.typ, coord)
	if err != nil {
		return err
	}
	slot.board = board
	s.state.rules = rules
	return nil
}

func (s *Session) handleSetIslandsReady(r setIslandsReadyReq) error {
	rules, err := s.state.rules.Check(game.SetIslandsReady{Player: r.player})
	if err != nil {
		return err
	}
	if !s.slot(r.player).board.AllIslandsPlaced() {
		return game.ErrNotAllIslandsPlaced
	}
	s.state.rules = rules
	s.publish(IslandsReadyEvent{Player: r.player})
	if rules.Phase == game.PhasePlayer1Turn {
		s.log.Debug("battle started", "id", s.id)
		s.publish(BattleStartedEvent{FirstTurn: game.Player1})
	}
	return nil
}

func (s *Session) handleGuess(r guessReq) (GuessReply, error) {
	rules, err := s.state.rules.Check(game.Guess{Player: r.player})
	if err != nil {
		return GuessReply{}, err
	}
	coord, err := game.NewCoordinate(r.row, r.col)
	if err != nil {
		return GuessReply{}, err
	}
	opponent := s.slot(r.player.Opponent())
	outcome, board := opponent.board.Guess(coord)
	shots := s.slot(r.player).shots.Add(outcome.Result, coord)
	rules, err = rules.Check(game.WinCheck{Won: outcome.AllDestroyed})
	if err != nil {
		return GuessReply{}, err
	}

	// Every step above worked on copies; commit them together.
	opponent.board = board
	s.slot(r.player).shots = shots
	s.state.rules = rules

	reply := GuessReply{Result: outcome.Result, Destroyed: outcome.Destroyed, Phase: rules.Phase}
	s.publish(GuessResolvedEvent{
		By:         r.player,
		Coordinate: coord,
		Result:     outcome.Result,
		Destroyed:  outcome.Destroyed,
		Phase:      rules.Phase,
	})
	if rules.Phase == game.PhaseGameOver {
		s.finished.Store(true)
		s.log.Info("match finished", "id", s.id, "winner", s.slot(r.player).name)
		s.publish(GameOverEvent{Winner: r.player})
		s.archive(s.slot(r.player).name, "completed")
	}
	return reply, nil
}

func (s *Session) handleView(r viewReq) (PlayerView, error) {
	if !r.player.Valid() {
		return PlayerView{}, ErrInvalidPlayer
	}
	you := s.slot(r.player)
	opp := s.slot(r.player.Opponent())
	return PlayerView{
		Phase:         s.state.rules.Phase,
		You:           r.player,
		YourName:      you.name,
		OpponentName:  opp.name,
		YouReady:      s.state.rules.Ready(r.player),
		OpponentReady: s.state.rules.Ready(r.player.Opponent()),
		Board:         you.board,
		Shots:         you.shots,
	}, nil
}

func (s *Session) slot(p game.PlayerID) *playerSlot {
	if p == game.Player2 {
		return &s.state.player2
	}
	return &s.state.player1
}

// publish sends the event to every live subscriber and drops the dead
// ones.
func (s *Session) publish(evt Event) {
	kept := s.subs[:0]
	for _, h := range s.subs {
		select {
		case <-h.Done():
			continue
		default:
		}
		h.Send(evt)
		kept = append(kept, h)
	}
	s.subs = kept
}

// shutdown runs inside the session goroutine when done closes: archives
// a battle cut short, notifies subscribers, and fails queued requests.
func (s *Session) shutdown() {
	if _, inBattle := s.state.rules.Phase.Turn(); inBattle {
		s.archive("", "abandoned")
	}
	s.publish(SessionClosedEvent{})
	for {
		select {
		case req := <-s.requests:
			s.fail(req)
		default:
			s.log.Debug("session closed", "id", s.id, "code", s.code)
			return
		}
	}
}

func (s *Session) fail(req request) {
	switch r := req.(type) {
	case addPlayerReq:
		r.reply <- ErrSessionClosed
	case positionIslandReq:
		r.reply <- ErrSessionClosed
	case setIslandsReadyReq:
		r.reply <- ErrSessionClosed
	case guessReq:
		r.reply <- guessReply{err: ErrSessionClosed}
	case viewReq:
		r.reply <- viewReply{err: ErrSessionClosed}
	case subscribeReq:
		r.reply <- ErrSessionClosed
	}
}

// archive snapshots the result inside the session goroutine and saves
// it in the background, best effort.
func (s *Session) archive(winner, reason string) {
	if s.archiver == nil {
		return
	}
	res := Result{
		MatchID:      s.id,
		Code:         s.code,
		Player1:      s.state.player1.name,
		Player2:      s.state.player2.name,
		Winner:       winner,
		EndReason:    reason,
		Shots1:       s.state.player1.shots.Count(),
		Shots2:       s.state.player2.shots.Count(),
		DurationSecs: int(time.Since(s.createdAt).Seconds()),
	}
	go func() {
		if err := s.archiver.SaveMatch(res); err != nil {
			s.log.Warn("match archive failed", "id", res.MatchID, "err", err)
		}
	}()
}
