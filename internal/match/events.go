package match

import (
	"sync"

	"github.com/vovakirdan/tui-islands/internal/game"
)

// Event is a notification published to session subscribers after a state
// change has been committed. Events are delivered in commit order,
// best-effort: a slow subscriber loses old events, it never slows the
// session down.
type Event interface {
	matchEvent()
}

// PlayerJoinedEvent fires when the second player takes their seat.
type PlayerJoinedEvent struct {
	Name string
}

// IslandsReadyEvent fires when a player declares their placement final.
type IslandsReadyEvent struct {
	Player game.PlayerID
}

// BattleStartedEvent fires once both players are ready and the first
// turn opens.
type BattleStartedEvent struct {
	FirstTurn game.PlayerID
}

// GuessResolvedEvent fires for every committed guess, carrying the
// phase the match moved into.
type GuessResolvedEvent struct {
	By         game.PlayerID
	Coordinate game.Coordinate
	Result     game.GuessResult
	Destroyed  game.IslandType
	Phase      game.Phase
}

// GameOverEvent fires when a guess destroys the last island.
type GameOverEvent struct {
	Winner game.PlayerID
}

// SessionClosedEvent fires when the session shuts down, whether the
// match finished or was abandoned.
type SessionClosedEvent struct{}

func (PlayerJoinedEvent) matchEvent()  {}
func (IslandsReadyEvent) matchEvent()  {}
func (BattleStartedEvent) matchEvent() {}
func (GuessResolvedEvent) matchEvent() {}
func (GameOverEvent) matchEvent()      {}
func (SessionClosedEvent) matchEvent() {}

// EventHandle is the transport-neutral interface a subscriber hands to a
// session. Send must never block; implementations should buffer and drop
// rather than stall the session goroutine.
type EventHandle interface {
	// ID identifies the subscriber.
	ID() string

	// Send delivers an event asynchronously.
	Send(evt Event)

	// Done returns a channel that closes when the subscriber goes away.
	// The session drops closed subscribers on the next publish.
	Done() <-chan struct{}
}

// ChannelHandle is an EventHandle backed by a buffered channel. The TUI
// layer uses it to bridge session events into Bubble Tea messages.
type ChannelHandle struct {
	id       string
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelHandle creates a handle with the given buffer size.
func NewChannelHandle(id string, bufferSize int) *ChannelHandle {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelHandle{
		id:     id,
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the subscriber identifier.
func (h *ChannelHandle) ID() string {
	return h.id
}

// Send delivers an event. When the buffer is full the oldest event is
// dropped so Send stays non-blocking.
func (h *ChannelHandle) Send(evt Event) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.events <- evt:
	default:
		select {
		case <-h.events:
		default:
		}
		select {
		case h.events <- evt:
		default:
		}
	}
}

// Events returns the channel subscribers read from.
func (h *ChannelHandle) Events() <-chan Event {
	return h.events
}

// Done returns the done channel.
func (h *ChannelHandle) Done() <-chan struct{} {
	return h.done
}

// Close marks the handle as gone. Safe to call multiple times.
func (h *ChannelHandle) Close() {
	h.doneOnce.Do(func() {
		close(h.done)
	})
}
