package match

import "github.com/vovakirdan/tui-islands/internal/game"

// request is a message into the session mailbox. Implementations form a
// closed set. Every request carries a buffered reply channel so the
// session goroutine can answer without ever blocking on a caller that
// gave up.
type request interface {
	request()
}

type addPlayerReq struct {
	name  string
	reply chan error
}

type positionIslandReq struct {
	player game.PlayerID
	typ    game.IslandType
	row    int
	col    int
	reply  chan error
}

type setIslandsReadyReq struct {
	player game.PlayerID
	reply  chan error
}

type guessReq struct {
	player game.PlayerID
	row    int
	col    int
	reply  chan guessReply
}

type guessReply struct {
	val GuessReply
	err error
}

type viewReq struct {
	player game.PlayerID
	reply  chan viewReply
}

type viewReply struct {
	val PlayerView
	err error
}

type subscribeReq struct {
	handle EventHandle
	reply  chan error
}

func (addPlayerReq) request()       {}
func (positionIslandReq) request()  {}
func (setIslandsReadyReq) request() {}
func (guessReq) request()           {}
func (viewReq) request()            {}
func (subscribeReq) request()       {}
