package game

// Phase is the stage a match is in. Matches move strictly forward:
// Initialized -> PlayersSet -> alternating turn phases -> GameOver.
type Phase int

const (
	PhaseInitialized Phase = iota
	PhasePlayersSet
	PhasePlayer1Turn
	PhasePlayer2Turn
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialized:
		return "initialized"
	case PhasePlayersSet:
		return "players_set"
	case PhasePlayer1Turn:
		return "player1_turn"
	case PhasePlayer2Turn:
		return "player2_turn"
	case PhaseGameOver:
		return "game_over"
	}
	return "unknown"
}

// Turn returns the player whose turn the phase is, or (0, false) when
// the phase is not a turn phase.
func (p Phase) Turn() (PlayerID, bool) {
	switch p {
	case PhasePlayer1Turn:
		return Player1, true
	case PhasePlayer2Turn:
		return Player2, true
	}
	return 0, false
}

// Action is one of the closed set of requests that can advance the
// rules. The unexported marker keeps the set closed.
type Action interface {
	action()
	String() string
}

// AddPlayer asks to seat the second player.
type AddPlayer struct{}

// PositionIslands asks to place or move one of a player's islands.
type PositionIslands struct{ Player PlayerID }

// SetIslandsReady declares a player's island placement final.
type SetIslandsReady struct{ Player PlayerID }

// Guess asks to fire at the opponent's board.
type Guess struct{ Player PlayerID }

// WinCheck reports whether the last guess destroyed the whole opposing
// board.
type WinCheck struct{ Won bool }

func (AddPlayer) action()       {}
func (PositionIslands) action() {}
func (SetIslandsReady) action() {}
func (Guess) action()           {}
func (WinCheck) action()        {}

func (AddPlayer) String() string         { return "add_player" }
func (a PositionIslands) String() string { return "position_islands " + a.Player.String() }
func (a SetIslandsReady) String() string { return "set_islands_ready " + a.Player.String() }
func (a Guess) String() string           { return "guess " + a.Player.String() }
func (a WinCheck) String() string {
	if a.Won {
		return "win_check won"
	}
	return "win_check"
}

// Rules carries the phase plus each player's readiness flag. It is a
// value: Check returns the successor and never mutates the receiver.
type Rules struct {
	Phase        Phase
	Player1Ready bool
	Player2Ready bool
}

// NewRules returns the rules for a freshly created match.
func NewRules() Rules {
	return Rules{Phase: PhaseInitialized}
}

// Ready reports whether the player has declared their islands final.
func (r Rules) Ready(p PlayerID) bool {
	switch p {
	case Player1:
		return r.Player1Ready
	case Player2:
		return r.Player2Ready
	}
	return false
}

// Check decides whether the action is legal in the current state. A
// legal action yields the successor state; anything else yields the
// state unchanged plus a RuleViolationError naming the phase and the
// action. Check is total: every (state, action) pair has an answer.
func (r Rules) Check(a Action) (Rules, error) {
	switch act := a.(type) {
	case AddPlayer:
		if r.Phase == PhaseInitialized {
			r.Phase = PhasePlayersSet
			return r, nil
		}

	case PositionIslands:
		if !act.Player.Valid() {
			break
		}
		if (r.Phase == PhaseInitialized || r.Phase == PhasePlayersSet) && !r.Ready(act.Player) {
			return r, nil
		}

	case SetIslandsReady:
		if !act.Player.Valid() {
			break
		}
		if r.Phase == PhasePlayersSet {
			r = r.withReady(act.Player)
			if r.Player1Ready && r.Player2Ready {
				r.Phase = PhasePlayer1Turn
			}
			return r, nil
		}

	case Guess:
		if !act.Player.Valid() {
			break
		}
		if turn, ok := r.Phase.Turn(); ok && turn == act.Player {
			r.Phase = turnPhase(act.Player.Opponent())
			return r, nil
		}

	case WinCheck:
		if _, ok := r.Phase.Turn(); ok {
			if act.Won {
				r.Phase = PhaseGameOver
			}
			return r, nil
		}
	}
	return r, &RuleViolationError{Phase: r.Phase, Action: a}
}

func (r Rules) withReady(p PlayerID) Rules {
	switch p {
	case Player1:
		r.Player1Ready = true
	case Player2:
		r.Player2Ready = true
	}
	return r
}

func turnPhase(p PlayerID) Phase {
	if p == Player2 {
		return PhasePlayer2Turn
	}
	return PhasePlayer1Turn
}
