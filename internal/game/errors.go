package game

import (
	"errors"
	"fmt"
)

// Engine errors form a closed set. Callers match them with errors.Is and
// errors.As, never by message text.
var (
	ErrInvalidCoordinate   = errors.New("game: coordinate out of bounds")
	ErrInvalidIslandType   = errors.New("game: unknown island type")
	ErrOverlappingIsland   = errors.New("game: island overlaps another island")
	ErrNotAllIslandsPlaced = errors.New("game: not all islands placed")
)

// RuleViolationError reports an action attempted in a phase that does not
// allow it. The action and phase are kept so clients can explain the
// rejection ("not your turn") instead of showing a generic failure.
type RuleViolationError struct {
	Phase  Phase
	Action Action
}

func (e *RuleViolationError) Error() string {
	return fmt.Sprintf("game: %s not allowed in phase %s", e.Action, e.Phase)
}
