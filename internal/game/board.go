// Package game holds the pure rules of an island duel: coordinates, the
// five island shapes, per-player boards and shot logs, and the phase
// rules that order a match. Everything here is a value. Operations
// return new values and never mutate their inputs, so a caller can run a
// whole chain of fallible steps and commit the results only when every
// step succeeded.
package game

// GuessResult says whether a guess landed on an island cell.
type GuessResult int

const (
	Miss GuessResult = iota
	Hit
)

func (r GuessResult) String() string {
	if r == Hit {
		return "hit"
	}
	return "miss"
}

// GuessOutcome reports everything a single guess resolved: the result,
// the type of the island the guess left destroyed (IslandNone when the
// hit island still has unhit cells, or on a miss), and whether the whole
// board is now destroyed.
type GuessOutcome struct {
	Result       GuessResult
	Destroyed    IslandType
	AllDestroyed bool
}

// Board maps each placed island type to its island. A board never holds
// two islands of the same type: re-placing a type replaces its island.
type Board map[IslandType]Island

// NewBoard returns an empty board.
func NewBoard() Board { return Board{} }

// PlaceIsland puts an island of type t with its anchor at the given
// coordinate and returns the resulting board. The receiver is left
// untouched. Errors: ErrInvalidIslandType, ErrInvalidCoordinate when the
// shape does not fit, ErrOverlappingIsland when it would share a cell
// with a different island.
func (b Board) PlaceIsland(t IslandType, anchor Coordinate) (Board, error) {
	island, err := NewIsland(t, anchor)
	if err != nil {
		return b, err
	}
	for other, placed := range b {
		if other == t {
			continue
		}
		if placed.overlaps(island) {
			return b, ErrOverlappingIsland
		}
	}
	next := b.clone()
	next[t] = island
	return next, nil
}

// AllIslandsPlaced reports whether every one of the five shapes is on
// the board.
func (b Board) AllIslandsPlaced() bool {
	for _, t := range IslandTypes() {
		if _, ok := b[t]; !ok {
			return false
		}
	}
	return true
}

// Guess resolves a shot at c and returns the outcome plus the board
// after the shot. A guess on open water is a miss and returns the board
// unchanged. A guess on an island cell is a hit, even when that cell was
// already hit before; the outcome then also names the island's type if
// the island stands fully destroyed.
func (b Board) Guess(c Coordinate) (GuessOutcome, Board) {
	for t, island := range b {
		if !island.Cells.Contains(c) {
			continue
		}
		hit := island.withHit(c)
		next := b.clone()
		next[t] = hit
		out := GuessOutcome{Result: Hit}
		if hit.Destroyed() {
			out.Destroyed = t
		}
		out.AllDestroyed = next.allDestroyed()
		return out, next
	}
	return GuessOutcome{Result: Miss}, b
}

// HitCount returns the number of island cells on the board that have
// been hit.
func (b Board) HitCount() int {
	n := 0
	for _, island := range b {
		n += island.Hits.Len()
	}
	return n
}

func (b Board) allDestroyed() bool {
	if !b.AllIslandsPlaced() {
		return false
	}
	for _, island := range b {
		if !island.Destroyed() {
			return false
		}
	}
	return true
}

func (b Board) clone() Board {
	next := make(Board, len(b))
	for t, island := range b {
		next[t] = island
	}
	return next
}
