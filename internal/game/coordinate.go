package game

import "fmt"

// BoardSize is the number of rows and columns on each player's grid.
const BoardSize = 10

// Coordinate is one cell on a grid. Rows and columns are 1-based, so the
// top-left cell is (1,1) and the bottom-right is (BoardSize,BoardSize).
// Coordinates are comparable and safe to use as map keys.
type Coordinate struct {
	Row int
	Col int
}

// NewCoordinate returns the coordinate at (row, col), or
// ErrInvalidCoordinate when either component is off the grid.
func NewCoordinate(row, col int) (Coordinate, error) {
	if row < 1 || row > BoardSize || col < 1 || col > BoardSize {
		return Coordinate{}, ErrInvalidCoordinate
	}
	return Coordinate{Row: row, Col: col}, nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// CoordinateSet is an immutable-by-convention set of coordinates: the
// mutating helpers return a fresh set and leave the receiver alone.
type CoordinateSet map[Coordinate]struct{}

// NewCoordinateSet builds a set from the given coordinates.
func NewCoordinateSet(coords ...Coordinate) CoordinateSet {
	s := make(CoordinateSet, len(coords))
	for _, c := range coords {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether c is in the set.
func (s CoordinateSet) Contains(c Coordinate) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of coordinates in the set.
func (s CoordinateSet) Len() int { return len(s) }

// with returns a copy of the set that also contains c.
func (s CoordinateSet) with(c Coordinate) CoordinateSet {
	next := make(CoordinateSet, len(s)+1)
	for k := range s {
		next[k] = struct{}{}
	}
	next[c] = struct{}{}
	return next
}

// intersects reports whether the two sets share any coordinate.
func (s CoordinateSet) intersects(other CoordinateSet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for c := range small {
		if large.Contains(c) {
			return true
		}
	}
	return false
}
