package game

// IslandType identifies one of the five fixed island shapes. The zero
// value IslandNone means "no island" and is never placeable.
type IslandType int

const (
	IslandNone IslandType = iota
	IslandDot
	IslandSquare
	IslandAtoll
	IslandLShape
	IslandSShape
)

// offsets lists each shape's cells as (row, col) deltas from the anchor,
// which sits at the shape's top-left corner.
var offsets = map[IslandType][][2]int{
	IslandDot:    {{0, 0}},
	IslandSquare: {{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	IslandAtoll:  {{0, 0}, {0, 1}, {1, 1}, {2, 0}, {2, 1}},
	IslandLShape: {{0, 0}, {1, 0}, {2, 0}, {2, 1}},
	IslandSShape: {{0, 1}, {0, 2}, {1, 0}, {1, 1}},
}

// IslandTypes returns the placeable shapes in a stable order.
func IslandTypes() []IslandType {
	return []IslandType{IslandDot, IslandSquare, IslandAtoll, IslandLShape, IslandSShape}
}

func (t IslandType) String() string {
	switch t {
	case IslandDot:
		return "dot"
	case IslandSquare:
		return "square"
	case IslandAtoll:
		return "atoll"
	case IslandLShape:
		return "l_shape"
	case IslandSShape:
		return "s_shape"
	case IslandNone:
		return "none"
	}
	return "unknown"
}

// ParseIslandType maps a shape name back to its type. It accepts exactly
// the strings produced by String for the five placeable shapes.
func ParseIslandType(name string) (IslandType, error) {
	for _, t := range IslandTypes() {
		if t.String() == name {
			return t, nil
		}
	}
	return IslandNone, ErrInvalidIslandType
}

// Island is one placed shape: the cells it occupies and the subset of
// those cells that have been hit. Like every type in this package it is
// a value; withHit returns a new Island.
type Island struct {
	Cells CoordinateSet
	Hits  CoordinateSet
}

// NewIsland places a shape with its anchor at the given coordinate. It
// returns ErrInvalidIslandType for an unknown shape and
// ErrInvalidCoordinate when any cell of the shape would leave the grid.
func NewIsland(t IslandType, anchor Coordinate) (Island, error) {
	offs, ok := offsets[t]
	if !ok {
		return Island{}, ErrInvalidIslandType
	}
	cells := make(CoordinateSet, len(offs))
	for _, off := range offs {
		c, err := NewCoordinate(anchor.Row+off[0], anchor.Col+off[1])
		if err != nil {
			return Island{}, err
		}
		cells[c] = struct{}{}
	}
	return Island{Cells: cells, Hits: NewCoordinateSet()}, nil
}

// Destroyed reports whether every cell of the island has been hit.
func (i Island) Destroyed() bool {
	return len(i.Cells) > 0 && len(i.Hits) == len(i.Cells)
}

// withHit marks c as hit if it belongs to the island. Marking a cell
// twice changes nothing.
func (i Island) withHit(c Coordinate) Island {
	if !i.Cells.Contains(c) || i.Hits.Contains(c) {
		return i
	}
	return Island{Cells: i.Cells, Hits: i.Hits.with(c)}
}

// overlaps reports whether the two islands share any cell.
func (i Island) overlaps(other Island) bool {
	return i.Cells.intersects(other.Cells)
}
