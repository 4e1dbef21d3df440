package game

import (
	"errors"
	"testing"
)

func TestIslandShapes(t *testing.T) {
	anchor, _ := NewCoordinate(1, 1)

	sizes := map[IslandType]int{
		IslandDot:    1,
		IslandSquare: 4,
		IslandAtoll:  5,
		IslandLShape: 4,
		IslandSShape: 4,
	}
	for typ, want := range sizes {
		island, err := NewIsland(typ, anchor)
		if err != nil {
			t.Fatalf("Expected %s at (1,1) to fit, got %v", typ, err)
		}
		if island.Cells.Len() != want {
			t.Errorf("Expected %s to cover %d cells, got %d", typ, want, island.Cells.Len())
		}
		if !island.Cells.Contains(Coordinate{Row: anchor.Row, Col: anchor.Col}) && typ != IslandSShape {
			t.Errorf("Expected %s to include its anchor cell", typ)
		}
	}
}

func TestSShapeSkipsAnchorCell(t *testing.T) {
	// The s_shape is the one shape whose anchor cell stays water
	anchor, _ := NewCoordinate(4, 4)
	island, err := NewIsland(IslandSShape, anchor)
	if err != nil {
		t.Fatalf("NewIsland failed: %v", err)
	}

	if island.Cells.Contains(anchor) {
		t.Error("s_shape should not occupy its anchor cell")
	}
	for _, rc := range [][2]int{{4, 5}, {4, 6}, {5, 4}, {5, 5}} {
		c := Coordinate{Row: rc[0], Col: rc[1]}
		if !island.Cells.Contains(c) {
			t.Errorf("Expected s_shape to cover %v", c)
		}
	}
}

func TestIslandDoesNotFit(t *testing.T) {
	// A square anchored on the bottom-right corner spills off the grid
	corner, _ := NewCoordinate(BoardSize, BoardSize)
	if _, err := NewIsland(IslandSquare, corner); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("Expected ErrInvalidCoordinate, got %v", err)
	}

	// An l_shape needs three rows below the anchor
	low, _ := NewCoordinate(BoardSize-1, 1)
	if _, err := NewIsland(IslandLShape, low); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("Expected ErrInvalidCoordinate, got %v", err)
	}

	// The same shapes fit when pulled inside
	fits, _ := NewCoordinate(BoardSize-2, BoardSize-1)
	if _, err := NewIsland(IslandLShape, fits); err != nil {
		t.Errorf("Expected l_shape at %v to fit, got %v", fits, err)
	}
}

func TestUnknownIslandType(t *testing.T) {
	anchor, _ := NewCoordinate(1, 1)
	if _, err := NewIsland(IslandNone, anchor); !errors.Is(err, ErrInvalidIslandType) {
		t.Errorf("Expected ErrInvalidIslandType for none, got %v", err)
	}
	if _, err := NewIsland(IslandType(42), anchor); !errors.Is(err, ErrInvalidIslandType) {
		t.Errorf("Expected ErrInvalidIslandType for bogus type, got %v", err)
	}
}

func TestParseIslandType(t *testing.T) {
	for _, typ := range IslandTypes() {
		parsed, err := ParseIslandType(typ.String())
		if err != nil {
			t.Errorf("ParseIslandType(%q) failed: %v", typ.String(), err)
		}
		if parsed != typ {
			t.Errorf("Expected %v, got %v", typ, parsed)
		}
	}
	if _, err := ParseIslandType("volcano"); !errors.Is(err, ErrInvalidIslandType) {
		t.Errorf("Expected ErrInvalidIslandType, got %v", err)
	}
}

func TestIslandDestroyed(t *testing.T) {
	anchor, _ := NewCoordinate(2, 2)
	island, _ := NewIsland(IslandSquare, anchor)

	if island.Destroyed() {
		t.Error("Fresh island should not be destroyed")
	}

	cells := make([]Coordinate, 0, island.Cells.Len())
	for c := range island.Cells {
		cells = append(cells, c)
	}
	for i, c := range cells {
		island = island.withHit(c)
		destroyed := i == len(cells)-1
		if island.Destroyed() != destroyed {
			t.Errorf("After %d hits Destroyed() = %v, want %v", i+1, island.Destroyed(), destroyed)
		}
	}
}

func TestIslandWithHitIsCopyOnWrite(t *testing.T) {
	anchor, _ := NewCoordinate(5, 5)
	island, _ := NewIsland(IslandDot, anchor)

	hit := island.withHit(anchor)
	if island.Hits.Len() != 0 {
		t.Error("withHit should not mutate the original island")
	}
	if !hit.Destroyed() {
		t.Error("Dot with its only cell hit should be destroyed")
	}

	// Hitting the same cell again returns an equal island
	again := hit.withHit(anchor)
	if again.Hits.Len() != 1 {
		t.Errorf("Expected one recorded hit, got %d", again.Hits.Len())
	}

	// Water cells are ignored
	water, _ := NewCoordinate(9, 9)
	if miss := island.withHit(water); miss.Hits.Len() != 0 {
		t.Error("Hitting a non-island cell should record nothing")
	}
}
