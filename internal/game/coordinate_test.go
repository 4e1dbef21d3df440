package game

import (
	"errors"
	"testing"
)

func TestNewCoordinateBounds(t *testing.T) {
	// Every cell of the grid is a valid coordinate
	for row := 1; row <= BoardSize; row++ {
		for col := 1; col <= BoardSize; col++ {
			c, err := NewCoordinate(row, col)
			if err != nil {
				t.Errorf("Expected (%d,%d) to be valid, got %v", row, col, err)
			}
			if c.Row != row || c.Col != col {
				t.Errorf("Expected coordinate (%d,%d), got %v", row, col, c)
			}
		}
	}

	invalid := [][2]int{{0, 5}, {5, 0}, {BoardSize + 1, 5}, {5, BoardSize + 1}, {-3, 4}, {0, 0}}
	for _, rc := range invalid {
		if _, err := NewCoordinate(rc[0], rc[1]); !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("Expected ErrInvalidCoordinate for (%d,%d), got %v", rc[0], rc[1], err)
		}
	}
}

func TestCoordinateAsMapKey(t *testing.T) {
	a, _ := NewCoordinate(3, 7)
	b, _ := NewCoordinate(3, 7)

	set := NewCoordinateSet(a)
	if !set.Contains(b) {
		t.Error("Equal coordinates should be the same map key")
	}
	if set.Len() != 1 {
		t.Errorf("Expected set length 1, got %d", set.Len())
	}
}

func TestCoordinateSetWithDoesNotMutate(t *testing.T) {
	a, _ := NewCoordinate(1, 1)
	b, _ := NewCoordinate(2, 2)

	base := NewCoordinateSet(a)
	grown := base.with(b)

	if base.Len() != 1 {
		t.Errorf("Original set should be untouched, got length %d", base.Len())
	}
	if grown.Len() != 2 || !grown.Contains(a) || !grown.Contains(b) {
		t.Errorf("Expected grown set to hold both coordinates, got %v", grown)
	}
}

func TestCoordinateSetIntersects(t *testing.T) {
	a, _ := NewCoordinate(1, 1)
	b, _ := NewCoordinate(2, 2)
	c, _ := NewCoordinate(3, 3)

	if !NewCoordinateSet(a, b).intersects(NewCoordinateSet(b, c)) {
		t.Error("Sets sharing a coordinate should intersect")
	}
	if NewCoordinateSet(a).intersects(NewCoordinateSet(c)) {
		t.Error("Disjoint sets should not intersect")
	}
	if NewCoordinateSet().intersects(NewCoordinateSet(a)) {
		t.Error("Empty set should not intersect anything")
	}
}
