package game

import "testing"

func TestShotLogAdd(t *testing.T) {
	log := NewShotLog()
	hit, _ := NewCoordinate(1, 1)
	miss, _ := NewCoordinate(2, 2)

	log = log.Add(Hit, hit)
	log = log.Add(Miss, miss)

	if !log.Hits.Contains(hit) {
		t.Error("Expected hit coordinate in Hits")
	}
	if !log.Misses.Contains(miss) {
		t.Error("Expected miss coordinate in Misses")
	}
	if log.Count() != 2 {
		t.Errorf("Expected 2 shots, got %d", log.Count())
	}
}

func TestShotLogFirstWriteWins(t *testing.T) {
	log := NewShotLog()
	c, _ := NewCoordinate(4, 4)

	log = log.Add(Miss, c)
	log = log.Add(Hit, c) // conflicting re-add is dropped

	if log.Hits.Contains(c) {
		t.Error("Coordinate should stay in Misses")
	}
	if !log.Misses.Contains(c) {
		t.Error("Expected coordinate to remain a miss")
	}
	if log.Count() != 1 {
		t.Errorf("Expected 1 shot, got %d", log.Count())
	}
}

func TestShotLogAddDoesNotMutate(t *testing.T) {
	base := NewShotLog()
	c, _ := NewCoordinate(3, 3)

	grown := base.Add(Hit, c)
	if base.Count() != 0 {
		t.Errorf("Original log should stay empty, got %d shots", base.Count())
	}
	if grown.Count() != 1 {
		t.Errorf("Expected 1 shot in the new log, got %d", grown.Count())
	}
}

func TestShotLogContains(t *testing.T) {
	log := NewShotLog()
	a, _ := NewCoordinate(1, 2)
	b, _ := NewCoordinate(2, 1)

	log = log.Add(Hit, a)
	if !log.Contains(a) {
		t.Error("Expected Contains true for a recorded shot")
	}
	if log.Contains(b) {
		t.Error("Expected Contains false for an unexplored coordinate")
	}
}
