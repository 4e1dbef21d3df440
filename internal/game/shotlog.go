package game

// ShotLog records every coordinate a player has fired at, split by
// result. First write wins: adding a coordinate that is already in
// either set returns the log unchanged, so a repeated guess can never
// move a coordinate between sets or count it twice.
type ShotLog struct {
	Hits   CoordinateSet
	Misses CoordinateSet
}

// NewShotLog returns an empty log.
func NewShotLog() ShotLog {
	return ShotLog{Hits: NewCoordinateSet(), Misses: NewCoordinateSet()}
}

// Add records the result of a shot at c and returns the new log.
func (l ShotLog) Add(result GuessResult, c Coordinate) ShotLog {
	if l.Contains(c) {
		return l
	}
	if result == Hit {
		return ShotLog{Hits: l.Hits.with(c), Misses: l.Misses}
	}
	return ShotLog{Hits: l.Hits, Misses: l.Misses.with(c)}
}

// Contains reports whether c has been fired at.
func (l ShotLog) Contains(c Coordinate) bool {
	return l.Hits.Contains(c) || l.Misses.Contains(c)
}

// Count returns the total number of distinct shots taken.
func (l ShotLog) Count() int {
	return l.Hits.Len() + l.Misses.Len()
}
