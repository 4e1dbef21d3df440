// Package storage provides SQLite-based persistence for match archives.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-islands/internal/match"
)

// Store manages the SQLite database connection for match persistence.
type Store struct {
	db *sql.DB
}

// MatchRecord represents one archived match.
type MatchRecord struct {
	ID           int64
	MatchID      string
	Code         string
	Player1      string
	Player2      string
	Winner       string // Empty if the match was abandoned
	EndReason    string // "completed", "abandoned"
	Shots1       int
	Shots2       int
	DurationSecs int
	CreatedAt    time.Time
}

// PlayerStats contains aggregated statistics for a player name.
type PlayerStats struct {
	Name       string
	Played     int
	Wins       int
	Losses     int
	Abandoned  int
	TotalShots int
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			winner TEXT,
			end_reason TEXT NOT NULL,
			shots1 INTEGER NOT NULL DEFAULT 0,
			shots2 INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_player1 ON matches(player1);
		CREATE INDEX IF NOT EXISTS idx_matches_player2 ON matches(player2);
		CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InsertMatch records an archived match.
// Returns the ID of the inserted record.
func (s *Store) InsertMatch(rec MatchRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO matches
		 (match_id, code, player1, player2, winner, end_reason, shots1, shots2, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.MatchID,
		rec.Code,
		rec.Player1,
		rec.Player2,
		rec.Winner,
		rec.EndReason,
		rec.Shots1,
		rec.Shots2,
		rec.DurationSecs,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// MatchByID retrieves a match by its match ID.
// Returns nil if no such match exists.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	var rec MatchRecord
	var createdAt any
	var winner sql.NullString

	err := s.db.QueryRow(
		`SELECT id, match_id, code, player1, player2,
		        winner, end_reason, shots1, shots2, duration_secs, created_at
		 FROM matches
		 WHERE match_id = ?`,
		matchID,
	).Scan(
		&rec.ID,
		&rec.MatchID,
		&rec.Code,
		&rec.Player1,
		&rec.Player2,
		&winner,
		&rec.EndReason,
		&rec.Shots1,
		&rec.Shots2,
		&rec.DurationSecs,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}

	if winner.Valid {
		rec.Winner = winner.String
	}
	rec.CreatedAt = parseDBTime(createdAt)

	return &rec, nil
}

// RecentMatches retrieves the most recently archived matches.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, match_id, code, player1, player2,
		        winner, end_reason, shots1, shots2, duration_secs, created_at
		 FROM matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// PlayerMatches retrieves match history for a specific player name.
func (s *Store) PlayerMatches(name string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, match_id, code, player1, player2,
		        winner, end_reason, shots1, shots2, duration_secs, created_at
		 FROM matches
		 WHERE player1 = ? OR player2 = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		name, name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query player matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// GetPlayerStats retrieves aggregated statistics for a player name.
func (s *Store) GetPlayerStats(name string) (*PlayerStats, error) {
	stats := &PlayerStats{Name: name}

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN end_reason = 'abandoned' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN player1 = ? THEN shots1 ELSE shots2 END), 0)
		 FROM matches WHERE player1 = ? OR player2 = ?`,
		name, name, name, name,
	).Scan(&stats.Played, &stats.Wins, &stats.Abandoned, &stats.TotalShots)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get player stats: %w", err)
	}
	stats.Losses = stats.Played - stats.Wins - stats.Abandoned

	// Get last played
	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM matches
		 WHERE player1 = ? OR player2 = ?
		 ORDER BY created_at DESC LIMIT 1`,
		name, name,
	).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseDBTime(lastPlayed)
	}

	return stats, nil
}

// SaveMatch implements match.Archiver.
// This adapter allows sessions to archive results without a direct storage dependency.
func (s *Store) SaveMatch(res match.Result) error {
	rec := MatchRecord{
		MatchID:      res.MatchID,
		Code:         res.Code,
		Player1:      res.Player1,
		Player2:      res.Player2,
		Winner:       res.Winner,
		EndReason:    res.EndReason,
		Shots1:       res.Shots1,
		Shots2:       res.Shots2,
		DurationSecs: res.DurationSecs,
	}
	_, err := s.InsertMatch(rec)
	return err
}

// Ensure Store implements Archiver
var _ match.Archiver = (*Store)(nil)

func collectMatches(rows *sql.Rows) ([]MatchRecord, error) {
	var records []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		var createdAt any
		var winner sql.NullString

		if err := rows.Scan(
			&rec.ID,
			&rec.MatchID,
			&rec.Code,
			&rec.Player1,
			&rec.Player2,
			&winner,
			&rec.EndReason,
			&rec.Shots1,
			&rec.Shots2,
			&rec.DurationSecs,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		if winner.Valid {
			rec.Winner = winner.String
		}
		rec.CreatedAt = parseDBTime(createdAt)

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// parseDBTime handles both time.Time and string datetime representations
// the driver may return.
func parseDBTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
