// Package storage provides SQLite-based persistence for save slots and level
// run history. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Save is one named save slot. Data holds the encoded session.
type Save struct {
	ID        string
	Name      string
	LevelID   string
	Paradox   float64
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Run is one finished level attempt.
type Run struct {
	ID           string
	LevelID      string
	Outcome      string // "completed", "failed", "abandoned"
	FinalParadox float64
	PeakTier     string
	Duration     float64 // seconds
	Player       string  // "local" or an SSH user
	CreatedAt    time.Time
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
		CREATE TABLE IF NOT EXISTS saves (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			level_id TEXT NOT NULL,
			paradox REAL NOT NULL DEFAULT 0,
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			level_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			final_paradox REAL NOT NULL DEFAULT 0,
			peak_tier TEXT NOT NULL,
			duration_secs REAL NOT NULL DEFAULT 0,
			player TEXT NOT NULL DEFAULT 'local',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_level_id ON runs(level_id);
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

// PutSave writes a save slot, replacing the slot's contents if the name is
// taken. The slot keeps its ID across overwrites.
func (s *Store) PutSave(name, levelID string, paradox float64, data []byte) (Save, error) {
	if name == "" {
		return Save{}, errors.New("storage: save name is empty")
	}
	_, err := s.db.Exec(
		`INSERT INTO saves (id, name, level_id, paradox, data)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   level_id = excluded.level_id,
		   paradox = excluded.paradox,
		   data = excluded.data,
		   updated_at = CURRENT_TIMESTAMP`,
		uuid.NewString(), name, levelID, paradox, data,
	)
	if err != nil {
		return Save{}, fmt.Errorf("storage: cannot write save %s: %w", name, err)
	}

	saved, err := s.GetSave(name)
	if err != nil {
		return Save{}, err
	}
	if saved == nil {
		return Save{}, fmt.Errorf("storage: save %s vanished after write", name)
	}
	return *saved, nil
}

// GetSave retrieves a save slot by name. Returns nil if it does not exist.
func (s *Store) GetSave(name string) (*Save, error) {
	var sv Save
	var createdAt, updatedAt any

	err := s.db.QueryRow(
		`SELECT id, name, level_id, paradox, data, created_at, updated_at
		 FROM saves WHERE name = ?`,
		name,
	).Scan(&sv.ID, &sv.Name, &sv.LevelID, &sv.Paradox, &sv.Data, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query save: %w", err)
	}

	sv.CreatedAt = parseTimestamp(createdAt)
	sv.UpdatedAt = parseTimestamp(updatedAt)
	return &sv, nil
}

// ListSaves returns every save slot without its data, newest first.
func (s *Store) ListSaves() ([]Save, error) {
	rows, err := s.db.Query(
		`SELECT id, name, level_id, paradox, created_at, updated_at
		 FROM saves
		 ORDER BY updated_at DESC, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query saves: %w", err)
	}
	defer rows.Close()

	var saves []Save
	for rows.Next() {
		var sv Save
		var createdAt, updatedAt any
		if err := rows.Scan(&sv.ID, &sv.Name, &sv.LevelID, &sv.Paradox, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sv.CreatedAt = parseTimestamp(createdAt)
		sv.UpdatedAt = parseTimestamp(updatedAt)
		saves = append(saves, sv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return saves, nil
}

// DeleteSave removes a save slot. It reports whether the slot existed.
func (s *Store) DeleteSave(name string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM saves WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("storage: cannot delete save: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot count deleted rows: %w", err)
	}
	return n > 0, nil
}

// RecordRun stores a finished level attempt and returns its ID.
func (s *Store) RecordRun(r Run) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("storage: cannot generate run ID: %w", err)
	}
	if r.Player == "" {
		r.Player = "local"
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, level_id, outcome, final_paradox, peak_tier, duration_secs, player)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), r.LevelID, r.Outcome, r.FinalParadox, r.PeakTier, r.Duration, r.Player,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot record run: %w", err)
	}
	return id.String(), nil
}

// RecentRuns retrieves the most recent runs of a level, newest first.
// An empty levelID returns runs of every level.
func (s *Store) RecentRuns(levelID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	// Run IDs are UUIDv7 and sort by creation time.
	rows, err := s.db.Query(
		`SELECT id, level_id, outcome, final_paradox, peak_tier, duration_secs, player, created_at
		 FROM runs
		 WHERE ? = '' OR level_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		levelID, levelID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt any
		if err := rows.Scan(&r.ID, &r.LevelID, &r.Outcome, &r.FinalParadox, &r.PeakTier, &r.Duration, &r.Player, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTimestamp(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// LevelStats contains aggregated statistics for a level.
type LevelStats struct {
	LevelID       string
	Runs          int
	Completed     int
	BestDuration  float64 // fastest completion, 0 if never completed
	LowestParadox float64 // calmest completion, 0 if never completed
	LastPlayed    time.Time
}

// GetLevelStats retrieves aggregated statistics for a level.
func (s *Store) GetLevelStats(levelID string) (*LevelStats, error) {
	stats := &LevelStats{LevelID: levelID}

	var best, lowest sql.NullFloat64
	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = 'completed' THEN 1 ELSE 0 END), 0),
		        MIN(CASE WHEN outcome = 'completed' THEN duration_secs END),
		        MIN(CASE WHEN outcome = 'completed' THEN final_paradox END),
		        MAX(created_at)
		 FROM runs WHERE level_id = ?`,
		levelID,
	).Scan(&stats.Runs, &stats.Completed, &best, &lowest, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}

	if best.Valid {
		stats.BestDuration = best.Float64
	}
	if lowest.Valid {
		stats.LowestParadox = lowest.Float64
	}
	stats.LastPlayed = parseTimestamp(lastPlayed)
	return stats, nil
}

// parseTimestamp handles the driver returning either time.Time or a string.
func parseTimestamp(v any) time.Time {
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
