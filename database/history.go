package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"drive-linkbot/models"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
	"github.com/rs/zerolog"
)

// History records the outcome of every publish cycle in a SQLite database.
type History struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenHistory opens (creating if needed) the cycle history database at dbPath.
func OpenHistory(dbPath string, log zerolog.Logger) (*History, error) {
	// Ensure the directory for the database file exists.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createRunsTable(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cycle_runs table: %w", err)
	}

	log = log.With().Str("component", "history").Logger()
	log.Info().Str("path", dbPath).Msg("Connected to history database")
	return &History{db: db, log: log}, nil
}

func createRunsTable(db *sql.DB) error {
	query := `
    CREATE TABLE IF NOT EXISTS cycle_runs (
        run_id TEXT PRIMARY KEY,
        guild_id TEXT NOT NULL,
        manual INTEGER NOT NULL,
        started_at INTEGER NOT NULL,
        finished_at INTEGER NOT NULL,
        folders INTEGER NOT NULL,
        pages INTEGER NOT NULL,
        error TEXT NOT NULL DEFAULT ''
    );
    CREATE INDEX IF NOT EXISTS idx_cycle_runs_guild ON cycle_runs(guild_id, finished_at);`
	_, err := db.Exec(query)
	return err
}

// Record stores run.
func (h *History) Record(run models.Run) error {
	var errText string
	if run.Err != nil {
		errText = run.Err.Error()
	}
	_, err := h.db.Exec(
		`INSERT OR REPLACE INTO cycle_runs (run_id, guild_id, manual, started_at, finished_at, folders, pages, error)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.GuildID, run.Manual, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.Folders, run.Pages, errText,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// ObserveCycle records run, logging instead of returning a failure.
func (h *History) ObserveCycle(run models.Run) {
	if err := h.Record(run); err != nil {
		h.log.Error().Err(err).Str("guild_id", run.GuildID).Msg("Could not record cycle")
	}
}

// LastRun returns the most recent run for guildID, or nil if there is none.
func (h *History) LastRun(guildID string) (*models.RunRecord, error) {
	row := h.db.QueryRow(
		`SELECT run_id, guild_id, manual, started_at, finished_at, folders, pages, error
         FROM cycle_runs WHERE guild_id = ? ORDER BY finished_at DESC LIMIT 1`, guildID)

	var rec models.RunRecord
	var started, finished int64
	err := row.Scan(&rec.ID, &rec.GuildID, &rec.Manual, &started, &finished, &rec.Folders, &rec.Pages, &rec.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last run for guild %s: %w", guildID, err)
	}
	rec.StartedAt = time.UnixMilli(started)
	rec.FinishedAt = time.UnixMilli(finished)
	return &rec, nil
}

// Prune deletes runs that finished before cutoff and returns how many were removed.
func (h *History) Prune(cutoff time.Time) (int64, error) {
	res, err := h.db.Exec(`DELETE FROM cycle_runs WHERE finished_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune cycle history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// CleanupOldRuns prunes runs older than 31 days.
func (h *History) CleanupOldRuns() {
	n, err := h.Prune(time.Now().AddDate(0, 0, -31))
	if err != nil {
		h.log.Error().Err(err).Msg("Cleanup of cycle history failed")
		return
	}
	h.log.Info().Int64("removed", n).Msg("Cleaned up old cycle history")
}

func (h *History) Close() error {
	return h.db.Close()
}
