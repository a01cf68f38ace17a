// Package store provides storage backends for ShowDirector.
//
// This file implements an SQLite-backed event log.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/BTreeMap/ShowDirector/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully", "path", dsn)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveEvents(sessionID string, events []models.GameEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range events {
		optionsJSON, err := encodeOptions(e.Options)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO game_events (id, session_id, system, title, description, severity, expires_at, options_json, correct_action)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, sessionID, string(e.System), e.Title, e.Description, e.Severity, e.ExpiresAt.UnixNano(), optionsJSON, e.CorrectAction)
		if err != nil {
			slog.Error("SQLiteStore SaveEvents insert failed", "error", err, "event_id", e.ID)
			return fmt.Errorf("failed to insert event %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	slog.Debug("SQLiteStore SaveEvents succeeded", "session_id", sessionID, "count", len(events))
	return nil
}

func (s *SQLiteStore) ListEvents(sessionID string) ([]models.GameEvent, error) {
	rows, err := s.db.Query(`SELECT id, system, title, description, severity, expires_at, options_json, correct_action
		FROM game_events WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		slog.Error("SQLiteStore ListEvents query failed", "error", err)
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *SQLiteStore) SaveResolution(r models.Resolution) error {
	_, err := s.db.Exec(`INSERT INTO resolutions (session_id, event_id, kind, option_label, stress_delta, score_delta, time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.EventID, string(r.Kind), nilIfEmpty(r.OptionLabel), r.StressDelta, r.ScoreDelta, r.Time.UnixNano())
	if err != nil {
		slog.Error("SQLiteStore SaveResolution failed", "error", err, "event_id", r.EventID)
		return fmt.Errorf("failed to insert resolution for %s: %w", r.EventID, err)
	}
	slog.Debug("SQLiteStore SaveResolution succeeded", "event_id", r.EventID, "kind", r.Kind)
	return nil
}

func (s *SQLiteStore) ListResolutions(sessionID string) ([]models.Resolution, error) {
	rows, err := s.db.Query(`SELECT session_id, event_id, kind, option_label, stress_delta, score_delta, time
		FROM resolutions WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		slog.Error("SQLiteStore ListResolutions query failed", "error", err)
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer rows.Close()
	return scanResolutions(rows)
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("SQLiteStore Close invoked")
	return s.db.Close()
}
