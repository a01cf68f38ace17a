// Package store provides storage backends for ShowDirector.
//
// This file implements a PostgreSQL-backed event log.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/BTreeMap/ShowDirector/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveEvents(sessionID string, events []models.GameEvent) error {
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
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, sessionID, string(e.System), e.Title, e.Description, e.Severity, e.ExpiresAt.UnixNano(), optionsJSON, e.CorrectAction)
		if err != nil {
			slog.Error("PostgresStore SaveEvents insert failed", "error", err, "event_id", e.ID)
			return fmt.Errorf("failed to insert event %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	slog.Debug("PostgresStore SaveEvents succeeded", "session_id", sessionID, "count", len(events))
	return nil
}

func (s *PostgresStore) ListEvents(sessionID string) ([]models.GameEvent, error) {
	rows, err := s.db.Query(`SELECT id, system, title, description, severity, expires_at, options_json, correct_action
		FROM game_events WHERE session_id = $1 ORDER BY seq`, sessionID)
	if err != nil {
		slog.Error("PostgresStore ListEvents query failed", "error", err)
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) SaveResolution(r models.Resolution) error {
	_, err := s.db.Exec(`INSERT INTO resolutions (session_id, event_id, kind, option_label, stress_delta, score_delta, time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.SessionID, r.EventID, string(r.Kind), nilIfEmpty(r.OptionLabel), r.StressDelta, r.ScoreDelta, r.Time.UnixNano())
	if err != nil {
		slog.Error("PostgresStore SaveResolution failed", "error", err, "event_id", r.EventID)
		return fmt.Errorf("failed to insert resolution for %s: %w", r.EventID, err)
	}
	slog.Debug("PostgresStore SaveResolution succeeded", "event_id", r.EventID, "kind", r.Kind)
	return nil
}

func (s *PostgresStore) ListResolutions(sessionID string) ([]models.Resolution, error) {
	rows, err := s.db.Query(`SELECT session_id, event_id, kind, option_label, stress_delta, score_delta, time
		FROM resolutions WHERE session_id = $1 ORDER BY seq`, sessionID)
	if err != nil {
		slog.Error("PostgresStore ListResolutions query failed", "error", err)
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer rows.Close()
	return scanResolutions(rows)
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("PostgresStore Close invoked")
	return s.db.Close()
}
