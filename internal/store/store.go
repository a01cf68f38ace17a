// Package store provides storage backends for the ShowDirector event log.
//
// It includes an in-memory store plus SQLite and PostgreSQL backends that record
// generated events and how each one was resolved.
package store

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/BTreeMap/ShowDirector/internal/models"
)

// Store persists the event log of one or more sessions.
type Store interface {
	SaveEvents(sessionID string, events []models.GameEvent) error
	ListEvents(sessionID string) ([]models.GameEvent, error)
	SaveResolution(r models.Resolution) error
	ListResolutions(sessionID string) ([]models.Resolution, error)
	Close() error
}

// Opts holds backend configuration.
type Opts struct {
	DSN string
}

// Option configures a backend.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType returns "postgres" for PostgreSQL connection strings and "sqlite" otherwise.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// Open picks a backend from the DSN: none means in-memory.
func Open(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Debug("store.Open: no DSN, using in-memory store")
		return NewInMemoryStore(), nil
	}
	if DetectDSNType(cfg.DSN) == "postgres" {
		return NewPostgresStore(opts...)
	}
	return NewSQLiteStore(opts...)
}

// InMemoryStore keeps the event log in process memory.
type InMemoryStore struct {
	mu          sync.RWMutex
	events      map[string][]models.GameEvent
	resolutions map[string][]models.Resolution
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		events:      make(map[string][]models.GameEvent),
		resolutions: make(map[string][]models.Resolution),
	}
}

func (s *InMemoryStore) SaveEvents(sessionID string, events []models.GameEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[sessionID] = append(s.events[sessionID], events...)
	return nil
}

func (s *InMemoryStore) ListEvents(sessionID string) ([]models.GameEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events[sessionID]), nil
}

func (s *InMemoryStore) SaveResolution(r models.Resolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolutions[r.SessionID] = append(s.resolutions[r.SessionID], r)
	return nil
}

func (s *InMemoryStore) ListResolutions(sessionID string) ([]models.Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.resolutions[sessionID]), nil
}

func (s *InMemoryStore) Close() error { return nil }
