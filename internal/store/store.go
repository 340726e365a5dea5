// Package store provides SQLite persistence for the story ledger and the item cache.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// memorySeq names in-memory databases so two stores opened in the same
// process never share tables.
var memorySeq atomic.Int64

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
// Multi-row writes run inside a single transaction while holding the write
// lock, so readers see either the state before a write or the state after it.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// Open creates a new Store with the given database path and applies any
// pending schema migrations.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	inMemory := dbPath == ":memory:"
	if inMemory {
		// Shared cache so all connections in the pool see the same database.
		connStr = fmt.Sprintf("file:hnreader-mem-%d?mode=memory&cache=shared", memorySeq.Add(1))
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// For in-memory databases, limit to 1 connection to avoid issues
	// with multiple connections getting different databases
	if inMemory {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if !inMemory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Migrate applies all pending migrations to db.
// Returns nil when the schema is already current.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	// Closing the migrator would close db through the driver, so only the
	// source is released here.
	defer src.Close()

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
