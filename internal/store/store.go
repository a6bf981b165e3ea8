package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/qbacademy/qmscore/internal/clock"
)

// DefaultBusyTimeout is the lock-wait budget handed to SQLite. Generous on
// purpose: the UI issues rapid sequential saves that may overlap a log append,
// and waiting beats surfacing "database is locked" to the user.
const DefaultBusyTimeout = 30 * time.Second

// Options configure Open. The zero value is usable.
type Options struct {
	// BusyTimeout overrides DefaultBusyTimeout when positive.
	BusyTimeout time.Duration

	// Clock supplies timestamps for rows written by the core.
	// Defaults to the system clock.
	Clock clock.Clock

	// SkipBootstrap disables the default admin account insert. Used by the
	// audit logger's secondary handle, which must not race the primary one.
	SkipBootstrap bool
}

// Store provides durable storage for QMS records.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db    *sql.DB
	path  string
	clock clock.Clock
}

// Open creates or opens the SQLite database at the given path.
// Applies required pragmas, migrations and the admin bootstrap automatically.
//
// The database is configured with:
//   - WAL mode so readers proceed alongside the single writer
//   - NORMAL synchronous mode (balance durability/performance)
//   - a multi-second busy timeout for lock contention
//   - foreign key enforcement
//
// This function is idempotent - safe to call multiple times. The one
// destructive exception is the legacy form_data repair; see Migrate.
func Open(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY storms without per-call open/close overhead.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	timeout := opts.BusyTimeout
	if timeout <= 0 {
		timeout = DefaultBusyTimeout
	}
	if err := applyPragmas(db, timeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := Migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	cl := opts.Clock
	if cl == nil {
		cl = clock.System{}
	}

	s := &Store{db: db, path: path, clock: cl}
	if !opts.SkipBootstrap {
		if err := s.bootstrapAdmin(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer component methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Now returns the current time from the store's clock.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB, busyTimeout time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
