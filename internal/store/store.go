package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added UNIQUE index on commands(command_id, day)
const currentSchemaVersion = 1

// State is the lifecycle state of a Store handle.
//
// Legal transitions:
//
//	open   -> closed     (Close)
//	closed -> open       (Reopen)
//	open   -> destroyed  (Destroy)
//	closed -> destroyed  (Destroy)
//
// Destroyed is terminal.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Store handle.
type Option func(*Store)

// WithOnBlocked sets the callback invoked when another owner wants to destroy
// the database this handle points at. The callback is expected to Close the
// handle. The default closes it.
func WithOnBlocked(fn func(*Store)) Option {
	return func(s *Store) {
		s.onBlocked = fn
	}
}

// Store provides durable storage for invocation records.
// Uses SQLite with WAL mode for concurrent read access.
//
// Thread-safety: all methods are safe for concurrent use. Data operations
// hold a read lock for their whole duration, so Close waits for in-flight
// calls instead of pulling the connection out from under them.
type Store struct {
	mu    sync.RWMutex
	db    *sql.DB
	state State
	path  string

	dir            *Directory
	installationID string
	onBlocked      func(*Store)
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:    db,
		state: StateOpen,
		path:  path,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func openDB(path string) (*sql.DB, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

// Path returns the database path this handle was opened with.
func (s *Store) Path() string {
	return s.path
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Close releases the handle. Closing a closed or destroyed handle is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.state = StateClosed
	s.mu.Unlock()

	if s.dir != nil {
		s.dir.release(s)
	}
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// Reopen reopens a closed handle. Reopening an open handle is a no-op;
// a destroyed handle cannot be reopened.
func (s *Store) Reopen() error {
	s.mu.Lock()
	switch s.state {
	case StateOpen:
		s.mu.Unlock()
		return nil
	case StateDestroyed:
		s.mu.Unlock()
		return unavailable("reopen", StateDestroyed)
	}

	db, err := openDB(s.path)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("reopen store: %w", err)
	}
	s.db = db
	s.state = StateOpen
	s.mu.Unlock()

	if s.dir != nil {
		s.dir.register(s.installationID, s)
	}
	return nil
}

// Destroy releases the handle and discards the underlying database.
//
// When the handle was obtained from a Directory, every other open handle to
// the same installation is asked to close first (see Directory.Destroy).
func (s *Store) Destroy(ctx context.Context) error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("destroy store: %w", err)
	}

	if s.dir != nil {
		if err := s.dir.Destroy(ctx, s.installationID); err != nil {
			return err
		}
		s.markDestroyed()
		return nil
	}

	s.markDestroyed()
	if err := removeDatabaseFiles(s.path); err != nil {
		return fmt.Errorf("destroy store: %w", err)
	}
	return nil
}

// blocked runs the blocking-close callback for this handle.
func (s *Store) blocked() {
	if s.onBlocked != nil {
		s.onBlocked(s)
		return
	}
	_ = s.Close()
}

func (s *Store) markDestroyed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateOpen && s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
	s.state = StateDestroyed
}

// acquire takes the read lock and returns the connection if the handle is
// open. The caller must call s.mu.RUnlock when done (only on success).
func (s *Store) acquire(op string) (*sql.DB, error) {
	s.mu.RLock()
	if s.state != StateOpen {
		state := s.state
		s.mu.RUnlock()
		return nil, unavailable(op, state)
	}
	return s.db, nil
}

// removeDatabaseFiles deletes the SQLite file and its WAL companions.
// In-memory databases have nothing on disk.
func removeDatabaseFiles(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 folds duplicate (command_id, day) rows into the row with the
// lowest record_id and then adds the UNIQUE index that ingestion relies on.
func migrateToV1(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate to v1: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`UPDATE commands SET
			hotkey_count = (
				SELECT SUM(c.hotkey_count) FROM commands c
				WHERE c.command_id = commands.command_id AND c.day = commands.day
			),
			palette_count = (
				SELECT SUM(c.palette_count) FROM commands c
				WHERE c.command_id = commands.command_id AND c.day = commands.day
			)
		WHERE record_id IN (
			SELECT MIN(record_id) FROM commands
			GROUP BY command_id, day
			HAVING COUNT(*) > 1
		)`,
		`DELETE FROM commands WHERE record_id NOT IN (
			SELECT MIN(record_id) FROM commands GROUP BY command_id, day
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_commands_command_day
			ON commands(command_id, day)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate to v1: commit: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	db, err := s.acquire("verify pragma")
	if err != nil {
		return err
	}
	defer s.mu.RUnlock()

	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
