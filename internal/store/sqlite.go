// ABOUTME: SQLite store for gatekeeper using modernc.org/sqlite
// ABOUTME: Opens the database, creates the schema, and provides scan helpers

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists users, roles, sessions, the blacklist, and the
// audit log in a single SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is created automatically if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS system_users (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name           TEXT NOT NULL,
			last_name            TEXT NOT NULL,
			middle_name          TEXT,
			username             TEXT NOT NULL UNIQUE,
			password             TEXT NOT NULL,
			salt                 TEXT NOT NULL,
			phone                TEXT,
			email                TEXT,
			expire_session_delta INTEGER NOT NULL DEFAULT 86400,
			deleted              INTEGER NOT NULL DEFAULT 0,
			created_at           TEXT NOT NULL,
			modified_at          TEXT NOT NULL,
			last_login           TEXT,
			last_logout          TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_system_users_username
			ON system_users(username);

		CREATE TABLE IF NOT EXISTS roles (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS system_user_roles (
			user_id INTEGER NOT NULL,
			role_id INTEGER NOT NULL,

			PRIMARY KEY (user_id, role_id),
			FOREIGN KEY (user_id) REFERENCES system_users(id) ON DELETE CASCADE,
			FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER,
			created_at TEXT NOT NULL,
			expire_at  TEXT NOT NULL,
			logout_at  TEXT,
			user_agent TEXT,
			salt       TEXT NOT NULL,
			nonce      TEXT NOT NULL,
			tag        TEXT NOT NULL,

			FOREIGN KEY (user_id) REFERENCES system_users(id) ON DELETE SET NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_user_id
			ON sessions(user_id);

		CREATE TABLE IF NOT EXISTS black_list (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_name TEXT NOT NULL,
			reason       TEXT NOT NULL,
			added_by     INTEGER,
			created_at   TEXT NOT NULL,

			FOREIGN KEY (added_by) REFERENCES system_users(id) ON DELETE SET NULL
		);

		CREATE TABLE IF NOT EXISTS audit_log (
			id         TEXT PRIMARY KEY,
			actor      TEXT NOT NULL,
			action     TEXT NOT NULL,
			detail     TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isConstraintViolation checks if an error is a SQLite constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// nullString converts empty strings to nil for nullable columns
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullTime converts a nil time pointer to nil, otherwise formats RFC3339
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses an RFC3339 timestamp column, logging on malformed values
func (s *SQLiteStore) parseTime(raw, column string) time.Time {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		s.logger.Warn("failed to parse timestamp column", "column", column, "error", err)
		return time.Time{}
	}
	return parsed
}

// parseNullTime parses a nullable RFC3339 timestamp column
func (s *SQLiteStore) parseNullTime(raw sql.NullString, column string) *time.Time {
	if !raw.Valid {
		return nil
	}
	t := s.parseTime(raw.String, column)
	if t.IsZero() {
		return nil
	}
	return &t
}
