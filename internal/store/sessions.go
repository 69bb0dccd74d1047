// ABOUTME: Session store methods for gatekeeper authentication
// ABOUTME: Sessions are created once, validated on every request, and lazily expired

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateSession inserts a new session row and fills in its generated ID.
// The cipher metadata (salt, nonce, tag) is written once here and never
// updated afterwards. A single INSERT keeps login atomic: either the full
// row exists or nothing does.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO sessions (user_id, created_at, expire_at, logout_at, user_agent, salt, nonce, tag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var userID any
	if sess.UserID != nil {
		userID = *sess.UserID
	}

	res, err := s.db.ExecContext(ctx, query,
		userID,
		sess.CreatedAt.UTC().Format(time.RFC3339),
		sess.ExpireAt.UTC().Format(time.RFC3339),
		nullTime(sess.LogoutAt),
		nullString(sess.UserAgent),
		sess.Salt,
		sess.Nonce,
		sess.Tag,
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	sess.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading session id: %w", err)
	}

	s.logger.Debug("created session", "id", sess.ID, "user_id", sess.UserID)
	return nil
}

// GetSession retrieves a session by ID.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStore) GetSession(ctx context.Context, id int64) (*Session, error) {
	query := `
		SELECT id, user_id, created_at, expire_at, logout_at, user_agent, salt, nonce, tag
		FROM sessions
		WHERE id = ?
	`

	var sess Session
	var userID sql.NullInt64
	var createdAt, expireAt string
	var logoutAt, userAgent sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sess.ID,
		&userID,
		&createdAt,
		&expireAt,
		&logoutAt,
		&userAgent,
		&sess.Salt,
		&sess.Nonce,
		&sess.Tag,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if userID.Valid {
		sess.UserID = &userID.Int64
	}
	sess.CreatedAt = s.parseTime(createdAt, "created_at")
	sess.ExpireAt = s.parseTime(expireAt, "expire_at")
	sess.LogoutAt = s.parseNullTime(logoutAt, "logout_at")
	sess.UserAgent = userAgent.String
	return &sess, nil
}

// TouchLogout stamps the session's logout time. The only permitted
// mutation of a session after creation.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStore) TouchLogout(ctx context.Context, id int64, t time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET logout_at = ? WHERE id = ?`,
		t.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating logout_at: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking logout result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("stamped session logout", "id", id)
	return nil
}

// CountSessions returns the total number of session rows. Used by tests
// to assert that failed logins leave no partial sessions behind.
func (s *SQLiteStore) CountSessions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}
