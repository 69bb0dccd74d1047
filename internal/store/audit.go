// ABOUTME: Audit log entity and store methods for tracking auth and admin actions
// ABOUTME: Records logins, logouts, and account mutations for operators

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents an auditable action.
type AuditAction string

const (
	AuditLogin           AuditAction = "login"
	AuditLoginFailed     AuditAction = "login_failed"
	AuditLogout          AuditAction = "logout"
	AuditCreateUser      AuditAction = "create_user"
	AuditUpdateUser      AuditAction = "update_user"
	AuditDeleteUser      AuditAction = "delete_user"
	AuditAddBlackList    AuditAction = "add_blacklist"
	AuditRemoveBlackList AuditAction = "remove_blacklist"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID        string // UUID v4
	Actor     string // username (or attempted username) performing the action
	Action    AuditAction
	Detail    string // free-form context, e.g. target id or user agent
	CreatedAt time.Time
}

// AppendAudit appends a new entry to the audit log.
// Generates ID and CreatedAt if not set.
func (s *SQLiteStore) AppendAudit(ctx context.Context, e *AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, actor, action, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Actor, string(e.Action), nullString(e.Detail),
		e.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	return nil
}

// ListAudit returns the most recent audit entries, newest first.
// limit <= 0 defaults to 100.
func (s *SQLiteStore) ListAudit(ctx context.Context, limit int) ([]*AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, actor, action, detail, created_at FROM audit_log ORDER BY created_at DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		var detail sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Actor, (*string)(&e.Action), &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.Detail = detail.String
		e.CreatedAt = s.parseTime(createdAt, "created_at")
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
