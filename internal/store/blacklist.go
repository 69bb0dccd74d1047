// ABOUTME: Blacklist store methods for barred visitors
// ABOUTME: Simple append/list/delete over the black_list table

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AddBlackListEntry inserts a new blacklist entry and fills in its ID.
func (s *SQLiteStore) AddBlackListEntry(ctx context.Context, e *BlackListEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var addedBy any
	if e.AddedBy != nil {
		addedBy = *e.AddedBy
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO black_list (visitor_name, reason, added_by, created_at) VALUES (?, ?, ?, ?)`,
		e.VisitorName, e.Reason, addedBy, e.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting blacklist entry: %w", err)
	}

	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading blacklist entry id: %w", err)
	}

	s.logger.Info("added blacklist entry", "id", e.ID, "visitor", e.VisitorName)
	return nil
}

// ListBlackList returns all blacklist entries, newest first.
func (s *SQLiteStore) ListBlackList(ctx context.Context) ([]*BlackListEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, visitor_name, reason, added_by, created_at FROM black_list ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying blacklist: %w", err)
	}
	defer rows.Close()

	var entries []*BlackListEntry
	for rows.Next() {
		var e BlackListEntry
		var addedBy sql.NullInt64
		var createdAt string
		if err := rows.Scan(&e.ID, &e.VisitorName, &e.Reason, &addedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning blacklist entry: %w", err)
		}
		if addedBy.Valid {
			e.AddedBy = &addedBy.Int64
		}
		e.CreatedAt = s.parseTime(createdAt, "created_at")
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// DeleteBlackListEntry removes a blacklist entry.
// Returns ErrNotFound if the entry doesn't exist.
func (s *SQLiteStore) DeleteBlackListEntry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM black_list WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting blacklist entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Info("deleted blacklist entry", "id", id)
	return nil
}
