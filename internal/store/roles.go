// ABOUTME: Role store methods for gatekeeper authorization scopes
// ABOUTME: Roles are immutable reference data assigned to system users

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Well-known role names seeded at bootstrap
const (
	RoleRoot            = "root"
	RoleAdmin           = "admin"
	RoleOperator        = "operator"
	RoleSEO             = "SEO"
	RoleSecurityOfficer = "security_officer"
)

// DefaultRoles lists the roles created by Seed
var DefaultRoles = []string{
	RoleRoot,
	RoleAdmin,
	RoleOperator,
	RoleSEO,
	RoleSecurityOfficer,
}

// CreateRole creates a role with the given name. Idempotent - creating an
// existing role succeeds silently and returns the existing row.
func (s *SQLiteStore) CreateRole(ctx context.Context, name string) (*Role, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO roles (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("inserting role: %w", err)
	}

	return s.GetRoleByName(ctx, name)
}

// GetRoleByName retrieves a role by its unique name.
// Returns ErrNotFound if the role doesn't exist.
func (s *SQLiteStore) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	var r Role
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM roles WHERE name = ?`, name).
		Scan(&r.ID, &r.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying role: %w", err)
	}

	r.CreatedAt = s.parseTime(createdAt, "created_at")
	return &r, nil
}

// ListRoles returns all roles ordered by name.
func (s *SQLiteStore) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying roles: %w", err)
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		var r Role
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		r.CreatedAt = s.parseTime(createdAt, "created_at")
		roles = append(roles, &r)
	}
	return roles, rows.Err()
}
