// ABOUTME: SystemUser store methods for gatekeeper
// ABOUTME: Account CRUD with soft deletion plus role assignment and scope lookup

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const userColumns = `id, first_name, last_name, middle_name, username, password, salt,
	phone, email, expire_session_delta, deleted, created_at, modified_at, last_login, last_logout`

// CreateUser inserts a new system user.
// Returns ErrDuplicateUsername if the username is already taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *SystemUser) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.ModifiedAt.IsZero() {
		u.ModifiedAt = now
	}

	query := `
		INSERT INTO system_users (first_name, last_name, middle_name, username, password, salt,
			phone, email, expire_session_delta, deleted, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		u.FirstName,
		u.LastName,
		nullString(u.MiddleName),
		u.Username,
		u.Password,
		u.Salt,
		nullString(u.Phone),
		nullString(u.Email),
		u.ExpireSessionDelta,
		u.Deleted,
		u.CreatedAt.Format(time.RFC3339),
		u.ModifiedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}

	s.logger.Debug("created user", "id", u.ID, "username", u.Username)
	return nil
}

// GetUser retrieves a user by ID, including soft-deleted rows.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*SystemUser, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM system_users WHERE id = ?`, id)
	return s.scanUser(row)
}

// GetUserByUsername retrieves a user by username, including soft-deleted rows.
// Callers decide how to treat the deleted flag.
// Returns ErrNotFound if no such username exists.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*SystemUser, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM system_users WHERE username = ?`, username)
	return s.scanUser(row)
}

// ListUsers returns non-deleted users ordered by id.
// limit <= 0 means no limit; offset < 0 is treated as 0.
func (s *SQLiteStore) ListUsers(ctx context.Context, limit, offset int) ([]*SystemUser, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM system_users WHERE deleted = 0 ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []*SystemUser
	for rows.Next() {
		u, err := s.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser rewrites the mutable fields of a user, including the
// password digest and salt. ModifiedAt is stamped here.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) UpdateUser(ctx context.Context, u *SystemUser) error {
	u.ModifiedAt = time.Now().UTC()

	query := `
		UPDATE system_users
		SET first_name = ?, last_name = ?, middle_name = ?, password = ?, salt = ?,
			phone = ?, email = ?, expire_session_delta = ?, modified_at = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		u.FirstName,
		u.LastName,
		nullString(u.MiddleName),
		u.Password,
		u.Salt,
		nullString(u.Phone),
		nullString(u.Email),
		u.ExpireSessionDelta,
		u.ModifiedAt.Format(time.RFC3339),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated user", "id", u.ID, "username", u.Username)
	return nil
}

// SoftDeleteUser flags a user as deleted without removing the row.
// Returns ErrNotFound if the user doesn't exist or is already deleted.
func (s *SQLiteStore) SoftDeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE system_users SET deleted = 1, modified_at = ? WHERE id = ? AND deleted = 0`,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Info("soft-deleted user", "id", id)
	return nil
}

// TouchLastLogin stamps the user's last successful login time.
func (s *SQLiteStore) TouchLastLogin(ctx context.Context, id int64, t time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE system_users SET last_login = ? WHERE id = ?`,
		t.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating last_login: %w", err)
	}
	return nil
}

// TouchLastLogout stamps the user's last logout time.
func (s *SQLiteStore) TouchLastLogout(ctx context.Context, id int64, t time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE system_users SET last_logout = ? WHERE id = ?`,
		t.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating last_logout: %w", err)
	}
	return nil
}

// AssignRole grants a role to a user by role name. Idempotent.
// Returns ErrNotFound if the role doesn't exist.
func (s *SQLiteStore) AssignRole(ctx context.Context, userID int64, roleName string) error {
	role, err := s.GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO system_user_roles (user_id, role_id) VALUES (?, ?)`,
		userID, role.ID)
	if err != nil {
		return fmt.Errorf("assigning role: %w", err)
	}

	s.logger.Debug("assigned role", "user_id", userID, "role", roleName)
	return nil
}

// RemoveRole revokes a role from a user by role name. Idempotent.
func (s *SQLiteStore) RemoveRole(ctx context.Context, userID int64, roleName string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM system_user_roles
		 WHERE user_id = ? AND role_id IN (SELECT id FROM roles WHERE name = ?)`,
		userID, roleName)
	if err != nil {
		return fmt.Errorf("removing role: %w", err)
	}
	return nil
}

// ListUserScopes returns the role names assigned to a user, ordered by name.
func (s *SQLiteStore) ListUserScopes(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.name FROM roles r
		 JOIN system_user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ?
		 ORDER BY r.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user scopes: %w", err)
	}
	defer rows.Close()

	var scopes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning scope: %w", err)
		}
		scopes = append(scopes, name)
	}
	return scopes, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for scanUser
type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanUser(row scanner) (*SystemUser, error) {
	var u SystemUser
	var middleName, phone, email sql.NullString
	var createdAt, modifiedAt string
	var lastLogin, lastLogout sql.NullString

	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&middleName,
		&u.Username,
		&u.Password,
		&u.Salt,
		&phone,
		&email,
		&u.ExpireSessionDelta,
		&u.Deleted,
		&createdAt,
		&modifiedAt,
		&lastLogin,
		&lastLogout,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.MiddleName = middleName.String
	u.Phone = phone.String
	u.Email = email.String
	u.CreatedAt = s.parseTime(createdAt, "created_at")
	u.ModifiedAt = s.parseTime(modifiedAt, "modified_at")
	u.LastLogin = s.parseNullTime(lastLogin, "last_login")
	u.LastLogout = s.parseNullTime(lastLogout, "last_logout")
	return &u, nil
}
