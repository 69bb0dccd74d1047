// ABOUTME: Database seeding for gatekeeper reference data
// ABOUTME: Creates the default roles and the root account on first start

package store

import (
	"context"
	"errors"
	"fmt"
)

// Default root account. The password must be changed after first login;
// it exists so a fresh install has an admin to create real accounts with.
const (
	SeedRootUsername = "root"
	SeedRootPassword = "123456"
)

// PasswordHashFunc produces a digest and salt for a plaintext password.
// Matches auth.HashPassword; taken as a parameter so the store does not
// depend on the auth package.
type PasswordHashFunc func(password string) (digest, salt string)

// Seed creates the default roles and, if absent, the root user holding
// the root, admin, and security_officer roles. Idempotent.
func (s *SQLiteStore) Seed(ctx context.Context, hash PasswordHashFunc) error {
	for _, name := range DefaultRoles {
		if _, err := s.CreateRole(ctx, name); err != nil {
			return fmt.Errorf("seeding role %q: %w", name, err)
		}
	}

	_, err := s.GetUserByUsername(ctx, SeedRootUsername)
	if err == nil {
		return nil // already seeded
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("checking root user: %w", err)
	}

	digest, salt := hash(SeedRootPassword)
	root := &SystemUser{
		FirstName:          "System",
		LastName:           "Root",
		Username:           SeedRootUsername,
		Password:           digest,
		Salt:               salt,
		ExpireSessionDelta: 86400,
	}
	if err := s.CreateUser(ctx, root); err != nil {
		return fmt.Errorf("seeding root user: %w", err)
	}

	for _, role := range []string{RoleRoot, RoleAdmin, RoleSecurityOfficer} {
		if err := s.AssignRole(ctx, root.ID, role); err != nil {
			return fmt.Errorf("assigning seed role %q: %w", role, err)
		}
	}

	s.logger.Info("seeded default roles and root user", "user_id", root.ID)
	return nil
}
