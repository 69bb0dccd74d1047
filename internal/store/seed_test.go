// ABOUTME: Tests for database seeding, the blacklist, and the audit log
// ABOUTME: Seeding must be idempotent and grant the root account its roles

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeHash(password string) (string, string) {
	return "digest-of-" + password, "STATICSALT"
}

func TestStore_Seed(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx, fakeHash))

	roles, err := s.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, len(DefaultRoles))

	root, err := s.GetUserByUsername(ctx, SeedRootUsername)
	require.NoError(t, err)
	assert.Equal(t, "digest-of-123456", root.Password)
	assert.Equal(t, int64(86400), root.ExpireSessionDelta)

	scopes, err := s.ListUserScopes(ctx, root.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{RoleRoot, RoleAdmin, RoleSecurityOfficer}, scopes)
}

func TestStore_Seed_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx, fakeHash))
	require.NoError(t, s.Seed(ctx, fakeHash))

	users, err := s.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	roles, err := s.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, len(DefaultRoles))
}

func TestStore_BlackList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := testUser("officer")
	require.NoError(t, s.CreateUser(ctx, u))

	e := &BlackListEntry{VisitorName: "John Intruder", Reason: "forged pass", AddedBy: &u.ID}
	require.NoError(t, s.AddBlackListEntry(ctx, e))
	assert.NotZero(t, e.ID)

	entries, err := s.ListBlackList(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "John Intruder", entries[0].VisitorName)
	require.NotNil(t, entries[0].AddedBy)
	assert.Equal(t, u.ID, *entries[0].AddedBy)

	require.NoError(t, s.DeleteBlackListEntry(ctx, e.ID))
	assert.ErrorIs(t, s.DeleteBlackListEntry(ctx, e.ID), ErrNotFound)

	entries, err = s.ListBlackList(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_AuditLog(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	e := &AuditEntry{Actor: "root", Action: AuditLogin, Detail: "test-agent"}
	require.NoError(t, s.AppendAudit(ctx, e))
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	require.NoError(t, s.AppendAudit(ctx, &AuditEntry{Actor: "root", Action: AuditLogout}))

	entries, err := s.ListAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "root", entries[0].Actor)
}
