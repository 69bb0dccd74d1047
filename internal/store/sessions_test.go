// ABOUTME: Tests for session persistence, expiry sentinel, and logout stamping
// ABOUTME: Also covers the SET NULL behavior when the owning user disappears

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(userID int64, expireAt time.Time) *Session {
	return &Session{
		UserID:    &userID,
		ExpireAt:  expireAt,
		UserAgent: "test-agent",
		Salt:      "c2FsdA==",
		Nonce:     "bm9uY2U=",
		Tag:       "dGFn",
	}
}

func TestStore_CreateAndGetSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := testUser("alice")
	require.NoError(t, s.CreateUser(ctx, u))

	expire := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	sess := testSession(u.ID, expire)
	require.NoError(t, s.CreateSession(ctx, sess))
	assert.NotZero(t, sess.ID)

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.UserID)
	assert.Equal(t, u.ID, *got.UserID)
	assert.True(t, got.ExpireAt.Equal(expire))
	assert.Equal(t, "test-agent", got.UserAgent)
	assert.Equal(t, "c2FsdA==", got.Salt)
	assert.Equal(t, "bm9uY2U=", got.Nonce)
	assert.Equal(t, "dGFn", got.Tag)
	assert.Nil(t, got.LogoutAt)
}

func TestStore_GetSession_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetSession(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Session_NeverExpiresSentinel(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := testUser("bob")
	require.NoError(t, s.CreateUser(ctx, u))

	sess := testSession(u.ID, NeverExpires)
	require.NoError(t, s.CreateSession(ctx, sess))

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, got.ExpireAt.Equal(NeverExpires), "sentinel must survive the round-trip")
}

func TestStore_TouchLogout(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := testUser("carol")
	require.NoError(t, s.CreateUser(ctx, u))

	sess := testSession(u.ID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, s.CreateSession(ctx, sess))

	logout := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.TouchLogout(ctx, sess.ID, logout))

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LogoutAt)
	assert.True(t, got.LogoutAt.Equal(logout))

	assert.ErrorIs(t, s.TouchLogout(ctx, 9999, logout), ErrNotFound)
}

func TestStore_SessionSurvivesHardUserDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := testUser("dave")
	require.NoError(t, s.CreateUser(ctx, u))

	sess := testSession(u.ID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, s.CreateSession(ctx, sess))

	// Physical delete is not part of the API, but the schema must
	// still null the owner rather than drop the session
	_, err := s.db.ExecContext(ctx, `DELETE FROM system_users WHERE id = ?`, u.ID)
	require.NoError(t, err)

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UserID)
}

func TestStore_CountSessions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := testUser("erin")
	require.NoError(t, s.CreateUser(ctx, u))

	n, err := s.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.CreateSession(ctx, testSession(u.ID, NeverExpires)))
	n, err = s.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
