// ABOUTME: In-memory UserStore and SessionStore fakes for auth tests
// ABOUTME: Mirrors the store contracts including ErrNotFound semantics

package auth

import (
	"context"
	"time"

	"github.com/asbp/gatekeeper/internal/store"
)

type mockUserStore struct {
	users  map[int64]*store.SystemUser
	scopes map[int64][]string

	lastLogin  map[int64]time.Time
	lastLogout map[int64]time.Time
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:      make(map[int64]*store.SystemUser),
		scopes:     make(map[int64][]string),
		lastLogin:  make(map[int64]time.Time),
		lastLogout: make(map[int64]time.Time),
	}
}

func (m *mockUserStore) add(u *store.SystemUser, scopes ...string) {
	m.users[u.ID] = u
	m.scopes[u.ID] = scopes
}

func (m *mockUserStore) GetUser(_ context.Context, id int64) (*store.SystemUser, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) GetUserByUsername(_ context.Context, username string) (*store.SystemUser, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) ListUserScopes(_ context.Context, userID int64) ([]string, error) {
	return m.scopes[userID], nil
}

func (m *mockUserStore) TouchLastLogin(_ context.Context, id int64, t time.Time) error {
	m.lastLogin[id] = t
	return nil
}

func (m *mockUserStore) TouchLastLogout(_ context.Context, id int64, t time.Time) error {
	m.lastLogout[id] = t
	return nil
}

type mockSessionStore struct {
	sessions map[int64]*store.Session
	nextID   int64
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[int64]*store.Session), nextID: 1}
}

func (m *mockSessionStore) CreateSession(_ context.Context, sess *store.Session) error {
	sess.ID = m.nextID
	m.nextID++
	copied := *sess
	m.sessions[sess.ID] = &copied
	return nil
}

func (m *mockSessionStore) GetSession(_ context.Context, id int64) (*store.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (m *mockSessionStore) TouchLogout(_ context.Context, id int64, t time.Time) error {
	sess, ok := m.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	sess.LogoutAt = &t
	return nil
}
