// ABOUTME: AuthService orchestrating credential checks, token issuance, and validation
// ABOUTME: Implements the Issued -> Valid -> (Expired | Revoked) session lifecycle

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asbp/gatekeeper/internal/store"
)

// UserStore provides access to system user accounts and their scopes.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*store.SystemUser, error)
	GetUserByUsername(ctx context.Context, username string) (*store.SystemUser, error)
	ListUserScopes(ctx context.Context, userID int64) ([]string, error)
	TouchLastLogin(ctx context.Context, id int64, t time.Time) error
	TouchLastLogout(ctx context.Context, id int64, t time.Time) error
}

// SessionStore provides session persistence and lookup.
type SessionStore interface {
	CreateSession(ctx context.Context, sess *store.Session) error
	GetSession(ctx context.Context, id int64) (*store.Session, error)
	TouchLogout(ctx context.Context, id int64, t time.Time) error
}

// AuditLog records auth events. May be nil, in which case nothing is recorded.
type AuditLog interface {
	AppendAudit(ctx context.Context, e *store.AuditEntry) error
}

// Payload is the identity record sealed inside a session token.
type Payload struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Scopes   []string `json:"scopes"`
}

// Service verifies credentials, issues encrypted session tokens, and
// validates and authorizes requests. Stateless between calls apart from
// the injected stores.
type Service struct {
	users    UserStore
	sessions SessionStore
	audit    AuditLog
	cipher   *Cipher
	logger   *slog.Logger

	// now is the clock used for expiry decisions; tests override it.
	now func() time.Time
}

// NewService creates an auth service. audit may be nil.
func NewService(users UserStore, sessions SessionStore, audit AuditLog, cipher *Cipher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		audit:    audit,
		cipher:   cipher,
		logger:   logger.With("component", "auth"),
		now:      time.Now,
	}
}

// SetClock replaces the service clock. Test hook.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// dummySalt feeds the dummy verification on unknown usernames so the
// hashing work is done either way.
const dummySalt = "XXXXXXXXXX"

// Login verifies credentials and, on success, issues an encrypted token
// and persists a session. Unknown username, soft-deleted account, and
// wrong password all return the same ErrAuthenticationFailed so responses
// cannot be used to enumerate usernames.
func (s *Service) Login(ctx context.Context, username, password, userAgent string) (*Envelope, *store.Session, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same hashing work as the real comparison
			VerifyPassword(password, "", dummySalt)
			s.recordAudit(ctx, username, store.AuditLoginFailed, "unknown username")
			return nil, nil, ErrAuthenticationFailed
		}
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}

	if user.Deleted || !VerifyPassword(password, user.Password, user.Salt) {
		s.recordAudit(ctx, username, store.AuditLoginFailed, "bad credentials")
		return nil, nil, ErrAuthenticationFailed
	}

	scopes, err := s.users.ListUserScopes(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading user scopes: %w", err)
	}

	payload, err := json.Marshal(Payload{
		UserID:   user.ID,
		Username: user.Username,
		Scopes:   scopes,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("serializing payload: %w", err)
	}

	env, err := s.cipher.Encrypt(string(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("encrypting payload: %w", err)
	}

	now := s.now()
	expireAt := store.NeverExpires
	if user.ExpireSessionDelta > 0 {
		expireAt = now.Add(time.Duration(user.ExpireSessionDelta) * time.Second)
	}

	salt, nonce, tag := env.EncodedMeta()
	session := &store.Session{
		UserID:    &user.ID,
		CreatedAt: now.UTC(),
		ExpireAt:  expireAt,
		UserAgent: userAgent,
		Salt:      salt,
		Nonce:     nonce,
		Tag:       tag,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("creating session: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to stamp last login", "user_id", user.ID, "error", err)
	}
	s.recordAudit(ctx, username, store.AuditLogin, userAgent)

	s.logger.Info("issued session", "user_id", user.ID, "session_id", session.ID,
		"expires", expireAt.Format(TimeFormat))
	return env, session, nil
}

// Validate authenticates a request from its cookie triple: looks up the
// session, checks the persisted expiry against the current time, decrypts
// the client-held ciphertext with the persisted envelope metadata, and
// resolves the owning user with fresh scopes. Failed validation mutates
// nothing, so repeating it yields the same error.
func (s *Service) Validate(ctx context.Context, cookies *Cookies) (*Identity, error) {
	session, err := s.sessions.GetSession(ctx, cookies.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: session not found", ErrAuthenticationFailed)
		}
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	// The persisted expiry decides; the expire_at cookie is display-only.
	if !session.ExpireAt.After(s.now()) {
		return nil, fmt.Errorf("%w: session expired", ErrAuthenticationFailed)
	}
	if session.LogoutAt != nil {
		return nil, fmt.Errorf("%w: session revoked", ErrAuthenticationFailed)
	}

	env, err := DecodeEnvelope(cookies.Token, session.Salt, session.Nonce, session.Tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	plaintext, err := s.cipher.Decrypt(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	var payload Payload
	if err := json.Unmarshal([]byte(plaintext), &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", ErrAuthenticationFailed)
	}

	if session.UserID == nil {
		return nil, fmt.Errorf("%w: session owner deleted", ErrAuthenticationFailed)
	}
	user, err := s.users.GetUser(ctx, *session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: session owner not found", ErrAuthenticationFailed)
		}
		return nil, fmt.Errorf("looking up session owner: %w", err)
	}
	if user.Deleted {
		return nil, fmt.Errorf("%w: account disabled", ErrAuthenticationFailed)
	}

	scopes, err := s.users.ListUserScopes(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("loading user scopes: %w", err)
	}

	return &Identity{
		User:    user,
		Scopes:  scopes,
		Session: session,
		Payload: &payload,
	}, nil
}

// Authorize checks that the principal holds at least one of the required
// scopes. An empty requirement list is a programming error and fails
// closed with ErrScopesFailed.
func (s *Service) Authorize(userScopes []string, required ...string) error {
	if len(required) == 0 {
		return ErrScopesFailed
	}

	held := make(map[string]struct{}, len(userScopes))
	for _, scope := range userScopes {
		held[scope] = struct{}{}
	}
	for _, scope := range required {
		if _, ok := held[scope]; ok {
			return nil
		}
	}
	return ErrScopesFailed
}

// Logout revokes the identity's session and stamps the user's last logout.
// Revocation is terminal: the session never validates again.
func (s *Service) Logout(ctx context.Context, id *Identity) error {
	now := s.now()
	if err := s.sessions.TouchLogout(ctx, id.Session.ID, now); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	if err := s.users.TouchLastLogout(ctx, id.User.ID, now); err != nil {
		s.logger.Warn("failed to stamp last logout", "user_id", id.User.ID, "error", err)
	}
	s.recordAudit(ctx, id.User.Username, store.AuditLogout, "")

	s.logger.Info("revoked session", "user_id", id.User.ID, "session_id", id.Session.ID)
	return nil
}

// ExpireAtString formats a session expiry for the expire_at cookie.
func ExpireAtString(sess *store.Session) string {
	return sess.ExpireAt.Format(TimeFormat)
}

func (s *Service) recordAudit(ctx context.Context, actor string, action store.AuditAction, detail string) {
	if s.audit == nil {
		return
	}
	entry := &store.AuditEntry{Actor: actor, Action: action, Detail: detail}
	if err := s.audit.AppendAudit(ctx, entry); err != nil {
		s.logger.Warn("failed to append audit entry", "action", action, "error", err)
	}
}
