// ABOUTME: Store entity types and shared errors for gatekeeper persistence
// ABOUTME: Defines SystemUser, Role, Session, BlackListEntry and sentinel errors

package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned when creating a user with a taken username
var ErrDuplicateUsername = errors.New("username already exists")

// NeverExpires is the expiry sentinel for sessions of users whose
// expire_session_delta is zero. Far enough in the future that it still
// formats with a four-digit year.
var NeverExpires = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// SystemUser represents an employee account that can authenticate.
// Users are soft-deleted: the Deleted flag is set and the row kept,
// since sessions and audit entries may reference it.
type SystemUser struct {
	ID                 int64
	FirstName          string
	LastName           string
	MiddleName         string // optional
	Username           string // unique
	Password           string // hex SHA-256 digest of password||salt
	Salt               string // alphanumeric hashing salt
	Phone              string
	Email              string
	ExpireSessionDelta int64 // session lifetime in seconds, 0 = never expires
	Deleted            bool
	CreatedAt          time.Time
	ModifiedAt         time.Time
	LastLogin          *time.Time
	LastLogout         *time.Time
}

// Role is a named scope checked against route requirements.
// Reference data: seeded at bootstrap, assigned to users via a join table.
type Role struct {
	ID        int64
	Name      string // unique, e.g. "root", "admin", "security_officer"
	CreatedAt time.Time
}

// Session binds a user to a time-bounded encrypted token.
// Salt, Nonce and Tag are the base64-encoded cipher envelope metadata;
// the ciphertext itself travels with the client and is never stored.
// Crypto material is immutable after creation.
type Session struct {
	ID        int64
	UserID    *int64 // nil after the owning user row is deleted
	CreatedAt time.Time
	ExpireAt  time.Time // NeverExpires for non-expiring sessions
	LogoutAt  *time.Time
	UserAgent string
	Salt      string
	Nonce     string
	Tag       string
}

// BlackListEntry records a visitor barred from receiving passes.
type BlackListEntry struct {
	ID          int64
	VisitorName string
	Reason      string
	AddedBy     *int64 // system user who added the entry
	CreatedAt   time.Time
}
