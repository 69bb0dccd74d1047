// ABOUTME: Sentinel errors for the authentication and authorization path
// ABOUTME: Maps the auth failure taxonomy onto HTTP status categories

package auth

import "errors"

// Auth errors. Handlers map these to HTTP statuses: missing or malformed
// cookies are the client's transport problem (400); everything else on the
// auth path is a uniform 401 so responses don't reveal which check failed.
var (
	// ErrAuthenticationFailed covers bad credentials and missing, expired,
	// or unverifiable sessions.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrScopesFailed means the principal authenticated but holds none of
	// the scopes the route requires.
	ErrScopesFailed = errors.New("permission denied")

	// ErrMissingAuthorizationCookie means the required cookie set is
	// absent or malformed.
	ErrMissingAuthorizationCookie = errors.New("authorization cookie not present")

	// ErrDecryption means envelope authentication failed or the envelope
	// is malformed. Never returned to callers of Validate directly; it is
	// wrapped into ErrAuthenticationFailed so cryptographic detail stays
	// internal.
	ErrDecryption = errors.New("decryption failed")
)
