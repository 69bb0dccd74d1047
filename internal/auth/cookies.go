// ABOUTME: Authorization cookie extraction and validation
// ABOUTME: Parses the token/session/expire_at cookie triple from requests

package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Cookie names carrying the session credentials.
const (
	CookieToken    = "token"
	CookieSession  = "session"
	CookieExpireAt = "expire_at"
)

// TimeFormat is the fixed format of the expire_at cookie (DD-MM-YYYY HH:MM:SS).
const TimeFormat = "02-01-2006 15:04:05"

// Cookies is the validated authorization cookie triple. ExpireAt is
// client-supplied and display-only; the expiry decision always uses the
// server-persisted session row, so a forged cookie cannot extend a session.
type Cookies struct {
	Token     string
	SessionID int64
	ExpireAt  time.Time
}

// ParseCookies extracts and validates the three authorization cookies from
// a request. Returns ErrMissingAuthorizationCookie if any cookie is absent
// or the expire_at value is malformed, and ErrAuthenticationFailed if the
// session cookie is not a decimal integer.
func ParseCookies(r *http.Request) (*Cookies, error) {
	token, err := cookieValue(r, CookieToken)
	if err != nil {
		return nil, err
	}
	sessionRaw, err := cookieValue(r, CookieSession)
	if err != nil {
		return nil, err
	}
	expireRaw, err := cookieValue(r, CookieExpireAt)
	if err != nil {
		return nil, err
	}

	sessionID, err := strconv.ParseInt(sessionRaw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: session cookie is not an integer", ErrAuthenticationFailed)
	}

	expireAt, err := time.Parse(TimeFormat, expireRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed expire_at cookie", ErrMissingAuthorizationCookie)
	}

	return &Cookies{
		Token:     token,
		SessionID: sessionID,
		ExpireAt:  expireAt,
	}, nil
}

func cookieValue(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingAuthorizationCookie, name)
	}
	return c.Value, nil
}
