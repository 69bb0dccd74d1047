// ABOUTME: Login and logout handlers issuing and revoking session cookies
// ABOUTME: POST /auth returns the token/session/expire_at triple as cookies and body

package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/asbp/gatekeeper/internal/auth"
)

// LoginRequest is the JSON request body for POST /auth.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the JSON response for POST /auth. The same three
// values are also set as cookies.
type LoginResponse struct {
	Token    string `json:"token"`
	Session  int64  `json:"session"`
	ExpireAt string `json:"expire_at"`
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	env, session, err := s.auth.Login(r.Context(), req.Username, req.Password, r.UserAgent())
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			writeError(w, http.StatusUnauthorized, "authentication failed")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token := env.Token()
	expireAt := auth.ExpireAtString(session)

	setAuthCookie(w, auth.CookieToken, token)
	setAuthCookie(w, auth.CookieSession, strconv.FormatInt(session.ID, 10))
	setAuthCookie(w, auth.CookieExpireAt, expireAt)

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		Session:  session.ID,
		ExpireAt: expireAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	identity := auth.MustFromContext(r.Context())
	if err := s.auth.Logout(r.Context(), identity); err != nil {
		s.logger.Error("logout failed", "session_id", identity.Session.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	clearAuthCookie(w, auth.CookieToken)
	clearAuthCookie(w, auth.CookieSession)
	clearAuthCookie(w, auth.CookieExpireAt)

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func setAuthCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
