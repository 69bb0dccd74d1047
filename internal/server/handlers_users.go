// ABOUTME: Admin handlers for system user accounts and role reference data
// ABOUTME: Create hashes the password; update rewrites hash+salt; delete is soft

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/asbp/gatekeeper/internal/auth"
	"github.com/asbp/gatekeeper/internal/store"
)

// UserRequest is the JSON request body for creating and updating users.
// Password is required on create; on update an empty password keeps the
// existing credentials.
type UserRequest struct {
	FirstName          string   `json:"first_name"`
	LastName           string   `json:"last_name"`
	MiddleName         string   `json:"middle_name,omitempty"`
	Username           string   `json:"username"`
	Password           string   `json:"password,omitempty"`
	Phone              string   `json:"phone,omitempty"`
	Email              string   `json:"email,omitempty"`
	ExpireSessionDelta int64    `json:"expire_session_delta"`
	Scopes             []string `json:"scopes,omitempty"`
}

// UserResponse is the JSON shape of a user. Credentials never leave the server.
type UserResponse struct {
	ID                 int64    `json:"id"`
	FirstName          string   `json:"first_name"`
	LastName           string   `json:"last_name"`
	MiddleName         string   `json:"middle_name,omitempty"`
	Username           string   `json:"username"`
	Phone              string   `json:"phone,omitempty"`
	Email              string   `json:"email,omitempty"`
	ExpireSessionDelta int64    `json:"expire_session_delta"`
	Scopes             []string `json:"scopes"`
}

func (s *Server) userResponse(r *http.Request, u *store.SystemUser) UserResponse {
	scopes, err := s.store.ListUserScopes(r.Context(), u.ID)
	if err != nil {
		s.logger.Warn("failed to load user scopes", "user_id", u.ID, "error", err)
	}
	if scopes == nil {
		scopes = []string{}
	}
	return UserResponse{
		ID:                 u.ID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		MiddleName:         u.MiddleName,
		Username:           u.Username,
		Phone:              u.Phone,
		Email:              u.Email,
		ExpireSessionDelta: u.ExpireSessionDelta,
		Scopes:             scopes,
	}
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListUsers(w, r)
	case http.MethodPost:
		s.handleCreateUser(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := s.store.ListUsers(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, s.userResponse(r, u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "first_name, last_name, username and password required")
		return
	}

	digest, salt := auth.HashPassword(req.Password)
	user := &store.SystemUser{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		MiddleName:         req.MiddleName,
		Username:           req.Username,
		Password:           digest,
		Salt:               salt,
		Phone:              req.Phone,
		Email:              req.Email,
		ExpireSessionDelta: req.ExpireSessionDelta,
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			writeError(w, http.StatusConflict, "username already exists")
			return
		}
		s.logger.Error("failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	for _, scope := range req.Scopes {
		if err := s.store.AssignRole(r.Context(), user.ID, scope); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "unknown scope: "+scope)
				return
			}
			s.logger.Error("failed to assign role", "user_id", user.ID, "role", scope, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	s.recordAudit(r, store.AuditCreateUser, user.Username)
	writeJSON(w, http.StatusCreated, s.userResponse(r, user))
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/users/"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetUser(w, r, id)
	case http.MethodPut, http.MethodPatch:
		s.handleUpdateUser(w, r, id)
	case http.MethodDelete:
		s.handleDeleteUser(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, id int64) {
	user, err := s.store.GetUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get user", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user.Deleted {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, s.userResponse(r, user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, id int64) {
	var req UserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("failed to get user", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	user.MiddleName = req.MiddleName
	user.Phone = req.Phone
	user.Email = req.Email
	if req.ExpireSessionDelta >= 0 {
		user.ExpireSessionDelta = req.ExpireSessionDelta
	}
	if req.Password != "" {
		// Password change rewrites both digest and salt
		user.Password, user.Salt = auth.HashPassword(req.Password)
	}

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		s.logger.Error("failed to update user", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.recordAudit(r, store.AuditUpdateUser, user.Username)
	writeJSON(w, http.StatusOK, s.userResponse(r, user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.store.SoftDeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("failed to delete user", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.recordAudit(r, store.AuditDeleteUser, strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// RoleResponse is the JSON shape of a role.
type RoleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	roles, err := s.store.ListRoles(r.Context())
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		resp = append(resp, RoleResponse{ID: role.ID, Name: role.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

// recordAudit appends an audit entry attributed to the authenticated caller.
func (s *Server) recordAudit(r *http.Request, action store.AuditAction, detail string) {
	identity := auth.FromContext(r.Context())
	if identity == nil {
		return
	}
	entry := &store.AuditEntry{Actor: identity.User.Username, Action: action, Detail: detail}
	if err := s.store.AppendAudit(r.Context(), entry); err != nil {
		s.logger.Warn("failed to append audit entry", "action", action, "error", err)
	}
}
