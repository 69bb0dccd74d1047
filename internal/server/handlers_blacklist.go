// ABOUTME: Handlers for the visitor blacklist, scoped to security staff
// ABOUTME: List, append, and remove barred visitors

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/asbp/gatekeeper/internal/auth"
	"github.com/asbp/gatekeeper/internal/store"
)

// BlackListRequest is the JSON request body for POST /blacklist.
type BlackListRequest struct {
	VisitorName string `json:"visitor_name"`
	Reason      string `json:"reason"`
}

// BlackListResponse is the JSON shape of a blacklist entry.
type BlackListResponse struct {
	ID          int64  `json:"id"`
	VisitorName string `json:"visitor_name"`
	Reason      string `json:"reason"`
	AddedBy     *int64 `json:"added_by,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func blackListResponse(e *store.BlackListEntry) BlackListResponse {
	return BlackListResponse{
		ID:          e.ID,
		VisitorName: e.VisitorName,
		Reason:      e.Reason,
		AddedBy:     e.AddedBy,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleBlackList(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := s.store.ListBlackList(r.Context())
		if err != nil {
			s.logger.Error("failed to list blacklist", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp := make([]BlackListResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, blackListResponse(e))
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var req BlackListRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.VisitorName == "" {
			writeError(w, http.StatusBadRequest, "visitor_name required")
			return
		}

		identity := auth.MustFromContext(r.Context())
		entry := &store.BlackListEntry{
			VisitorName: req.VisitorName,
			Reason:      req.Reason,
			AddedBy:     &identity.User.ID,
		}
		if err := s.store.AddBlackListEntry(r.Context(), entry); err != nil {
			s.logger.Error("failed to add blacklist entry", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		s.recordAudit(r, store.AuditAddBlackList, req.VisitorName)
		writeJSON(w, http.StatusCreated, blackListResponse(entry))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleBlackListByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/blacklist/"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid blacklist id")
		return
	}

	if err := s.store.DeleteBlackListEntry(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "blacklist entry not found")
			return
		}
		s.logger.Error("failed to delete blacklist entry", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.recordAudit(r, store.AuditRemoveBlackList, strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
