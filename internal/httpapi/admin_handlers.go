package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/YossiCharash/project-menagment-sub004/internal/audit"
	"github.com/YossiCharash/project-menagment-sub004/internal/auditview"
	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
	"github.com/YossiCharash/project-menagment-sub004/internal/invites"
	"github.com/YossiCharash/project-menagment-sub004/internal/session"
)

type auditLogView struct {
	ID        string               `json:"id"`
	User      *backend.UserProfile `json:"user,omitempty"`
	UserID    string               `json:"user_id,omitempty"`
	Action    string               `json:"action"`
	Entity    string               `json:"entity"`
	EntityID  string               `json:"entity_id"`
	Details   []auditview.Node     `json:"details"`
	CreatedAt time.Time            `json:"created_at"`
}

type auditLogsResponse struct {
	Items  []auditLogView `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// handleAuditLogs serves the audit viewer: backend entries with their detail
// blobs rendered into display nodes, plus the total for pagination.
func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request, _ session.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	limit, offset, err := parseListParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := a.deps.Backend.AuditLogsWithUsers(r.Context(), limit, offset)
	if err != nil {
		handleBackendError(w, r, err)
		return
	}
	total, err := a.deps.Backend.AuditLogCount(r.Context())
	if err != nil {
		handleBackendError(w, r, err)
		return
	}

	items := make([]auditLogView, 0, len(entries))
	for _, e := range entries {
		nodes, renderErr := auditview.Render(e.Details)
		if renderErr != nil {
			// Unrenderable details degrade to a single raw-text node.
			nodes = []auditview.Node{{Kind: auditview.KindText, Label: "details", Text: string(e.Details)}}
		}
		items = append(items, auditLogView{
			ID:        e.ID,
			User:      e.User,
			UserID:    e.UserID,
			Action:    e.Action,
			Entity:    e.Entity,
			EntityID:  e.EntityID,
			Details:   nodes,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, auditLogsResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

type createInviteRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (a *API) handleInvitesCollection(w http.ResponseWriter, r *http.Request, _ session.Session) {
	switch r.Method {
	case http.MethodGet:
		list, err := a.deps.Invites.List(r.Context())
		if err != nil {
			handleBackendError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	case http.MethodPost:
		var req createInviteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		inv, err := a.deps.Invites.Create(r.Context(), req.Email, req.FullName)
		if err != nil {
			if errors.Is(err, invites.ErrEmailRequired) {
				writeFieldError(w, r, http.StatusBadRequest, "email", "email is required")
				return
			}
			handleBackendError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "invite.create", map[string]any{"email": req.Email})
		writeJSON(w, http.StatusCreated, inv)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleInviteResource(w http.ResponseWriter, r *http.Request, _ session.Session) {
	id := strings.TrimPrefix(r.URL.Path, "/ui/admin-invites/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	if err := a.deps.Invites.Revoke(r.Context(), id); err != nil {
		handleBackendError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "invite.revoke", map[string]any{"invite_id": id})
	writeJSON(w, http.StatusOK, map[string]any{"status": "revoked"})
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request, _ session.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	users, err := a.deps.Backend.ListUsers(r.Context())
	if err != nil {
		handleBackendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": users})
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request, sess session.Session) {
	id := strings.TrimPrefix(r.URL.Path, "/ui/users/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		user, err := a.deps.Backend.GetUser(r.Context(), id)
		if err != nil {
			handleBackendError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	case http.MethodPut:
		var upd backend.UserUpdate
		if err := decodeJSON(r, &upd); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		user, err := a.deps.Backend.UpdateUser(r.Context(), id, upd)
		if err != nil {
			handleBackendError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "user.update", map[string]any{"user_id": id})
		writeJSON(w, http.StatusOK, user)
	case http.MethodDelete:
		if me, ok := sess.CurrentUser(); ok && me.ID == id {
			writeError(w, r, http.StatusBadRequest, "cannot delete your own account")
			return
		}
		if err := a.deps.Backend.DeleteUser(r.Context(), id); err != nil {
			handleBackendError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "user.delete", map[string]any{"user_id": id})
		writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
