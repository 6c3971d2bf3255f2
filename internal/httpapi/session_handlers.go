package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/YossiCharash/project-menagment-sub004/internal/audit"
	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
	"github.com/YossiCharash/project-menagment-sub004/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	sid := ensureSID(w, r)
	sess, err := a.deps.Sessions.Login(r.Context(), sid, req.Email, req.Password)
	if err != nil {
		handleBackendError(w, r, err)
		return
	}

	_ = audit.LogEvent(session.ContextWithSID(r.Context(), sid), "session.login", map[string]any{
		"email": req.Email,
	})

	// A forced password change keeps the user on the login page; the saved
	// post-login target stays put for after the change.
	redirect := loginPath
	if !sess.RequiresPasswordChange {
		redirect = a.deps.Sessions.RedirectTarget(r.Context(), sid, landingPath)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"requires_password_change": sess.RequiresPasswordChange,
		"redirect":                 redirect,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	sid := sidFromRequest(r)
	if sid != "" {
		if err := a.deps.Sessions.Logout(r.Context(), sid); err != nil {
			writeError(w, r, http.StatusInternalServerError, "logout failed")
			return
		}
		_ = audit.LogEvent(session.ContextWithSID(r.Context(), sid), "session.logout", nil)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged_out"})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := sess.CurrentUser()
	if !ok {
		writeError(w, r, http.StatusNotFound, "profile not loaded")
		return
	}
	expiry, hasExpiry := session.TokenExpiry(sess.Token)
	payload := map[string]any{
		"user":                     user,
		"requires_password_change": sess.RequiresPasswordChange,
	}
	if hasExpiry {
		payload["token_expires_at"] = expiry
	}
	writeJSON(w, http.StatusOK, payload)
}

func (a *API) handleOAuthStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if a.deps.OAuth == nil {
		writeError(w, r, http.StatusNotFound, "oauth not configured")
		return
	}
	state := a.deps.OAuth.StateToken()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/ui/oauth",
		HttpOnly: true,
		MaxAge:   600,
	})
	http.Redirect(w, r, a.deps.OAuth.AuthURL(state), http.StatusFound)
}

// handleOAuthCallback finishes the OAuth round-trip: adopt the token, fetch
// the profile, then send the browser to the stored post-login target.
func (a *API) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if a.deps.OAuth == nil {
		writeError(w, r, http.StatusNotFound, "oauth not configured")
		return
	}
	if state, err := r.Cookie("oauth_state"); err == nil {
		if got := r.URL.Query().Get("state"); got != "" && got != state.Value {
			writeError(w, r, http.StatusBadRequest, "oauth state mismatch")
			return
		}
	}

	result, err := a.deps.OAuth.ParseCallback(r.Context(), r.URL.Query())
	if err != nil || result.Err != "" {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}

	sid := ensureSID(w, r)
	if _, err := a.deps.Sessions.AdoptToken(r.Context(), sid, result.Token); err != nil {
		if errors.Is(err, session.ErrExpired) {
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}
		writeError(w, r, http.StatusBadGateway, "profile fetch failed")
		return
	}
	_ = audit.LogEvent(session.ContextWithSID(r.Context(), sid), "session.oauth_login", nil)

	http.Redirect(w, r, a.deps.Sessions.RedirectTarget(r.Context(), sid, landingPath), http.StatusSeeOther)
}

// handleRegister serves all four registration variants through a method
// expression over the Backend interface.
func (a *API) handleRegister(register func(Backend, context.Context, backend.RegisterRequest) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		var req backend.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		req.FullName = strings.TrimSpace(req.FullName)
		if req.Email == "" || req.Password == "" {
			writeError(w, r, http.StatusBadRequest, "email and password are required")
			return
		}
		if err := register(a.deps.Backend, r.Context(), req); err != nil {
			handleBackendError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"status": "registered"})
	}
}

type verificationRequest struct {
	Email string `json:"email"`
	Code  string `json:"code,omitempty"`
}

func (a *API) handleVerificationSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req verificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, r, http.StatusBadRequest, "email is required")
		return
	}
	if err := a.deps.Backend.SendEmailVerification(r.Context(), req.Email); err != nil {
		handleBackendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "sent"})
}

func (a *API) handleVerificationConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req verificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" {
		writeError(w, r, http.StatusBadRequest, "email and code are required")
		return
	}
	if err := a.deps.Backend.ConfirmEmailVerification(r.Context(), req.Email, req.Code); err != nil {
		handleBackendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "confirmed"})
}
