package httpapi

import (
	"errors"
	"net/http"

	"github.com/YossiCharash/project-menagment-sub004/internal/ids"
	"github.com/YossiCharash/project-menagment-sub004/internal/session"
)

const (
	sessionCookie = "sid"
	loginPath     = "/login"
	landingPath   = "/dashboard"
)

func sidFromRequest(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return ""
	}
	return c.Value
}

// ensureSID returns the request's session id, minting one and setting the
// cookie when absent.
func ensureSID(w http.ResponseWriter, r *http.Request) string {
	if sid := sidFromRequest(r); sid != "" {
		return sid
	}
	sid := ids.New()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Location", loginPath)
	writeJSON(w, http.StatusSeeOther, map[string]any{
		"error":    "authentication required",
		"redirect": loginPath,
	})
}

// guarded enforces the route-guard contract: password-change-pending and
// missing-token sessions are sent to login; a token without a cached profile
// triggers a profile fetch before the handler runs. The handler receives the
// resolved session.
func (a *API) guarded(next func(http.ResponseWriter, *http.Request, session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := sidFromRequest(r)
		if sid == "" {
			redirectToLogin(w, r)
			return
		}
		ctx := r.Context()
		sess, err := a.deps.Sessions.Current(ctx, sid)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "session lookup failed")
			return
		}
		if session.Decide(sess, false) == session.RedirectToLogin {
			redirectToLogin(w, r)
			return
		}
		if sess.State() == session.ProfileMissing {
			sess, err = a.deps.Sessions.FetchProfile(ctx, sid, r.URL.Path)
			if errors.Is(err, session.ErrExpired) {
				redirectToLogin(w, r)
				return
			}
			if err != nil {
				// Token kept: the backend hiccuped, the session did not end.
				writeError(w, r, http.StatusBadGateway, "profile fetch failed")
				return
			}
			if session.Decide(sess, false) == session.RedirectToLogin {
				redirectToLogin(w, r)
				return
			}
		}

		ctx = session.ContextWithSID(ctx, sid)
		ctx = session.ContextWithToken(ctx, sess.Token)
		if user, ok := sess.CurrentUser(); ok {
			ctx = session.ContextWithUserID(ctx, user.ID)
		}
		next(w, r.WithContext(ctx), sess)
	}
}

// adminOnly layers a role check over guarded. Non-admins get a 403 body,
// never a login redirect: they are authenticated, just not allowed.
func (a *API) adminOnly(next func(http.ResponseWriter, *http.Request, session.Session)) http.HandlerFunc {
	return a.guarded(func(w http.ResponseWriter, r *http.Request, sess session.Session) {
		user, ok := sess.CurrentUser()
		if !ok || !user.IsAdmin() {
			writeError(w, r, http.StatusForbidden, "access denied")
			return
		}
		next(w, r, sess)
	})
}
