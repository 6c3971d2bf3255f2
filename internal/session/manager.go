package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
)

// API is the slice of the backend client the session manager depends on.
type API interface {
	Login(ctx context.Context, email, password string) (backend.LoginResult, error)
	Profile(ctx context.Context) (backend.UserProfile, error)
}

// Manager drives the session lifecycle against the durable store.
type Manager struct {
	api   API
	store Store
	now   func() time.Time
}

// NewManager wires the backend client slice and the session store.
func NewManager(api API, store Store) *Manager {
	return &Manager{api: api, store: store, now: time.Now}
}

// Current loads the session snapshot for sid. A missing record maps to an
// anonymous session, not an error.
func (m *Manager) Current(ctx context.Context, sid string) (Session, error) {
	rec, err := m.store.Get(ctx, sid)
	if err == ErrNoSession {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, err
	}
	return recordToSession(rec), nil
}

// Login authenticates credentials and stores the issued token. The profile
// is intentionally not fetched here; FetchProfile runs as a separate step
// once the caller observes "token present, profile absent".
func (m *Manager) Login(ctx context.Context, sid, email, password string) (Session, error) {
	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		// State stays anonymous; the server-provided error text surfaces as-is.
		return Session{}, err
	}
	rec := Record{
		Token:                  res.Token,
		RequiresPasswordChange: res.RequiresPasswordChange,
		UpdatedAt:              m.now().UTC(),
	}
	if err := m.store.Put(ctx, sid, rec); err != nil {
		return Session{}, fmt.Errorf("session: persist login: %w", err)
	}
	return recordToSession(rec), nil
}

// FetchProfile loads the current user for a stored token and caches it.
//
// A 401 clears the session, persists intendedPath for the post-login
// redirect and returns ErrExpired. Any other failure keeps the token: the
// profile is considered transiently unavailable and the error is returned
// for display only.
func (m *Manager) FetchProfile(ctx context.Context, sid, intendedPath string) (Session, error) {
	rec, err := m.store.Get(ctx, sid)
	if err == ErrNoSession {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	if rec.Token == "" {
		return Session{}, ErrNoSession
	}

	profile, err := m.api.Profile(ContextWithToken(ctx, rec.Token))
	if err != nil {
		if backend.IsUnauthorized(err) {
			_ = m.store.Delete(ctx, sid)
			if intendedPath != "" {
				_ = m.store.SetRedirect(ctx, sid, intendedPath)
			}
			return Session{}, ErrExpired
		}
		return recordToSession(rec), err
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return recordToSession(rec), fmt.Errorf("session: encode profile: %w", err)
	}
	rec.ProfileJSON = data
	rec.UpdatedAt = m.now().UTC()
	if err := m.store.Put(ctx, sid, rec); err != nil {
		return recordToSession(rec), fmt.Errorf("session: cache profile: %w", err)
	}
	return recordToSession(rec), nil
}

// Logout clears the session from the durable store synchronously.
func (m *Manager) Logout(ctx context.Context, sid string) error {
	return m.store.Delete(ctx, sid)
}

// AdoptToken stores a token that arrived outside the credentials flow
// (OAuth callback) and immediately fetches the profile for it.
func (m *Manager) AdoptToken(ctx context.Context, sid, token string) (Session, error) {
	rec := Record{Token: token, UpdatedAt: m.now().UTC()}
	if err := m.store.Put(ctx, sid, rec); err != nil {
		return Session{}, fmt.Errorf("session: persist token: %w", err)
	}
	return m.FetchProfile(ctx, sid, "")
}

// RedirectTarget consumes the one-shot post-login path, falling back to the
// provided default landing page.
func (m *Manager) RedirectTarget(ctx context.Context, sid, fallback string) string {
	path, err := m.store.TakeRedirect(ctx, sid)
	if err != nil || path == "" {
		return fallback
	}
	return path
}

// TokenExpiry peeks at the exp claim of a stored token without verifying the
// signature; the backend owns verification, the gateway only schedules
// around expiry. ok is false when the token carries no readable expiry.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func recordToSession(rec Record) Session {
	sess := Session{
		Token:                  rec.Token,
		RequiresPasswordChange: rec.RequiresPasswordChange,
	}
	if len(rec.ProfileJSON) > 0 {
		var profile backend.UserProfile
		if err := json.Unmarshal(rec.ProfileJSON, &profile); err == nil {
			sess.Profile = &profile
		}
	}
	return sess
}
