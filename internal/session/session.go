package session

import (
	"errors"

	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
)

var (
	ErrNoSession = errors.New("session: no session")

	// ErrExpired is returned when the backend rejects the stored token with
	// 401. The session has already been cleared when callers see it.
	ErrExpired = errors.New("session: expired")
)

// State enumerates the client-side auth lifecycle.
type State int

const (
	// Anonymous means no token is stored.
	Anonymous State = iota
	// ProfileMissing means a token is stored but the profile has not been
	// fetched yet.
	ProfileMissing
	// Authenticated means both token and profile are present.
	Authenticated
	// PasswordChangeRequired means the backend flagged a forced password
	// change on login; protected views stay blocked until it is resolved.
	PasswordChangeRequired
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case ProfileMissing:
		return "profile_missing"
	case Authenticated:
		return "authenticated"
	case PasswordChangeRequired:
		return "password_change_required"
	}
	return "unknown"
}

// Session is a point-in-time view of one UI session.
type Session struct {
	Token                  string
	Profile                *backend.UserProfile
	RequiresPasswordChange bool
}

// State derives the lifecycle state. A cached profile without a token is
// treated as absent.
func (s Session) State() State {
	if s.Token == "" {
		return Anonymous
	}
	if s.RequiresPasswordChange {
		return PasswordChangeRequired
	}
	if s.Profile == nil {
		return ProfileMissing
	}
	return Authenticated
}

// CurrentUser returns the cached profile, honouring the token invariant:
// without a token the cache contents are ignored.
func (s Session) CurrentUser() (backend.UserProfile, bool) {
	if s.Token == "" || s.Profile == nil {
		return backend.UserProfile{}, false
	}
	return *s.Profile, true
}
