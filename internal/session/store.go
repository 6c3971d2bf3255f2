package session

import (
	"context"
	"time"
)

// Record is the durable footprint of one UI session: the bearer token, the
// cached profile, the forced password change flag and a one-shot post-login
// redirect path.
type Record struct {
	Token                  string
	ProfileJSON            []byte
	RequiresPasswordChange bool
	UpdatedAt              time.Time
}

// Store abstracts durable session storage so tests can run in memory while
// production uses Redis or Postgres.
type Store interface {
	// Get returns the stored record or ErrNoSession.
	Get(ctx context.Context, sid string) (Record, error)
	// Put stores or replaces the record.
	Put(ctx context.Context, sid string, rec Record) error
	// Delete removes the record; deleting a missing session is not an error.
	Delete(ctx context.Context, sid string) error

	// SetRedirect stores the intended post-login path for the session.
	SetRedirect(ctx context.Context, sid, path string) error
	// TakeRedirect returns the stored path and clears it (one-shot read).
	// A missing path returns "" without error.
	TakeRedirect(ctx context.Context, sid string) (string, error)
}
