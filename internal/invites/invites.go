// Package invites manages admin invite codes: listing with a derived
// display status, issuing new invites and revoking unused ones.
package invites

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
)

var ErrEmailRequired = errors.New("invites: email required")

// Status is the display state of an invite. An invite is Active until it is
// either consumed or times out; both end states are terminal.
type Status string

const (
	StatusActive  Status = "Active"
	StatusUsed    Status = "Used"
	StatusExpired Status = "Expired"
)

// Invite is an admin invite with its derived status.
type Invite struct {
	ID         string
	InviteCode string
	Email      string
	FullName   string
	Status     Status
	UsedAt     *time.Time
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// StatusOf derives the display status. Used wins outright; otherwise an
// expired invite shows Expired even though it was never consumed.
func StatusOf(rec backend.AdminInvite) Status {
	switch {
	case rec.IsUsed:
		return StatusUsed
	case rec.IsExpired || (!rec.ExpiresAt.IsZero() && !rec.ExpiresAt.After(time.Now().UTC())):
		return StatusExpired
	default:
		return StatusActive
	}
}

func fromRecord(rec backend.AdminInvite) Invite {
	return Invite{
		ID:         rec.ID,
		InviteCode: rec.InviteCode,
		Email:      rec.Email,
		FullName:   rec.FullName,
		Status:     StatusOf(rec),
		UsedAt:     rec.UsedAt,
		ExpiresAt:  rec.ExpiresAt,
		CreatedAt:  rec.CreatedAt,
	}
}

// API is the backend subset the invite service needs.
type API interface {
	ListAdminInvites(ctx context.Context) ([]backend.AdminInvite, error)
	CreateAdminInvite(ctx context.Context, email, fullName string) (backend.AdminInvite, error)
	DeleteAdminInvite(ctx context.Context, id string) error
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// List returns all invites with derived statuses, newest first as the
// backend orders them.
func (s *Service) List(ctx context.Context) ([]Invite, error) {
	recs, err := s.api.ListAdminInvites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admin invites: %w", err)
	}
	out := make([]Invite, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromRecord(rec))
	}
	return out, nil
}

// Create issues a new invite for the given address.
func (s *Service) Create(ctx context.Context, email, fullName string) (Invite, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Invite{}, ErrEmailRequired
	}
	rec, err := s.api.CreateAdminInvite(ctx, email, strings.TrimSpace(fullName))
	if err != nil {
		return Invite{}, fmt.Errorf("create admin invite: %w", err)
	}
	return fromRecord(rec), nil
}

// Revoke deletes an invite by id. The backend rejects revoking a used
// invite; that error passes through untouched.
func (s *Service) Revoke(ctx context.Context, id string) error {
	if err := s.api.DeleteAdminInvite(ctx, id); err != nil {
		return fmt.Errorf("revoke admin invite %s: %w", id, err)
	}
	return nil
}
