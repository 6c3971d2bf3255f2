package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
)

// RemovalState is one step of the archive/delete confirmation flow.
type RemovalState int

const (
	// RemovalIdle means no removal is in progress.
	RemovalIdle RemovalState = iota
	// RemovalChoice shows the archive-vs-permanent-delete choice.
	RemovalChoice
	// RemovalPasswordConfirm awaits the re-entered account password.
	RemovalPasswordConfirm
	// RemovalArchived is terminal: the project was archived.
	RemovalArchived
	// RemovalDeleted is terminal: the project was permanently removed.
	RemovalDeleted
)

func (s RemovalState) String() string {
	switch s {
	case RemovalIdle:
		return "idle"
	case RemovalChoice:
		return "choice"
	case RemovalPasswordConfirm:
		return "password_confirm"
	case RemovalArchived:
		return "archived"
	case RemovalDeleted:
		return "deleted"
	}
	return "unknown"
}

// RemovalFlow is the two-step confirmation state machine guarding project
// archive and irreversible delete. Cancel returns to idle from either
// non-terminal step; a server-side password mismatch keeps the dialog open
// with a field-level error. Safe for concurrent use; transitions are
// serialized, including the backend call they carry.
type RemovalFlow struct {
	api Backend

	mu        sync.Mutex
	state     RemovalState
	projectID string
	fieldErr  string
}

// NewRemovalFlow starts an idle flow.
func NewRemovalFlow(api Backend) *RemovalFlow {
	return &RemovalFlow{api: api}
}

// NewRemovalFlow starts an idle flow bound to the service's backend.
func (s *Service) NewRemovalFlow() *RemovalFlow {
	return NewRemovalFlow(s.api)
}

// State returns the current step.
func (f *RemovalFlow) State() RemovalState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// ProjectID returns the project the flow operates on.
func (f *RemovalFlow) ProjectID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projectID
}

// FieldError returns the password field error from the last failed confirm.
func (f *RemovalFlow) FieldError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErr
}

// Begin opens the archive/delete choice for a project.
func (f *RemovalFlow) Begin(projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != RemovalIdle {
		return ErrInvalidTransition
	}
	if strings.TrimSpace(projectID) == "" {
		return errors.New("dashboard: project id is required")
	}
	f.state = RemovalChoice
	f.projectID = projectID
	f.fieldErr = ""
	return nil
}

// Cancel aborts the flow from either non-terminal step.
func (f *RemovalFlow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case RemovalChoice, RemovalPasswordConfirm:
		f.state = RemovalIdle
		f.projectID = ""
		f.fieldErr = ""
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Archive flags the project inactive. Terminal on success.
func (f *RemovalFlow) Archive(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != RemovalChoice {
		return ErrInvalidTransition
	}
	if err := f.api.ArchiveProject(ctx, f.projectID); err != nil {
		return err
	}
	f.state = RemovalArchived
	return nil
}

// RequestDelete moves from the choice to the password confirmation step.
func (f *RemovalFlow) RequestDelete() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != RemovalChoice {
		return ErrInvalidTransition
	}
	f.state = RemovalPasswordConfirm
	f.fieldErr = ""
	return nil
}

// ConfirmDelete issues the irreversible delete. An empty password is a
// client-side validation error and never reaches the backend. A server-side
// password mismatch keeps the confirmation step open and records the
// field-level error text.
func (f *RemovalFlow) ConfirmDelete(ctx context.Context, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != RemovalPasswordConfirm {
		return ErrInvalidTransition
	}
	if strings.TrimSpace(password) == "" {
		f.fieldErr = "password is required"
		return ErrPasswordRequired
	}
	if err := f.api.DeleteProject(ctx, f.projectID, password); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Field != "" {
			f.fieldErr = apiErr.Message
			return err
		}
		return err
	}
	f.state = RemovalDeleted
	f.fieldErr = ""
	return nil
}
