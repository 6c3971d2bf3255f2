// Package httpapi is the UI-facing HTTP surface of the dashboard gateway.
// It owns session cookies and the route guard; everything of substance is
// delegated to the session, dashboard, invites and backend packages.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/YossiCharash/project-menagment-sub004/internal/audit"
	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
	"github.com/YossiCharash/project-menagment-sub004/internal/dashboard"
	"github.com/YossiCharash/project-menagment-sub004/internal/invites"
	"github.com/YossiCharash/project-menagment-sub004/internal/obs"
	"github.com/YossiCharash/project-menagment-sub004/internal/session"
	"github.com/YossiCharash/project-menagment-sub004/internal/stream"
)

// Backend is the slice of the property-backend client the HTTP layer calls
// directly. Dashboard and invite traffic goes through their services.
type Backend interface {
	Register(ctx context.Context, req backend.RegisterRequest) error
	RegisterMember(ctx context.Context, req backend.RegisterRequest) error
	RegisterAdmin(ctx context.Context, req backend.RegisterRequest) error
	RegisterSuperAdmin(ctx context.Context, req backend.RegisterRequest) error
	SendEmailVerification(ctx context.Context, email string) error
	ConfirmEmailVerification(ctx context.Context, email, code string) error

	ListUsers(ctx context.Context) ([]backend.UserProfile, error)
	GetUser(ctx context.Context, id string) (backend.UserProfile, error)
	UpdateUser(ctx context.Context, id string, upd backend.UserUpdate) (backend.UserProfile, error)
	DeleteUser(ctx context.Context, id string) error

	AuditLogsWithUsers(ctx context.Context, limit, offset int) ([]backend.AuditLogEntry, error)
	AuditLogCount(ctx context.Context) (int, error)

	ListSuppliers(ctx context.Context) ([]backend.Supplier, error)
	SupplierDocuments(ctx context.Context, supplierID string) ([]backend.SupplierDocument, error)
	UploadSupplierDocument(ctx context.Context, supplierID, name, fileURL string) (backend.SupplierDocument, error)
	DeleteSupplierDocument(ctx context.Context, documentID string) error
}

// ReadyProbe pings whichever session-store backend the gateway was started
// with.
type ReadyProbe struct {
	DB    *sql.DB
	Redis *redis.Client
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB != nil {
		if err := rp.DB.PingContext(ctx); err != nil {
			return err
		}
	}
	if rp.Redis != nil {
		if err := rp.Redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Deps carries the wired collaborators into the HTTP layer.
type Deps struct {
	Sessions *session.Manager
	Backend  Backend
	Dash     *dashboard.Service
	Poller   *dashboard.Poller
	Invites  *invites.Service
	Stream   *stream.Stream
	OAuth    *session.OAuth
	Ready    ReadyProbe

	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
}

// API is the HTTP layer.
type API struct {
	mux     *http.ServeMux
	deps    Deps
	version string

	flowMu sync.Mutex
	flows  map[string]*dashboard.RemovalFlow
}

func New(deps Deps, version string) *API {
	if deps.RateLimitRPS <= 0 {
		deps.RateLimitRPS = 10
	}
	if deps.RateLimitBurst <= 0 {
		deps.RateLimitBurst = 20
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = 1 << 20
	}
	a := &API{
		mux:     http.NewServeMux(),
		deps:    deps,
		version: version,
		flows:   make(map[string]*dashboard.RemovalFlow),
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth + registration (public)
	a.mux.HandleFunc("/ui/login", a.handleLogin)
	a.mux.HandleFunc("/ui/logout", a.handleLogout)
	a.mux.HandleFunc("/ui/oauth/start", a.handleOAuthStart)
	a.mux.HandleFunc("/ui/oauth/callback", a.handleOAuthCallback)
	a.mux.HandleFunc("/ui/register", a.handleRegister(Backend.Register))
	a.mux.HandleFunc("/ui/register-member", a.handleRegister(Backend.RegisterMember))
	a.mux.HandleFunc("/ui/register-admin", a.handleRegister(Backend.RegisterAdmin))
	a.mux.HandleFunc("/ui/register-super-admin", a.handleRegister(Backend.RegisterSuperAdmin))
	a.mux.HandleFunc("/ui/email-verification/send", a.handleVerificationSend)
	a.mux.HandleFunc("/ui/email-verification/confirm", a.handleVerificationConfirm)

	// guarded surface
	a.mux.HandleFunc("/ui/me", a.guarded(a.handleMe))
	a.mux.HandleFunc("/ui/dashboard", a.guarded(a.handleDashboard))
	a.mux.HandleFunc("/ui/dashboard/refresh", a.guarded(a.handleDashboardRefresh))
	a.mux.HandleFunc("/ui/dashboard/stream", a.guarded(a.handleDashboardStream))
	a.mux.HandleFunc("/ui/projects", a.guarded(a.handleProjects))
	a.mux.HandleFunc("/ui/projects/", a.guarded(a.handleProjectResource))
	a.mux.HandleFunc("/ui/suppliers", a.guarded(a.handleSuppliers))
	a.mux.HandleFunc("/ui/suppliers/", a.guarded(a.handleSupplierResource))
	a.mux.HandleFunc("/ui/supplier-documents/", a.guarded(a.handleSupplierDocument))

	// admin surface
	a.mux.HandleFunc("/ui/audit-logs", a.adminOnly(a.handleAuditLogs))
	a.mux.HandleFunc("/ui/admin-invites", a.adminOnly(a.handleInvitesCollection))
	a.mux.HandleFunc("/ui/admin-invites/", a.adminOnly(a.handleInviteResource))
	a.mux.HandleFunc("/ui/users", a.adminOnly(a.handleUsersCollection))
	a.mux.HandleFunc("/ui/users/", a.adminOnly(a.handleUserResource))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := MaxBodyBytes(a.mux, a.deps.MaxBodyBytes)
	h = RateLimit(h, a.deps.RateLimitBurst, a.deps.RateLimitRPS)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- health/ready/info ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "dashboard-gateway",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.deps.Ready.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "dashboard-gateway",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// writeFieldError mirrors backend validation shape: the error plus the form
// field it belongs to.
func writeFieldError(w http.ResponseWriter, r *http.Request, code int, field, msg string) {
	payload := map[string]any{
		"error": msg,
		"field": field,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// decodeJSON decodes one strict JSON document. Body size is already capped
// by the MaxBodyBytes middleware at the configured limit.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleBackendError maps client errors onto gateway responses, keeping the
// backend's status and field attribution where it provided them.
func handleBackendError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Field != "" {
			writeFieldError(w, r, apiErr.Status, apiErr.Field, apiErr.Message)
			return
		}
		writeError(w, r, apiErr.Status, apiErr.Message)
		return
	}
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, backend.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	default:
		writeError(w, r, http.StatusBadGateway, "backend unavailable")
	}
}
