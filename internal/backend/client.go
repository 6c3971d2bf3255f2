package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/YossiCharash/project-menagment-sub004/internal/obs"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token attached to authenticated requests.
// Returning false means the request goes out anonymous.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, bool)

func (f TokenSourceFunc) Token(ctx context.Context) (string, bool) { return f(ctx) }

// Client wraps the property-management REST backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	observe func(method, path string, status int, d time.Duration)
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpc = hc
		}
	}
}

// WithTokenSource installs the bearer token supplier.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithObserver overrides the per-request metrics hook.
func WithObserver(fn func(method, path string, status int, d time.Duration)) Option {
	return func(c *Client) {
		if fn != nil {
			c.observe = fn
		}
	}
}

// New creates a client with sensible defaults.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend: base URL is required")
	}
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
		observe: obs.ObserveBackendRequest,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// --- Auth -----------------------------------------------------------------

// Login posts credentials and returns the issued token together with the
// forced password change flag. It never attaches an existing bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &out, false); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

// Register creates a regular account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, req, nil, false)
}

// RegisterMember creates a member account inside an existing group.
func (c *Client) RegisterMember(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register-member", nil, req, nil, false)
}

// RegisterAdmin creates an admin account; req.InviteCode must carry a valid
// invite.
func (c *Client) RegisterAdmin(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register-admin", nil, req, nil, false)
}

// RegisterSuperAdmin bootstraps the first admin account.
func (c *Client) RegisterSuperAdmin(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register-super-admin", nil, req, nil, false)
}

// Profile fetches the current user for the attached token.
func (c *Client) Profile(ctx context.Context) (UserProfile, error) {
	var out UserProfile
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &out, true); err != nil {
		return UserProfile{}, err
	}
	return out, nil
}

// SendEmailVerification asks the backend to mail a verification code.
func (c *Client) SendEmailVerification(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/email-verification/send", nil, body, nil, false)
}

// ConfirmEmailVerification submits the mailed code.
func (c *Client) ConfirmEmailVerification(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "code": code}
	return c.do(ctx, http.MethodPost, "/email-verification/confirm", nil, body, nil, false)
}

// --- Users ----------------------------------------------------------------

// UserUpdate carries partial user updates; nil fields are left untouched.
type UserUpdate struct {
	FullName *string `json:"full_name,omitempty"`
	Role     *string `json:"role,omitempty"`
	GroupID  *string `json:"group_id,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context) ([]UserProfile, error) {
	var out []UserProfile
	if err := c.do(ctx, http.MethodGet, "/users/", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (UserProfile, error) {
	var out UserProfile
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &out, true); err != nil {
		return UserProfile{}, err
	}
	return out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, upd UserUpdate) (UserProfile, error) {
	var out UserProfile
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, upd, &out, true); err != nil {
		return UserProfile{}, err
	}
	return out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil, true)
}

// --- Admin invites ----------------------------------------------------------

func (c *Client) ListAdminInvites(ctx context.Context) ([]AdminInvite, error) {
	var out []AdminInvite
	if err := c.do(ctx, http.MethodGet, "/admin-invites/", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAdminInvite(ctx context.Context, email, fullName string) (AdminInvite, error) {
	var out AdminInvite
	body := map[string]string{"email": email, "full_name": fullName}
	if err := c.do(ctx, http.MethodPost, "/admin-invites/", nil, body, &out, true); err != nil {
		return AdminInvite{}, err
	}
	return out, nil
}

func (c *Client) DeleteAdminInvite(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin-invites/"+url.PathEscape(id), nil, nil, nil, true)
}

// --- Audit logs -------------------------------------------------------------

// AuditLogsWithUsers returns a page of audit entries joined with their actors.
func (c *Client) AuditLogsWithUsers(ctx context.Context, limit, offset int) ([]AuditLogEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	var out []AuditLogEntry
	if err := c.do(ctx, http.MethodGet, "/audit-logs/with-users", q, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// AuditLogCount returns the total number of audit entries for pagination.
func (c *Client) AuditLogCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/audit-logs/count", nil, nil, &out, true); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// --- Projects ----------------------------------------------------------------

// DashboardSnapshot returns active projects with aggregated finance fields.
func (c *Client) DashboardSnapshot(ctx context.Context) ([]ProjectRecord, error) {
	var out []ProjectRecord
	if err := c.do(ctx, http.MethodGet, "/projects/dashboard", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProjects returns all projects regardless of archive state, without
// finance aggregates.
func (c *Client) ListProjects(ctx context.Context) ([]ProjectRecord, error) {
	var out []ProjectRecord
	if err := c.do(ctx, http.MethodGet, "/projects/", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// ArchiveProject flags a project inactive, keeping historical data.
func (c *Client) ArchiveProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(id)+"/archive", nil, nil, nil, true)
}

// DeleteProject permanently removes a project. The backend re-verifies the
// supplied account password; a mismatch comes back as a field-level APIError.
func (c *Client) DeleteProject(ctx context.Context, id, password string) error {
	body := map[string]string{"password": password}
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, body, nil, true)
}

// ProjectTransactions returns the transactions backing a project's category
// chart.
func (c *Client) ProjectTransactions(ctx context.Context, projectID string) ([]Transaction, error) {
	var out []Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions/project/"+url.PathEscape(projectID), nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Suppliers ----------------------------------------------------------------

func (c *Client) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	if err := c.do(ctx, http.MethodGet, "/suppliers/", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SupplierDocuments(ctx context.Context, supplierID string) ([]SupplierDocument, error) {
	var out []SupplierDocument
	path := "/suppliers/" + url.PathEscape(supplierID) + "/documents"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UploadSupplierDocument(ctx context.Context, supplierID, name, fileURL string) (SupplierDocument, error) {
	var out SupplierDocument
	body := map[string]string{"name": name, "url": fileURL}
	path := "/suppliers/" + url.PathEscape(supplierID) + "/documents"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out, true); err != nil {
		return SupplierDocument{}, err
	}
	return out, nil
}

func (c *Client) DeleteSupplierDocument(ctx context.Context, documentID string) error {
	return c.do(ctx, http.MethodDelete, "/supplier-documents/"+url.PathEscape(documentID), nil, nil, nil, true)
}

// --- Transport ------------------------------------------------------------

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("backend: new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.observe(method, path, 0, time.Since(start))
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.observe(method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError surfaces the server-provided error text. The backend emits
// either {"detail": "..."}, {"detail": [{"loc": [...], "msg": "..."}]} or
// {"error": "..."} depending on the failure path.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return apiErr
	}
	switch {
	case len(payload.Detail) > 0:
		msg, field := parseDetail(payload.Detail)
		if msg != "" {
			apiErr.Message = msg
		}
		apiErr.Field = field
	case payload.Error != "":
		apiErr.Message = payload.Error
	case payload.Message != "":
		apiErr.Message = payload.Message
	}
	return apiErr
}

func parseDetail(detail json.RawMessage) (msg, field string) {
	var asString string
	if err := json.Unmarshal(detail, &asString); err == nil {
		return asString, ""
	}
	var asList []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(detail, &asList); err == nil && len(asList) > 0 {
		first := asList[0]
		if len(first.Loc) > 0 {
			if name, ok := first.Loc[len(first.Loc)-1].(string); ok {
				field = name
			}
		}
		return first.Msg, field
	}
	return "", ""
}
