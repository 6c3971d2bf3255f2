package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
	"github.com/YossiCharash/project-menagment-sub004/internal/dashboard"
	"github.com/YossiCharash/project-menagment-sub004/internal/invites"
	"github.com/YossiCharash/project-menagment-sub004/internal/session"
	"github.com/YossiCharash/project-menagment-sub004/internal/stream"
)

type fakeSessionAPI struct {
	loginResult backend.LoginResult
	loginErr    error
	profile     backend.UserProfile
	profileErr  error
}

func (f *fakeSessionAPI) Login(ctx context.Context, email, password string) (backend.LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeSessionAPI) Profile(ctx context.Context) (backend.UserProfile, error) {
	return f.profile, f.profileErr
}

type fakeGateway struct {
	snapshot    []backend.ProjectRecord
	snapshotErr error
	all         []backend.ProjectRecord
	txs         map[string][]backend.Transaction
	archived    []string
	deleted     []string
	deleteErr   error

	auditEntries []backend.AuditLogEntry
	auditTotal   int
	invites      []backend.AdminInvite
	users        []backend.UserProfile
	suppliers    []backend.Supplier
	docs         map[string][]backend.SupplierDocument
	registered   []backend.RegisterRequest
	verifySent   []string
}

func (f *fakeGateway) DashboardSnapshot(ctx context.Context) ([]backend.ProjectRecord, error) {
	return f.snapshot, f.snapshotErr
}

func (f *fakeGateway) ListProjects(ctx context.Context) ([]backend.ProjectRecord, error) {
	return f.all, nil
}

func (f *fakeGateway) ProjectTransactions(ctx context.Context, projectID string) ([]backend.Transaction, error) {
	return f.txs[projectID], nil
}

func (f *fakeGateway) ArchiveProject(ctx context.Context, id string) error {
	f.archived = append(f.archived, id)
	return nil
}

func (f *fakeGateway) DeleteProject(ctx context.Context, id, password string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeGateway) Register(ctx context.Context, req backend.RegisterRequest) error {
	f.registered = append(f.registered, req)
	return nil
}

func (f *fakeGateway) RegisterMember(ctx context.Context, req backend.RegisterRequest) error {
	return f.Register(ctx, req)
}

func (f *fakeGateway) RegisterAdmin(ctx context.Context, req backend.RegisterRequest) error {
	return f.Register(ctx, req)
}

func (f *fakeGateway) RegisterSuperAdmin(ctx context.Context, req backend.RegisterRequest) error {
	return f.Register(ctx, req)
}

func (f *fakeGateway) SendEmailVerification(ctx context.Context, email string) error {
	f.verifySent = append(f.verifySent, email)
	return nil
}

func (f *fakeGateway) ConfirmEmailVerification(ctx context.Context, email, code string) error {
	return nil
}

func (f *fakeGateway) ListUsers(ctx context.Context) ([]backend.UserProfile, error) {
	return f.users, nil
}

func (f *fakeGateway) GetUser(ctx context.Context, id string) (backend.UserProfile, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return backend.UserProfile{}, backend.ErrNotFound
}

func (f *fakeGateway) UpdateUser(ctx context.Context, id string, upd backend.UserUpdate) (backend.UserProfile, error) {
	return f.GetUser(ctx, id)
}

func (f *fakeGateway) DeleteUser(ctx context.Context, id string) error { return nil }

func (f *fakeGateway) AuditLogsWithUsers(ctx context.Context, limit, offset int) ([]backend.AuditLogEntry, error) {
	return f.auditEntries, nil
}

func (f *fakeGateway) AuditLogCount(ctx context.Context) (int, error) {
	return f.auditTotal, nil
}

func (f *fakeGateway) ListAdminInvites(ctx context.Context) ([]backend.AdminInvite, error) {
	return f.invites, nil
}

func (f *fakeGateway) CreateAdminInvite(ctx context.Context, email, fullName string) (backend.AdminInvite, error) {
	inv := backend.AdminInvite{ID: "inv1", Email: email, FullName: fullName, ExpiresAt: time.Now().UTC().Add(time.Hour)}
	f.invites = append(f.invites, inv)
	return inv, nil
}

func (f *fakeGateway) DeleteAdminInvite(ctx context.Context, id string) error { return nil }

func (f *fakeGateway) ListSuppliers(ctx context.Context) ([]backend.Supplier, error) {
	return f.suppliers, nil
}

func (f *fakeGateway) SupplierDocuments(ctx context.Context, supplierID string) ([]backend.SupplierDocument, error) {
	return f.docs[supplierID], nil
}

func (f *fakeGateway) UploadSupplierDocument(ctx context.Context, supplierID, name, fileURL string) (backend.SupplierDocument, error) {
	doc := backend.SupplierDocument{ID: "doc1", SupplierID: supplierID, Name: name, URL: fileURL}
	return doc, nil
}

func (f *fakeGateway) DeleteSupplierDocument(ctx context.Context, documentID string) error {
	return nil
}

type testEnv struct {
	api     *API
	handler http.Handler
	gw      *fakeGateway
	sessAPI *fakeSessionAPI
	store   *session.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gw := &fakeGateway{}
	sessAPI := &fakeSessionAPI{}
	store := session.NewMemory()
	svc := dashboard.NewService(gw)
	str := stream.New()
	env := &testEnv{
		gw:      gw,
		sessAPI: sessAPI,
		store:   store,
	}
	env.api = New(Deps{
		Sessions: session.NewManager(sessAPI, store),
		Backend:  gw,
		Dash:     svc,
		Poller:   dashboard.NewPoller(svc, time.Minute, false, str.PublishProjects),
		Invites:  invites.NewService(gw),
		Stream:   str,
		OAuth:    session.NewOAuth("http://backend.test", "http://gw.test/ui/oauth/callback", "cid", "secret"),
	}, "test")
	env.handler = env.api.Handler()
	return env
}

func mustProfileJSON(t *testing.T, p backend.UserProfile) []byte {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal profile: %v", err)
	}
	return data
}

// seedSession plants an authenticated session directly in the store.
func (e *testEnv) seedSession(t *testing.T, sid string, profile backend.UserProfile, requiresChange bool) {
	t.Helper()
	err := e.store.Put(context.Background(), sid, session.Record{
		Token:                  "tok-" + sid,
		ProfileJSON:            mustProfileJSON(t, profile),
		RequiresPasswordChange: requiresChange,
		UpdatedAt:              time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func doRequest(handler http.Handler, method, target, sid, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sid})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env.handler, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["service"] != "dashboard-gateway" || body["version"] != "test" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGuardRedirectsWithoutSession(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env.handler, http.MethodGet, "/ui/dashboard", "", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestGuardRedirectsOnPasswordChange(t *testing.T) {
	env := newTestEnv(t)
	// Token and profile both present: the flag still forces the redirect.
	env.seedSession(t, "s1", backend.UserProfile{ID: "u1", Role: backend.RoleMember}, true)

	rec := doRequest(env.handler, http.MethodGet, "/ui/dashboard", "s1", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
}

func TestGuardFetchesMissingProfile(t *testing.T) {
	env := newTestEnv(t)
	env.sessAPI.profile = backend.UserProfile{ID: "u1", Email: "a@b.c", Role: backend.RoleMember}
	if err := env.store.Put(context.Background(), "s1", session.Record{Token: "tok"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doRequest(env.handler, http.MethodGet, "/ui/me", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		User backend.UserProfile `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.User.ID != "u1" {
		t.Fatalf("unexpected user: %+v", body.User)
	}
}

func TestGuardExpiredTokenRedirects(t *testing.T) {
	env := newTestEnv(t)
	env.sessAPI.profileErr = &backend.APIError{Status: http.StatusUnauthorized, Message: "expired"}
	if err := env.store.Put(context.Background(), "s1", session.Record{Token: "tok"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doRequest(env.handler, http.MethodGet, "/ui/dashboard", "s1", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if _, err := env.store.Get(context.Background(), "s1"); err == nil {
		t.Fatal("session must be cleared after 401")
	}
}

func TestGuardTransientErrorKeepsToken(t *testing.T) {
	env := newTestEnv(t)
	env.sessAPI.profileErr = &backend.APIError{Status: http.StatusBadGateway, Message: "down"}
	if err := env.store.Put(context.Background(), "s1", session.Record{Token: "tok"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doRequest(env.handler, http.MethodGet, "/ui/dashboard", "s1", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	rec2, err := env.store.Get(context.Background(), "s1")
	if err != nil || rec2.Token != "tok" {
		t.Fatalf("token must survive transient failure: %+v err=%v", rec2, err)
	}
}

func TestAdminRouteForbiddenForMember(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "s1", backend.UserProfile{ID: "u1", Role: backend.RoleMember}, false)

	rec := doRequest(env.handler, http.MethodGet, "/ui/audit-logs", "s1", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "access denied") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestLoginSetsSessionAndRedirect(t *testing.T) {
	env := newTestEnv(t)
	env.sessAPI.loginResult = backend.LoginResult{Token: "tok-1"}

	rec := doRequest(env.handler, http.MethodPost, "/ui/login", "", `{"email":"a@b.c","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["redirect"] != "/dashboard" {
		t.Fatalf("redirect = %v", body["redirect"])
	}
	if body["requires_password_change"] != false {
		t.Fatalf("requires_password_change = %v", body["requires_password_change"])
	}
	cookies := rec.Result().Cookies()
	var sid string
	for _, c := range cookies {
		if c.Name == sessionCookie {
			sid = c.Value
		}
	}
	if sid == "" {
		t.Fatal("session cookie not set")
	}
	stored, err := env.store.Get(context.Background(), sid)
	if err != nil || stored.Token != "tok-1" {
		t.Fatalf("token not stored: %+v err=%v", stored, err)
	}
}

func TestLoginWithPasswordChangePointsBackToLogin(t *testing.T) {
	env := newTestEnv(t)
	env.sessAPI.loginResult = backend.LoginResult{Token: "tok-1", RequiresPasswordChange: true}

	rec := doRequest(env.handler, http.MethodPost, "/ui/login", "", `{"email":"a@b.c","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["redirect"] != "/login" || body["requires_password_change"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLoginRejectsBadPayload(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env.handler, http.MethodPost, "/ui/login", "", `{"email":"a@b.c"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = doRequest(env.handler, http.MethodPost, "/ui/login", "", `{"email":"a@b.c","password":"pw","extra":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field must be rejected, status = %d", rec.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "s1", backend.UserProfile{ID: "u1", Role: backend.RoleMember}, false)

	rec := doRequest(env.handler, http.MethodPost, "/ui/logout", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := env.store.Get(context.Background(), "s1"); err == nil {
		t.Fatal("session record must be gone")
	}

	// The guarded surface now redirects again.
	rec = doRequest(env.handler, http.MethodGet, "/ui/dashboard", "s1", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status after logout = %d", rec.Code)
	}
}

func TestOAuthCallbackAdoptsToken(t *testing.T) {
	env := newTestEnv(t)
	env.sessAPI.profile = backend.UserProfile{ID: "u1", Role: backend.RoleMember}

	rec := doRequest(env.handler, http.MethodGet, "/ui/oauth/callback?token=tok-oauth", "", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestOAuthCallbackErrorRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env.handler, http.MethodGet, "/ui/oauth/callback?error=denied", "", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestDashboardServesFilteredSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "s1", backend.UserProfile{ID: "u1", Role: backend.RoleMember}, false)
	env.gw.snapshot = []backend.ProjectRecord{
		{ID: "p1", Name: "Harbor Tower", City: "Haifa", IsActive: true},
		{ID: "p2", Name: "Garden Flats", City: "Tel Aviv", IsActive: true},
		{ID: "p3", Name: "Annex", IsActive: true, RelationProject: "p1"},
	}
	if !env.api.deps.Poller.TryRefresh(context.Background()) {
		t.Fatal("refresh should run")
	}

	rec := doRequest(env.handler, http.MethodGet, "/ui/dashboard?city=haifa", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body dashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Projects) != 1 || body.Projects[0].ID != "p1" {
		t.Fatalf("unexpected projects: %+v", body.Projects)
	}
	if body.Stale {
		t.Fatal("fresh snapshot flagged stale")
	}
}

func TestProjectChart(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "s1", backend.UserProfile{ID: "u1", Role: backend.RoleMember}, false)
	env.gw.txs = map[string][]backend.Transaction{
		"p1": {{Category: "rent", Amount: 100, IsIncome: true}},
	}

	rec := doRequest(env.handler, http.MethodGet, "/ui/projects/p1/chart", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var chart dashboard.Chart
	if err := json.Unmarshal(rec.Body.Bytes(), &chart); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if chart.Categories["rent"].Income != 100 {
		t.Fatalf("unexpected chart: %+v", chart)
	}
}

func TestRemovalFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "s1", backend.UserProfile{ID: "u1", Role: backend.RoleMember}, false)

	rec := doRequest(env.handler, http.MethodPost, "/ui/projects/p1/removal", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("begin status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(env.handler, http.MethodPost, "/ui/projects/p1/removal/delete-request", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete-request status = %d", rec.Code)
	}

	// Empty password never reaches the backend.
	rec = doRequest(env.handler, http.MethodPost, "/ui/projects/p1/removal/confirm-delete", "s1", `{"password":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("confirm status = %d", rec.Code)
	}
	var fieldErr map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &fieldErr)
	if fieldErr["field"] != "password" {
		t.Fatalf("expected password field error: %v", fieldErr)
	}
	if len(env.gw.deleted) != 0 {
		t.Fatal("delete must not have been issued")
	}

	rec = doRequest(env.handler, http.MethodPost, "/ui/projects/p1/removal/confirm-delete", "s1", `{"password":"hunter2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.gw.deleted) != 1 || env.gw.deleted[0] != "p1" {
		t.Fatalf("delete not forwarded: %v", env.gw.deleted)
	}
}

func TestRemovalArchiveOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "s1", backend.UserProfile{ID: "u1", Role: backend.RoleMember}, false)

	rec := doRequest(env.handler, http.MethodPost, "/ui/projects/p1/removal", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("begin status = %d", rec.Code)
	}
	rec = doRequest(env.handler, http.MethodPost, "/ui/projects/p1/removal/archive", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("archive status = %d", rec.Code)
	}
	if len(env.gw.archived) != 1 || env.gw.archived[0] != "p1" {
		t.Fatalf("archive not forwarded: %v", env.gw.archived)
	}

	// Out-of-order transitions are rejected.
	rec = doRequest(env.handler, http.MethodPost, "/ui/projects/p1/removal/archive", "s1", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second archive status = %d, want 409", rec.Code)
	}
}

func TestAuditLogsRenderDetails(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "s1", backend.UserProfile{ID: "u1", Role: backend.RoleAdmin}, false)
	env.gw.auditEntries = []backend.AuditLogEntry{
		{
			ID:      "a1",
			Action:  "update",
			Entity:  "transaction",
			Details: json.RawMessage(`{"old_values":{"amount":"100"},"new_values":{"amount":"150"}}`),
		},
	}
	env.gw.auditTotal = 41

	rec := doRequest(env.handler, http.MethodGet, "/ui/audit-logs?limit=10&offset=0", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body auditLogsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Total != 41 || len(body.Items) != 1 {
		t.Fatalf("unexpected response: total=%d items=%d", body.Total, len(body.Items))
	}
	details := body.Items[0].Details
	if len(details) != 1 || len(details[0].Diff) != 1 {
		t.Fatalf("unexpected details: %+v", details)
	}
	row := details[0].Diff[0]
	if row.Name != "amount" || !row.Changed || row.Old != "100" || row.New != "150" {
		t.Fatalf("unexpected diff row: %+v", row)
	}
}

func TestInviteCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "s1", backend.UserProfile{ID: "u1", Role: backend.RoleAdmin}, false)

	rec := doRequest(env.handler, http.MethodPost, "/ui/admin-invites", "s1", `{"email":"","full_name":"X"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["field"] != "email" {
		t.Fatalf("expected email field error: %v", body)
	}

	rec = doRequest(env.handler, http.MethodPost, "/ui/admin-invites", "s1", `{"email":"n@a.c","full_name":"New"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUserDeleteRejectsSelf(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "s1", backend.UserProfile{ID: "u1", Role: backend.RoleAdmin}, false)

	rec := doRequest(env.handler, http.MethodDelete, "/ui/users/u1", "s1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = doRequest(env.handler, http.MethodDelete, "/ui/users/u2", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSupplierDocuments(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "s1", backend.UserProfile{ID: "u1", Role: backend.RoleMember}, false)
	env.gw.docs = map[string][]backend.SupplierDocument{
		"sup1": {{ID: "d1", Name: "contract.pdf"}},
	}

	rec := doRequest(env.handler, http.MethodGet, "/ui/suppliers/sup1/documents", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "contract.pdf") {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = doRequest(env.handler, http.MethodPost, "/ui/suppliers/sup1/documents", "s1", `{"name":"","file_url":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRegisterForwardsPayload(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env.handler, http.MethodPost, "/ui/register-admin", "",
		`{"email":"a@b.c","password":"pw","full_name":"A","invite_code":"CODE1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.gw.registered) != 1 || env.gw.registered[0].InviteCode != "CODE1" {
		t.Fatalf("registration not forwarded: %+v", env.gw.registered)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env.handler, http.MethodGet, "/ui/login", "", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("Allow = %q", allow)
	}
}
