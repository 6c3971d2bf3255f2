package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/YossiCharash/project-menagment-sub004/internal/audit"
	"github.com/YossiCharash/project-menagment-sub004/internal/dashboard"
	"github.com/YossiCharash/project-menagment-sub004/internal/session"
)

type dashboardResponse struct {
	Projects []dashboard.Project `json:"projects"`
	AsOf     time.Time           `json:"as_of"`
	Stale    bool                `json:"stale"`
}

// filterFromQuery maps the list-view query parameters onto the filter
// contract.
func filterFromQuery(r *http.Request) dashboard.Filter {
	q := r.URL.Query()
	f := dashboard.Filter{
		Search:     q.Get("search"),
		City:       q.Get("city"),
		ParentOnly: q.Get("parent_only") == "true",
	}
	if c := q.Get("status_color"); c != "" {
		f.StatusColor = dashboard.StatusColor(c)
	}
	switch q.Get("archive") {
	case "archived":
		f.Archive = dashboard.ArchiveArchived
	case "all":
		f.Archive = dashboard.ArchiveAll
	}
	return f
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request, _ session.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	projects, asOf, refreshErr := a.deps.Poller.Snapshot()
	writeJSON(w, http.StatusOK, dashboardResponse{
		Projects: filterFromQuery(r).Apply(projects),
		AsOf:     asOf,
		Stale:    refreshErr != nil,
	})
}

func (a *API) handleDashboardRefresh(w http.ResponseWriter, r *http.Request, _ session.Session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if !a.deps.Poller.TryRefresh(r.Context()) {
		// Another refresh is already running; its result will arrive.
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "refresh_in_flight"})
		return
	}
	projects, asOf, refreshErr := a.deps.Poller.Snapshot()
	writeJSON(w, http.StatusOK, dashboardResponse{
		Projects: filterFromQuery(r).Apply(projects),
		AsOf:     asOf,
		Stale:    refreshErr != nil,
	})
}

// handleDashboardStream pushes refresh events over SSE.
func (a *API) handleDashboardStream(w http.ResponseWriter, r *http.Request, _ session.Session) {
	if a.deps.Stream == nil {
		writeError(w, r, http.StatusServiceUnavailable, "streaming disabled")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.deps.Stream.Subscribe(ctx)

	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}
}

func (a *API) handleProjects(w http.ResponseWriter, r *http.Request, _ session.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	includeArchived := r.URL.Query().Get("archive") != "" && r.URL.Query().Get("archive") != "active"
	projects, err := a.deps.Dash.LoadProjects(r.Context(), includeArchived)
	if err != nil {
		handleBackendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Projects: filterFromQuery(r).Apply(projects),
		AsOf:     time.Now().UTC(),
	})
}

// handleProjectResource routes /ui/projects/{id}/chart and the removal-flow
// endpoints under /ui/projects/{id}/removal.
func (a *API) handleProjectResource(w http.ResponseWriter, r *http.Request, _ session.Session) {
	path := strings.TrimPrefix(r.URL.Path, "/ui/projects/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, ok := strings.CutSuffix(path, "/chart"); ok && !strings.Contains(id, "/") && id != "" {
		a.projectChart(w, r, id)
		return
	}

	if idx := strings.Index(path, "/removal"); idx > 0 {
		id := path[:idx]
		action := strings.TrimPrefix(path[idx:], "/removal")
		action = strings.TrimPrefix(action, "/")
		if !strings.Contains(id, "/") {
			a.removal(w, r, id, action)
			return
		}
	}

	writeError(w, r, http.StatusNotFound, "resource not found")
}

func (a *API) projectChart(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	charts := a.deps.Dash.LoadCharts(r.Context(), []dashboard.Project{{ID: id, IsActive: true}})
	writeJSON(w, http.StatusOK, charts[id])
}

type confirmDeleteRequest struct {
	Password string `json:"password"`
}

// removal drives the per-session archive/delete dialog. One dialog per
// session; starting a new one requires the previous to have been cancelled
// or to have finished.
func (a *API) removal(w http.ResponseWriter, r *http.Request, id, action string) {
	sid, _ := session.SIDFromContext(r.Context())

	a.flowMu.Lock()
	flow, ok := a.flows[sid]
	if !ok {
		flow = a.deps.Dash.NewRemovalFlow()
		a.flows[sid] = flow
	}
	a.flowMu.Unlock()

	switch {
	case action == "" && r.Method == http.MethodPost:
		if err := flow.Begin(id); err != nil {
			a.removalError(w, r, err)
			return
		}
	case action == "" && r.Method == http.MethodGet:
		// state probe, handled below
	case action == "" && r.Method == http.MethodDelete:
		if err := flow.Cancel(); err != nil {
			a.removalError(w, r, err)
			return
		}
	case action == "archive" && r.Method == http.MethodPost:
		if err := flow.Archive(r.Context()); err != nil {
			a.removalError(w, r, err)
			return
		}
		a.clearFlow(sid)
		_ = audit.LogEvent(r.Context(), "project.archive", map[string]any{"project_id": id})
	case action == "delete-request" && r.Method == http.MethodPost:
		if err := flow.RequestDelete(); err != nil {
			a.removalError(w, r, err)
			return
		}
	case action == "confirm-delete" && r.Method == http.MethodPost:
		var req confirmDeleteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := flow.ConfirmDelete(r.Context(), req.Password); err != nil {
			if errors.Is(err, dashboard.ErrPasswordRequired) || flow.FieldError() != "" {
				writeFieldError(w, r, http.StatusBadRequest, "password", flow.FieldError())
				return
			}
			a.removalError(w, r, err)
			return
		}
		a.clearFlow(sid)
		_ = audit.LogEvent(r.Context(), "project.delete", map[string]any{"project_id": id})
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"state":       flow.State().String(),
		"field_error": flow.FieldError(),
	})
}

func (a *API) clearFlow(sid string) {
	a.flowMu.Lock()
	delete(a.flows, sid)
	a.flowMu.Unlock()
}

func (a *API) removalError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dashboard.ErrInvalidTransition):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		handleBackendError(w, r, err)
	}
}

// parseListParams reads limit/offset used by the audit viewer.
func parseListParams(r *http.Request) (limit, offset int, err error) {
	limit = 50
	offset = 0
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			return 0, 0, errors.New("limit must be between 1 and 500")
		}
	}
	if raw := strings.TrimSpace(q.Get("offset")); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}
