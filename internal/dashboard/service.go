package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
	"github.com/YossiCharash/project-menagment-sub004/internal/obs"
)

// Backend is the slice of the REST client the dashboard loader depends on.
type Backend interface {
	DashboardSnapshot(ctx context.Context) ([]backend.ProjectRecord, error)
	ListProjects(ctx context.Context) ([]backend.ProjectRecord, error)
	ProjectTransactions(ctx context.Context, projectID string) ([]backend.Transaction, error)
	ArchiveProject(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id, password string) error
}

// Service reconciles the active snapshot with archived projects and builds
// per-project category charts.
type Service struct {
	api Backend
}

// NewService wires the backend client slice.
func NewService(api Backend) *Service {
	return &Service{api: api}
}

// LoadProjects fetches the active dashboard snapshot and normalizes it. When
// includeArchived is set, a second fetch merges inactive projects stamped
// with zeroed finance. The archived fetch sequences strictly after the
// active one, and its failure is swallowed: the active set still renders.
func (s *Service) LoadProjects(ctx context.Context, includeArchived bool) ([]Project, error) {
	records, err := s.api.DashboardSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: load snapshot: %w", err)
	}
	projects := make([]Project, 0, len(records))
	for _, rec := range records {
		projects = append(projects, Normalize(rec))
	}

	if includeArchived {
		all, err := s.api.ListProjects(ctx)
		if err != nil {
			obs.LogRequest(map[string]any{
				"ts":    time.Now().UTC().Format(time.RFC3339Nano),
				"level": "warn",
				"msg":   "archived_projects_fetch_failed",
				"error": err.Error(),
			})
			return projects, nil
		}
		for _, rec := range all {
			if rec.IsActive {
				continue
			}
			projects = append(projects, NormalizeArchived(rec))
		}
	}
	return projects, nil
}

// LoadCharts buckets each visible project's transactions by category into
// income and expense sums. Archived projects are skipped. A failed fetch
// degrades to an empty chart for that project only.
func (s *Service) LoadCharts(ctx context.Context, projects []Project) map[string]Chart {
	charts := make(map[string]Chart, len(projects))
	for _, p := range projects {
		if p.Archived() {
			continue
		}
		txs, err := s.api.ProjectTransactions(ctx, p.ID)
		if err != nil {
			charts[p.ID] = EmptyChart(p.ID)
			continue
		}
		charts[p.ID] = bucketTransactions(p.ID, txs)
	}
	return charts
}

func bucketTransactions(projectID string, txs []backend.Transaction) Chart {
	chart := EmptyChart(projectID)
	for _, tx := range txs {
		category := tx.Category
		if category == "" {
			category = "uncategorized"
		}
		totals := chart.Categories[category]
		if tx.IsIncome {
			totals.Income += tx.Amount
		} else {
			totals.Expense += tx.Amount
		}
		chart.Categories[category] = totals
	}
	return chart
}
