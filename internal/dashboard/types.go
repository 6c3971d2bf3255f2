package dashboard

import (
	"errors"

	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
)

// StatusColor is the traffic-light profitability indicator shown per project.
type StatusColor string

const (
	StatusGreen  StatusColor = "green"
	StatusYellow StatusColor = "yellow"
	StatusRed    StatusColor = "red"
)

// Profitability buckets a project by its month-to-date profit percentage.
type Profitability string

const (
	Profitable Profitability = "profitable"
	Balanced   Profitability = "balanced"
	Loss       Profitability = "loss"
)

var (
	ErrInvalidTransition = errors.New("dashboard: invalid removal transition")
	ErrPasswordRequired  = errors.New("dashboard: password is required")
)

// Project is the canonical, display-ready project shape. Financial aliases
// from the backend are already resolved and missing numbers defaulted to
// zero.
type Project struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	Address         string      `json:"address,omitempty"`
	City            string      `json:"city,omitempty"`
	IsActive        bool        `json:"is_active"`
	IsParentProject bool        `json:"is_parent_project"`
	RelationProject string      `json:"relation_project,omitempty"`
	ImageURL        string      `json:"image_url,omitempty"`
	Income          float64     `json:"income_month_to_date"`
	Expense         float64     `json:"expense_month_to_date"`
	ProfitPercent   float64     `json:"profit_percent"`
	StatusColor     StatusColor `json:"status_color"`
}

// Archived reports whether the project is excluded from default views.
func (p Project) Archived() bool { return !p.IsActive }

// Subproject reports whether the project references a parent and therefore
// never appears at the top level.
func (p Project) Subproject() bool { return p.RelationProject != "" }

// Classify buckets a profit percentage: at least +10% is profitable, at most
// -10% is a loss, anything between is balanced.
func Classify(profitPercent float64) Profitability {
	switch {
	case profitPercent >= 10:
		return Profitable
	case profitPercent <= -10:
		return Loss
	default:
		return Balanced
	}
}

// colorFor maps a profitability bucket onto the traffic-light indicator.
func colorFor(p Profitability) StatusColor {
	switch p {
	case Profitable:
		return StatusGreen
	case Loss:
		return StatusRed
	default:
		return StatusYellow
	}
}

// Profitability classifies the project from its profit percentage.
func (p Project) Profitability() Profitability { return Classify(p.ProfitPercent) }

// Normalize resolves the backend's financial field aliases into the
// canonical shape. Missing numeric fields default to zero. The status color
// is derived from profit_percent; the server-sent color is only trusted when
// the percentage is absent (single source of truth for the classification).
func Normalize(rec backend.ProjectRecord) Project {
	p := Project{
		ID:              rec.ID,
		Name:            rec.Name,
		Description:     rec.Description,
		Address:         rec.Address,
		City:            rec.City,
		IsActive:        rec.IsActive,
		IsParentProject: rec.IsParentProject,
		RelationProject: rec.RelationProject,
		ImageURL:        rec.ImageURL,
		Income:          firstNumber(rec.IncomeMonthToDate, rec.Income),
		Expense:         firstNumber(rec.ExpenseMonthToDate, rec.Expense),
	}
	if rec.ProfitPercent != nil {
		p.ProfitPercent = *rec.ProfitPercent
		p.StatusColor = colorFor(Classify(p.ProfitPercent))
	} else {
		p.StatusColor = serverColor(rec.StatusColor)
	}
	return p
}

// NormalizeArchived stamps an inactive project with zeroed finance; archived
// projects carry no live aggregates.
func NormalizeArchived(rec backend.ProjectRecord) Project {
	p := Normalize(rec)
	p.IsActive = false
	p.Income = 0
	p.Expense = 0
	p.ProfitPercent = 0
	p.StatusColor = StatusYellow
	return p
}

func firstNumber(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func serverColor(raw string) StatusColor {
	switch StatusColor(raw) {
	case StatusGreen, StatusYellow, StatusRed:
		return StatusColor(raw)
	default:
		return StatusYellow
	}
}

// Chart holds the per-category income/expense sums for one project.
type Chart struct {
	ProjectID  string                    `json:"project_id"`
	Categories map[string]CategoryTotals `json:"categories"`
}

// CategoryTotals are the bucketed sums for a single transaction category.
type CategoryTotals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// EmptyChart is the degraded result when a project's transaction fetch fails.
func EmptyChart(projectID string) Chart {
	return Chart{ProjectID: projectID, Categories: map[string]CategoryTotals{}}
}
