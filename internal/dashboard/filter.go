package dashboard

import "strings"

// ArchiveFilter selects projects by archive status.
type ArchiveFilter string

const (
	ArchiveActive   ArchiveFilter = "active"
	ArchiveArchived ArchiveFilter = "archived"
	ArchiveAll      ArchiveFilter = "all"
)

// Filter is the AND-combined top-level project list filter. Zero values mean
// "no constraint" except Archive, whose zero value defaults to active.
type Filter struct {
	Search      string
	StatusColor StatusColor
	City        string
	ParentOnly  bool
	Archive     ArchiveFilter
}

// Apply filters the merged project list. Subprojects are excluded first,
// unconditionally; the remaining predicates apply in order: text search,
// status color, city, project type, archive status.
func (f Filter) Apply(projects []Project) []Project {
	archive := f.Archive
	if archive == "" {
		archive = ArchiveActive
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	city := strings.ToLower(strings.TrimSpace(f.City))

	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Subproject() {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if f.StatusColor != "" && p.StatusColor != f.StatusColor {
			continue
		}
		if city != "" && !strings.Contains(strings.ToLower(p.City), city) {
			continue
		}
		if f.ParentOnly && !p.IsParentProject {
			continue
		}
		switch archive {
		case ArchiveActive:
			if p.Archived() {
				continue
			}
		case ArchiveArchived:
			if !p.Archived() {
				continue
			}
		case ArchiveAll:
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p Project, needle string) bool {
	for _, field := range []string{p.Name, p.Description, p.Address} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
