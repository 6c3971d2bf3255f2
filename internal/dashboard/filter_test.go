package dashboard

import "testing"

func sampleProjects() []Project {
	return []Project{
		{ID: "p1", Name: "Harbor Tower", Description: "office block", Address: "1 Dock Rd", City: "Haifa", IsActive: true, IsParentProject: true, StatusColor: StatusGreen},
		{ID: "p2", Name: "Garden Flats", Address: "9 Rose St", City: "Tel Aviv", IsActive: true, StatusColor: StatusYellow},
		{ID: "p3", Name: "Harbor Annex", City: "Haifa", IsActive: true, RelationProject: "p1", StatusColor: StatusGreen},
		{ID: "p4", Name: "Old Mill", City: "Haifa", IsActive: false, StatusColor: StatusRed},
	}
}

func ids(projects []Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterAlwaysExcludesSubprojects(t *testing.T) {
	t.Parallel()

	// Even the widest filter must never surface p3.
	filters := []Filter{
		{},
		{Archive: ArchiveAll},
		{Search: "harbor", Archive: ArchiveAll},
		{City: "haifa", Archive: ArchiveAll},
		{StatusColor: StatusGreen, Archive: ArchiveAll},
	}
	for _, f := range filters {
		for _, p := range f.Apply(sampleProjects()) {
			if p.ID == "p3" {
				t.Fatalf("filter %+v surfaced subproject p3", f)
			}
		}
	}
}

func TestFilterDefaultsToActive(t *testing.T) {
	t.Parallel()

	got := ids(Filter{}.Apply(sampleProjects()))
	if !equal(got, []string{"p1", "p2"}) {
		t.Fatalf("default filter = %v, want active top-level projects", got)
	}
}

func TestFilterCombinations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "search matches name case-insensitively",
			filter: Filter{Search: "HARBOR"},
			want:   []string{"p1"},
		},
		{
			name:   "search matches description",
			filter: Filter{Search: "office"},
			want:   []string{"p1"},
		},
		{
			name:   "search matches address substring",
			filter: Filter{Search: "rose"},
			want:   []string{"p2"},
		},
		{
			name:   "status color",
			filter: Filter{StatusColor: StatusYellow},
			want:   []string{"p2"},
		},
		{
			name:   "city substring",
			filter: Filter{City: "haif"},
			want:   []string{"p1"},
		},
		{
			name:   "parent only",
			filter: Filter{ParentOnly: true},
			want:   []string{"p1"},
		},
		{
			name:   "archived only",
			filter: Filter{Archive: ArchiveArchived},
			want:   []string{"p4"},
		},
		{
			name:   "all archive states",
			filter: Filter{Archive: ArchiveAll},
			want:   []string{"p1", "p2", "p4"},
		},
		{
			name:   "filters AND together",
			filter: Filter{Search: "harbor", City: "haifa", ParentOnly: true, StatusColor: StatusGreen},
			want:   []string{"p1"},
		},
		{
			name:   "AND combination can be empty",
			filter: Filter{Search: "harbor", City: "tel aviv"},
			want:   []string{},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ids(tc.filter.Apply(sampleProjects()))
			if !equal(got, tc.want) {
				t.Fatalf("Apply() = %v, want %v", got, tc.want)
			}
		})
	}
}
