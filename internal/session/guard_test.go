package session

import (
	"testing"

	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	profile := &backend.UserProfile{ID: "u1", Email: "a@b.c", Role: backend.RoleMember, IsActive: true}

	cases := []struct {
		name    string
		sess    Session
		loading bool
		want    Decision
	}{
		{
			name: "no token always redirects",
			sess: Session{},
			want: RedirectToLogin,
		},
		{
			name: "no token redirects even with cached profile",
			sess: Session{Profile: profile},
			want: RedirectToLogin,
		},
		{
			name: "no token redirects even while loading",
			sess: Session{}, loading: true,
			want: RedirectToLogin,
		},
		{
			name: "password change forces redirect despite token and profile",
			sess: Session{Token: "tok", Profile: profile, RequiresPasswordChange: true},
			want: RedirectToLogin,
		},
		{
			name: "password change outranks loading",
			sess: Session{Token: "tok", RequiresPasswordChange: true}, loading: true,
			want: RedirectToLogin,
		},
		{
			name: "token present and loading shows blocking state",
			sess: Session{Token: "tok"}, loading: true,
			want: ShowLoading,
		},
		{
			name: "token and profile render children",
			sess: Session{Token: "tok", Profile: profile},
			want: RenderChildren,
		},
		{
			name: "token without profile and not loading renders",
			sess: Session{Token: "tok"},
			want: RenderChildren,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Decide(tc.sess, tc.loading); got != tc.want {
				t.Fatalf("Decide() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSessionStateIgnoresProfileWithoutToken(t *testing.T) {
	t.Parallel()

	sess := Session{Profile: &backend.UserProfile{ID: "u1"}}
	if got := sess.State(); got != Anonymous {
		t.Fatalf("State() = %v, want %v", got, Anonymous)
	}
	if _, ok := sess.CurrentUser(); ok {
		t.Fatal("CurrentUser() returned a profile without a token")
	}
}

func TestSessionStateTransitions(t *testing.T) {
	t.Parallel()

	profile := &backend.UserProfile{ID: "u1"}
	cases := []struct {
		name string
		sess Session
		want State
	}{
		{"anonymous", Session{}, Anonymous},
		{"profile missing", Session{Token: "tok"}, ProfileMissing},
		{"authenticated", Session{Token: "tok", Profile: profile}, Authenticated},
		{"password change", Session{Token: "tok", Profile: profile, RequiresPasswordChange: true}, PasswordChangeRequired},
	}
	for _, tc := range cases {
		if got := tc.sess.State(); got != tc.want {
			t.Fatalf("%s: State() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
