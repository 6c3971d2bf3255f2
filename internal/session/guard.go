package session

// Decision is the route guard outcome for a protected view.
type Decision int

const (
	// RedirectToLogin blocks the view and sends the user to the login page.
	RedirectToLogin Decision = iota
	// ShowLoading keeps the view blocked while the profile fetch is in flight.
	ShowLoading
	// RenderChildren lets the protected view through.
	RenderChildren
)

func (d Decision) String() string {
	switch d {
	case RedirectToLogin:
		return "redirect_to_login"
	case ShowLoading:
		return "show_loading"
	case RenderChildren:
		return "render_children"
	}
	return "unknown"
}

// Decide applies the guard contract. Precedence order is fixed: a forced
// password change or a missing token redirects to login, an in-flight
// profile fetch shows the loading state, anything else renders.
func Decide(sess Session, loading bool) Decision {
	if sess.RequiresPasswordChange {
		return RedirectToLogin
	}
	if sess.Token == "" {
		return RedirectToLogin
	}
	if loading {
		return ShowLoading
	}
	return RenderChildren
}
