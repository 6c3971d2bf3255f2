package session

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// OAuth drives the browser login flow against the backend's OAuth surface.
// The gateway only initiates the flow and consumes the callback; provider
// negotiation happens backend-side.
type OAuth struct {
	conf *oauth2.Config
}

// NewOAuth builds the flow configuration. backendURL is the property backend
// base URL, callbackURL the gateway's own callback route.
func NewOAuth(backendURL, callbackURL, clientID, clientSecret string) *OAuth {
	base := strings.TrimRight(backendURL, "/")
	return &OAuth{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  base + "/auth/oauth/authorize",
				TokenURL: base + "/auth/oauth/token",
			},
		},
	}
}

// StateToken returns a fresh unguessable state value.
func (o *OAuth) StateToken() string {
	return uuid.NewString()
}

// AuthURL returns the redirect target that starts the login flow.
func (o *OAuth) AuthURL(state string) string {
	return o.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// CallbackResult is the parsed outcome of the OAuth callback query.
type CallbackResult struct {
	Token string
	Err   string
}

// ParseCallback reads the callback query parameters. The backend either
// hands back a ready bearer token, an authorization code to exchange, or an
// error string. A callback with neither token nor code is an error.
func (o *OAuth) ParseCallback(ctx context.Context, query url.Values) (CallbackResult, error) {
	if msg := strings.TrimSpace(query.Get("error")); msg != "" {
		return CallbackResult{Err: msg}, nil
	}
	if token := strings.TrimSpace(query.Get("token")); token != "" {
		return CallbackResult{Token: token}, nil
	}
	if code := strings.TrimSpace(query.Get("code")); code != "" {
		tok, err := o.conf.Exchange(ctx, code)
		if err != nil {
			return CallbackResult{}, err
		}
		return CallbackResult{Token: tok.AccessToken}, nil
	}
	return CallbackResult{}, errors.New("session: callback carries neither token nor code")
}
