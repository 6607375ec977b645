package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// slackEndpoint is Slack's OpenID Connect pair. The token URL is the
// regular oauth.v2.access endpoint; its response nests the user's id
// under authed_user rather than in the token itself.
var slackEndpoint = oauth2.Endpoint{
	AuthURL:  "https://slack.com/openid/connect/authorize",
	TokenURL: "https://slack.com/api/oauth.v2.access",
}

// SlackProvider wraps the Slack Sign-In flow. The only thing the app
// wants from Slack is the member id, which gets stored on the user's
// profile so event tooling can @-mention them.
type SlackProvider struct {
	config *oauth2.Config
}

// NewSlackProvider builds a provider. redirectURL must exactly match one
// registered on the Slack app.
func NewSlackProvider(clientID, clientSecret, redirectURL string) *SlackProvider {
	return &SlackProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     slackEndpoint,
		},
	}
}

// Configured reports whether Slack credentials are present.
func (p *SlackProvider) Configured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// AuthCodeURL returns the Slack authorize URL carrying the signed state.
func (p *SlackProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange swaps the callback code for the Slack member id.
func (p *SlackProvider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchanging code: %w", err)
	}

	// oauth.v2.access reports failures with ok=false inside a 200.
	if okField, present := token.Extra("ok").(bool); present && !okField {
		slackErr, _ := token.Extra("error").(string)
		return "", fmt.Errorf("slack rejected exchange: %s", slackErr)
	}

	authedUser, ok := token.Extra("authed_user").(map[string]any)
	if !ok {
		return "", fmt.Errorf("token response missing authed_user")
	}
	slackID, ok := authedUser["id"].(string)
	if !ok || slackID == "" {
		return "", fmt.Errorf("token response missing authed_user.id")
	}
	return slackID, nil
}
