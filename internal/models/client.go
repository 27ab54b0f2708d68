// Package models defines types shared across internal packages.
package models

import (
	"strings"

	"golang.org/x/oauth2"
)

// ScopeSeparator joins multiple scopes inside the single scope field.
const ScopeSeparator = "+"

// ClientConfig is one registered OAuth2 client application.
type ClientConfig struct {
	Name         string `json:"name" yaml:"name"`
	ClientID     string `json:"client_id" yaml:"client_id"`
	ClientSecret string `json:"client_secret" yaml:"client_secret"`
	Scopes       string `json:"scopes" yaml:"scopes"`
}

// ScopeList returns the individual scopes of the registration.
func (c ClientConfig) ScopeList() []string {
	return SplitScopes(c.Scopes)
}

// OAuth2Config builds an oauth2.Config for this client against the given
// authorization server endpoint.
func (c ClientConfig) OAuth2Config(endpoint oauth2.Endpoint, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURL,
		Scopes:       c.ScopeList(),
	}
}

// JoinScopes joins scopes with the scope separator, dropping empty entries
// and duplicates while keeping first-seen order.
func JoinScopes(scopes []string) string {
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))

	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		if _, dup := seen[s]; dup {
			continue
		}

		seen[s] = struct{}{}
		out = append(out, s)
	}

	return strings.Join(out, ScopeSeparator)
}

// SplitScopes is the inverse of JoinScopes.
func SplitScopes(field string) []string {
	if field == "" {
		return nil
	}

	var scopes []string

	for _, s := range strings.Split(field, ScopeSeparator) {
		if s != "" {
			scopes = append(scopes, s)
		}
	}

	return scopes
}
