package models

import (
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// AuthTokens is the cached token pair for one client. ExpiresIn is the
// expiry marker exactly as issued by the authorization server.
type AuthTokens struct {
	RefreshToken string `json:"refresh_token" yaml:"refresh_token"`
	AccessToken  string `json:"access_token" yaml:"access_token"`
	ExpiresIn    string `json:"expires_in" yaml:"expires_in"`
}

// AuthTokensFromOAuth2 converts a token returned by an oauth2 exchange.
// When the server did not send expires_in, the remaining lifetime relative
// to now is recorded instead. A token without any expiry gets an empty marker.
func AuthTokensFromOAuth2(tok *oauth2.Token, now time.Time) AuthTokens {
	at := AuthTokens{
		RefreshToken: tok.RefreshToken,
		AccessToken:  tok.AccessToken,
	}

	switch {
	case tok.ExpiresIn > 0:
		at.ExpiresIn = strconv.FormatInt(tok.ExpiresIn, 10)
	case !tok.Expiry.IsZero():
		secs := int64(tok.Expiry.Sub(now) / time.Second)
		if secs < 0 {
			secs = 0
		}

		at.ExpiresIn = strconv.FormatInt(secs, 10)
	}

	return at
}

// OAuth2Token converts the cached pair back into an oauth2.Token. A numeric
// ExpiresIn is interpreted as seconds after issuedAt; any other marker leaves
// Expiry unset so the oauth2 package treats the token as non-expiring and
// the server decides.
func (t AuthTokens) OAuth2Token(issuedAt time.Time) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    "Bearer",
	}

	if secs, err := strconv.ParseInt(t.ExpiresIn, 10, 64); err == nil && secs > 0 {
		tok.ExpiresIn = secs
		tok.Expiry = issuedAt.Add(time.Duration(secs) * time.Second)
	}

	return tok
}
