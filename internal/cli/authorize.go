package cli

import (
	"fmt"

	"golang.org/x/oauth2"
)

type authorizeCommand struct {
	AuthURL     string `long:"auth-url" description:"Authorization endpoint of the server" required:"yes"`
	TokenURL    string `long:"token-url" description:"Token endpoint of the server"`
	RedirectURL string `long:"redirect-url" description:"Redirect URI registered for the client"`
	State       string `long:"state" description:"Opaque state echoed back by the server" default:"coaclient"`
	Args        struct {
		Client string `positional-arg-name:"name-or-id"`
	} `positional-args:"yes" required:"yes"`

	app *App
}

// Execute prints the URL a user opens to grant the client offline access.
// The code returned by the server is exchanged outside this tool and the
// resulting tokens cached with "tokens save".
func (c *authorizeCommand) Execute(_ []string) error {
	client, err := c.app.clients.Find(c.Args.Client)
	if err != nil {
		return err
	}

	endpoint := oauth2.Endpoint{AuthURL: c.AuthURL, TokenURL: c.TokenURL}
	cfg := client.OAuth2Config(endpoint, c.RedirectURL)

	fmt.Fprintln(c.app.out, cfg.AuthCodeURL(c.State, oauth2.AccessTypeOffline))

	return nil
}
