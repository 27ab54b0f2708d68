package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alexjbarnes/coaclient/internal/models"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

type tokensSaveCommand struct {
	Refresh   string `long:"refresh" description:"Refresh token"`
	Access    string `long:"access" description:"Access token"`
	ExpiresIn string `long:"expires-in" description:"Expiry marker as issued by the server"`
	JSON      string `long:"json" description:"Read a token endpoint response from a file, or '-' for stdin"`
	Args      struct {
		Client string `positional-arg-name:"name-or-id"`
	} `positional-args:"yes" required:"yes"`

	app *App
}

func (c *tokensSaveCommand) Execute(_ []string) error {
	client, err := c.app.clients.Find(c.Args.Client)
	if err != nil {
		return fmt.Errorf("register the client before saving tokens: %w", err)
	}

	tokens, err := c.readTokens()
	if err != nil {
		return err
	}

	// Refresh responses may omit refresh_token; keep the cached one.
	if tokens.RefreshToken == "" {
		if prev, err := c.app.tokens.Load(client.Name); err == nil {
			tokens.RefreshToken = prev.RefreshToken
		}
	}

	if err := c.app.tokens.Save(client.Name, tokens); err != nil {
		return err
	}

	fmt.Fprintf(c.app.out, "Tokens for %s saved.\n", client.Name)

	return nil
}

func (c *tokensSaveCommand) readTokens() (models.AuthTokens, error) {
	if c.JSON == "" {
		if c.Access == "" {
			return models.AuthTokens{}, errors.New("either --access or --json is required")
		}

		return models.AuthTokens{RefreshToken: c.Refresh, AccessToken: c.Access, ExpiresIn: c.ExpiresIn}, nil
	}

	if c.Access != "" || c.Refresh != "" || c.ExpiresIn != "" {
		return models.AuthTokens{}, errors.New("--json cannot be combined with --access, --refresh or --expires-in")
	}

	var (
		data []byte
		err  error
	)

	if c.JSON == "-" {
		data, err = io.ReadAll(c.app.in)
	} else {
		data, err = os.ReadFile(c.JSON)
	}

	if err != nil {
		return models.AuthTokens{}, fmt.Errorf("reading token response: %w", err)
	}

	return parseTokenResponse(data)
}

// parseTokenResponse extracts the token pair from an OAuth2 token endpoint
// response body.
func parseTokenResponse(data []byte) (models.AuthTokens, error) {
	if !gjson.ValidBytes(data) {
		return models.AuthTokens{}, errors.New("token response is not valid JSON")
	}

	if e := gjson.GetBytes(data, "error"); e.Exists() {
		return models.AuthTokens{}, fmt.Errorf("token response is an error: %s: %s",
			e.String(), gjson.GetBytes(data, "error_description").String())
	}

	access := gjson.GetBytes(data, "access_token").String()
	if access == "" {
		return models.AuthTokens{}, errors.New("token response has no access_token")
	}

	tok := &oauth2.Token{
		AccessToken:  access,
		TokenType:    gjson.GetBytes(data, "token_type").String(),
		RefreshToken: gjson.GetBytes(data, "refresh_token").String(),
		ExpiresIn:    gjson.GetBytes(data, "expires_in").Int(),
	}

	return models.AuthTokensFromOAuth2(tok, time.Now()), nil
}

type tokensShowCommand struct {
	OutputOptions
	Args struct {
		Client string `positional-arg-name:"name-or-id"`
	} `positional-args:"yes" required:"yes"`

	app *App
}

func (c *tokensShowCommand) Execute(_ []string) error {
	client, err := c.app.clients.Find(c.Args.Client)
	if err != nil {
		return err
	}

	tokens, err := c.app.tokens.Load(client.Name)
	if err != nil {
		return err
	}

	if !c.Reveal {
		tokens.RefreshToken = mask(tokens.RefreshToken)
		tokens.AccessToken = mask(tokens.AccessToken)
	}

	return render(c.app.out, c.Output, tokens, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Client:\t%s\n", client.Name)
		fmt.Fprintf(tw, "Refresh token:\t%s\n", tokens.RefreshToken)
		fmt.Fprintf(tw, "Access token:\t%s\n", tokens.AccessToken)
		fmt.Fprintf(tw, "Expires in:\t%s\n", tokens.ExpiresIn)
	})
}
