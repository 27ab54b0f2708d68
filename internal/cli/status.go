package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	apperrors "github.com/alexjbarnes/coaclient/internal/errors"
	"github.com/alexjbarnes/coaclient/internal/models"
	"golang.org/x/sync/errgroup"
)

// statusConcurrency bounds parallel token file reads.
const statusConcurrency = 4

type clientStatus struct {
	Name      string `json:"name" yaml:"name"`
	ClientID  string `json:"client_id" yaml:"client_id"`
	HasTokens bool   `json:"has_tokens" yaml:"has_tokens"`
	ExpiresIn string `json:"expires_in,omitempty" yaml:"expires_in,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired   bool   `json:"expired,omitempty" yaml:"expired,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// statusCommand prints no secrets, so it takes the format flag only.
type statusCommand struct {
	FormatOptions

	app *App
}

func (c *statusCommand) Execute(_ []string) error {
	clients, err := c.app.clients.List()
	if err != nil {
		return err
	}

	results := make([]clientStatus, len(clients))

	// Reads only; each goroutine owns one slot of results.
	var g errgroup.Group
	g.SetLimit(statusConcurrency)

	for i, cl := range clients {
		g.Go(func() error {
			st := clientStatus{Name: cl.Name, ClientID: cl.ClientID}

			tokens, err := c.app.tokens.Load(cl.Name)

			switch {
			case err == nil:
				st.HasTokens = true
				st.ExpiresIn = tokens.ExpiresIn
				c.setExpiry(&st, tokens)
			case errors.Is(err, apperrors.ErrTokensNotFound):
				// no tokens yet
			default:
				st.Error = err.Error()
			}

			results[i] = st

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return render(c.app.out, c.Output, results, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "NAME\tCLIENT ID\tTOKENS\tEXPIRES AT")
		for _, st := range results {
			state := "none"

			switch {
			case st.Error != "":
				state = "error: " + st.Error
			case st.Expired:
				state = "expired"
			case st.HasTokens:
				state = "cached"
			}

			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.Name, st.ClientID, state, st.ExpiresAt)
		}
	})
}

// setExpiry resolves a numeric expiry marker against the time the tokens
// were saved. Non-numeric markers leave the expiry unknown.
func (c *statusCommand) setExpiry(st *clientStatus, tokens *models.AuthTokens) {
	savedAt, err := c.app.tokens.SavedAt(st.Name)
	if err != nil {
		return
	}

	tok := tokens.OAuth2Token(savedAt)
	if tok.Expiry.IsZero() {
		return
	}

	st.ExpiresAt = tok.Expiry.UTC().Format(time.RFC3339)
	st.Expired = !tok.Valid()
}
