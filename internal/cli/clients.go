package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/alexjbarnes/coaclient/internal/models"
)

type addCommand struct {
	Scopes []string `short:"s" long:"scope" description:"Scope granted to the client (repeatable, or joined with '+')"`
	Args   struct {
		Name     string `positional-arg-name:"name" description:"Unique local name"`
		ClientID string `positional-arg-name:"client-id" description:"OAuth2 client id"`
		Secret   string `positional-arg-name:"secret" description:"OAuth2 client secret"`
	} `positional-args:"yes" required:"yes"`

	app *App
}

func (c *addCommand) Execute(_ []string) error {
	var scopes []string
	for _, s := range c.Scopes {
		scopes = append(scopes, models.SplitScopes(s)...)
	}

	if err := c.app.clients.Register(c.Args.Name, c.Args.ClientID, c.Args.Secret, scopes); err != nil {
		return err
	}

	fmt.Fprintf(c.app.out, "Client %s registered.\n", c.Args.Name)

	return nil
}

type listCommand struct {
	OutputOptions

	app *App
}

func (c *listCommand) Execute(_ []string) error {
	clients, err := c.app.clients.List()
	if err != nil {
		return err
	}

	if !c.Reveal {
		for i := range clients {
			clients[i].ClientSecret = mask(clients[i].ClientSecret)
		}
	}

	return render(c.app.out, c.Output, clients, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "NAME\tCLIENT ID\tSECRET\tSCOPES")
		for _, cl := range clients {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", cl.Name, cl.ClientID, cl.ClientSecret, strings.Join(cl.ScopeList(), " "))
		}
	})
}

type showCommand struct {
	OutputOptions
	Args struct {
		Identifier string `positional-arg-name:"name-or-id"`
	} `positional-args:"yes" required:"yes"`

	app *App
}

func (c *showCommand) Execute(_ []string) error {
	cl, err := c.app.clients.Find(c.Args.Identifier)
	if err != nil {
		return err
	}

	if !c.Reveal {
		cl.ClientSecret = mask(cl.ClientSecret)
	}

	return render(c.app.out, c.Output, cl, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Name:\t%s\n", cl.Name)
		fmt.Fprintf(tw, "Client ID:\t%s\n", cl.ClientID)
		fmt.Fprintf(tw, "Secret:\t%s\n", cl.ClientSecret)
		fmt.Fprintf(tw, "Scopes:\t%s\n", strings.Join(cl.ScopeList(), " "))
	})
}

type deleteCommand struct {
	Args struct {
		Name string `positional-arg-name:"name"`
	} `positional-args:"yes" required:"yes"`

	app *App
}

func (c *deleteCommand) Execute(_ []string) error {
	if err := c.app.clients.Delete(c.Args.Name); err != nil {
		return err
	}

	fmt.Fprintf(c.app.out, "Client %s deleted.\n", c.Args.Name)

	return nil
}
