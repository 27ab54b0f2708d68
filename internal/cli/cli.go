// Package cli implements the coaclient commands on top of the client and
// token stores.
package cli

import (
	"io"
	"time"

	"github.com/alexjbarnes/coaclient/internal/models"
	"github.com/jessevdk/go-flags"
)

//go:generate mockgen -source=cli.go -destination=mock_store_test.go -package=cli

// ClientRegistry is the subset of the config store the commands use.
type ClientRegistry interface {
	Register(name, clientID, secret string, scopes []string) error
	Find(identifier string) (*models.ClientConfig, error)
	List() ([]models.ClientConfig, error)
	Delete(name string) error
}

// TokenCache is the subset of the token store the commands use.
type TokenCache interface {
	Save(name string, tokens models.AuthTokens) error
	Load(name string) (*models.AuthTokens, error)
	SavedAt(name string) (time.Time, error)
}

// App wires commands to their stores and streams.
type App struct {
	clients ClientRegistry
	tokens  TokenCache
	in      io.Reader
	out     io.Writer
}

// New creates an App. Command output goes to out; in is read by commands
// that accept "-" as a file argument.
func New(clients ClientRegistry, tokens TokenCache, in io.Reader, out io.Writer) *App {
	return &App{clients: clients, tokens: tokens, in: in, out: out}
}

// Run parses args and executes the selected command. Asking for help
// returns a *flags.Error of type flags.ErrHelp carrying the usage text.
func (a *App) Run(args []string) error {
	parser, err := a.parser()
	if err != nil {
		return err
	}

	_, err = parser.ParseArgs(args)

	return err
}

func (a *App) parser() (*flags.Parser, error) {
	parser := flags.NewNamedParser("coaclient", flags.HelpFlag|flags.PassDoubleDash)

	commands := []struct {
		name, short string
		data        any
	}{
		{"add", "Register a client application", &addCommand{app: a}},
		{"list", "List registered client applications", &listCommand{app: a}},
		{"show", "Show one client application by name or client id", &showCommand{app: a}},
		{"delete", "Delete a client application and its tokens", &deleteCommand{app: a}},
		{"status", "Show which clients have cached tokens", &statusCommand{app: a}},
		{"authorize", "Print the authorization URL for a client", &authorizeCommand{app: a}},
	}

	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, "", c.data); err != nil {
			return nil, err
		}
	}

	tokens, err := parser.AddCommand("tokens", "Manage cached tokens", "", &struct{}{})
	if err != nil {
		return nil, err
	}

	if _, err := tokens.AddCommand("save", "Cache a token pair for a client", "", &tokensSaveCommand{app: a}); err != nil {
		return nil, err
	}

	if _, err := tokens.AddCommand("show", "Show the cached tokens of a client", "", &tokensShowCommand{app: a}); err != nil {
		return nil, err
	}

	return parser, nil
}
