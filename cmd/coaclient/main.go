package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexjbarnes/coaclient/internal/cli"
	"github.com/alexjbarnes/coaclient/internal/config"
	"github.com/alexjbarnes/coaclient/internal/logging"
	"github.com/alexjbarnes/coaclient/internal/store"
	"github.com/jessevdk/go-flags"
)

var Version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println(Version)
		return
	}

	if err := run(os.Args[1:]); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			return
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment, os.Stderr)
	logger.Debug("coaclient starting",
		slog.String("version", Version),
		slog.String("home", cfg.Home),
		slog.Bool("legacy_delete", cfg.LegacySubstringDelete),
	)

	opts := cfg.StoreOptions()
	tokens := store.NewTokenStore(opts, logger)
	clients := store.NewConfigStore(opts, tokens, logger)

	return cli.New(clients, tokens, os.Stdin, os.Stdout).Run(args)
}
