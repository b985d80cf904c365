package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
	"github.com/starford/quill/internal/prompt"
)

func formCommand() *cli.Command {
	return &cli.Command{
		Name:  "form",
		Usage: "Enter notes interactively until EOF",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			svc, _, err := internal.OpenService(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			added, err := prompt.New(stdin(cmd), stdout(cmd), svc).Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(os.Stderr, "%d note(s) added to %s\n", added, cfg.Store.Path)
			return nil
		},
	}
}
