package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print every note as JSON",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			svc, _, err := internal.OpenService(cfg, logger)
			if err != nil {
				return err
			}
			notes, err := svc.ListNotes(ctx)
			if err != nil {
				return err
			}
			return printJSON(stdout(cmd), notes)
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print one note as JSON",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("show: expected exactly one id")
			}
			id, err := strconv.Atoi(cmd.Args().First())
			if err != nil {
				return fmt.Errorf("show: invalid id %q", cmd.Args().First())
			}

			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			svc, _, err := internal.OpenService(cfg, logger)
			if err != nil {
				return err
			}
			n, err := svc.GetNote(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(stdout(cmd), n)
		},
	}
}
